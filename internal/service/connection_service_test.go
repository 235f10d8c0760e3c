package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"sound-service/internal/models"
	"sound-service/internal/repository"
	"sound-service/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeUserRepo is an in-memory UserRepository for service tests
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*models.User)}
}

func (r *fakeUserRepo) addUser(username, email string) uint {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user := &models.User{Username: username, Email: email}
	user.ID = r.nextID
	r.users[user.ID] = user
	return user.ID
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	r.nextID++
	user.ID = r.nextID
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByID(_ context.Context, userID uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) FindByBillingCustomerID(_ context.Context, customerID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.BillingCustomerID == customerID {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) UpdateSubscription(_ context.Context, userID uint, status models.SubscriptionStatus, premium bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.SubscriptionStatus = status
	user.Premium = premium
	return nil
}

// fakeConnectionRepo mimics the storage contract of the real store: the
// partial unique index on non-removed pairs and the compare-and-swap
// status update, both guarded by a mutex so concurrent tests behave like
// concurrent writers against Postgres.
type fakeConnectionRepo struct {
	mu     sync.Mutex
	nextID uint
	conns  map[uint]*models.Connection
	users  *fakeUserRepo
}

func newFakeConnectionRepo(users *fakeUserRepo) *fakeConnectionRepo {
	return &fakeConnectionRepo{conns: make(map[uint]*models.Connection), users: users}
}

func (r *fakeConnectionRepo) Create(_ context.Context, conn *models.Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.conns {
		if existing.UserLowID == conn.UserLowID && existing.UserHighID == conn.UserHighID &&
			existing.Status != models.ConnectionRemoved {
			return repository.ErrDuplicatePair
		}
	}
	r.nextID++
	conn.ID = r.nextID
	conn.CreatedAt = time.Now()
	conn.UpdatedAt = conn.CreatedAt
	copied := *conn
	r.conns[conn.ID] = &copied
	return nil
}

func (r *fakeConnectionRepo) FindByID(_ context.Context, id uint) (*models.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conn, ok := r.conns[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *conn
	return &copied, nil
}

func (r *fakeConnectionRepo) FindByPair(_ context.Context, a, b uint) (*models.Connection, error) {
	low, high := models.NormalizePair(a, b)
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.Connection
	for _, conn := range r.conns {
		if conn.UserLowID == low && conn.UserHighID == high {
			if latest == nil || conn.UpdatedAt.After(latest.UpdatedAt) {
				latest = conn
			}
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *latest
	return &copied, nil
}

func (r *fakeConnectionRepo) CountByParticipant(_ context.Context, userID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, conn := range r.conns {
		if conn.HasParticipant(userID) {
			count++
		}
	}
	return count, nil
}

func (r *fakeConnectionRepo) UpdateStatusFrom(_ context.Context, id uint, from []models.ConnectionStatus, to models.ConnectionStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conn, ok := r.conns[id]
	if !ok {
		return false, nil
	}
	matched := false
	for _, status := range from {
		if conn.Status == status {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}
	if to != models.ConnectionRemoved {
		// honor the partial unique index: no second active row per pair
		for _, other := range r.conns {
			if other.ID != id && other.UserLowID == conn.UserLowID &&
				other.UserHighID == conn.UserHighID && other.Status != models.ConnectionRemoved {
				return false, repository.ErrDuplicatePair
			}
		}
	}
	conn.Status = to
	conn.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeConnectionRepo) ForceBlock(_ context.Context, id, blockerID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conn, ok := r.conns[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	conn.Status = models.ConnectionBlocked
	conn.InitiatorID = blockerID
	conn.UpdatedAt = time.Now()
	return nil
}

func (r *fakeConnectionRepo) SentPending(_ context.Context, userID uint) ([]models.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.Connection
	for _, conn := range r.conns {
		if conn.InitiatorID == userID && conn.Status == models.ConnectionPending {
			result = append(result, r.withUsers(conn))
		}
	}
	return result, nil
}

func (r *fakeConnectionRepo) ReceivedPending(_ context.Context, userID uint) ([]models.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.Connection
	for _, conn := range r.conns {
		if conn.HasParticipant(userID) && conn.InitiatorID != userID && conn.Status == models.ConnectionPending {
			result = append(result, r.withUsers(conn))
		}
	}
	return result, nil
}

func (r *fakeConnectionRepo) AcceptedPage(_ context.Context, userID uint, search string, offset, limit int) ([]models.Connection, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []models.Connection
	for _, conn := range r.conns {
		if !conn.HasParticipant(userID) || conn.Status != models.ConnectionAccepted {
			continue
		}
		full := r.withUsers(conn)
		if search != "" {
			peer := full.OtherParticipant(userID)
			needle := strings.ToLower(search)
			if !strings.Contains(strings.ToLower(peer.Username), needle) &&
				!strings.Contains(strings.ToLower(peer.Email), needle) {
				continue
			}
		}
		matched = append(matched, full)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *fakeConnectionRepo) withUsers(conn *models.Connection) models.Connection {
	copied := *conn
	if user, ok := r.users.users[conn.UserLowID]; ok {
		copied.UserLow = *user
	}
	if user, ok := r.users.users[conn.UserHighID]; ok {
		copied.UserHigh = *user
	}
	return copied
}

// recordingNotifier counts lifecycle events
type recordingNotifier struct {
	mu        sync.Mutex
	requested int
	accepted  int
}

func (n *recordingNotifier) ConnectionRequested(context.Context, uint, uint) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.requested++
}

func (n *recordingNotifier) ConnectionAccepted(context.Context, uint, uint) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.accepted++
}

func newTestService(t *testing.T) (*ConnectionService, *fakeUserRepo, *fakeConnectionRepo, *recordingNotifier) {
	t.Helper()
	users := newFakeUserRepo()
	conns := newFakeConnectionRepo(users)
	notifier := &recordingNotifier{}
	return NewConnectionService(conns, users, notifier), users, conns, notifier
}

func TestSendRequestCreatesPending(t *testing.T) {
	svc, users, _, notifier := newTestService(t)
	alice := users.addUser("alice", "alice@example.com")
	bob := users.addUser("bob", "bob@example.com")

	conn, err := svc.SendRequest(context.Background(), alice, bob)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionPending, conn.Status)
	assert.Equal(t, alice, conn.InitiatorID)
	assert.True(t, conn.HasParticipant(alice))
	assert.True(t, conn.HasParticipant(bob))
	assert.Equal(t, 1, notifier.requested)
}

func TestSendRequestToSelf(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	alice := users.addUser("alice", "alice@example.com")

	_, err := svc.SendRequest(context.Background(), alice, alice)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalid))
}

func TestSendRequestUnknownReceiver(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	alice := users.addUser("alice", "alice@example.com")

	_, err := svc.SendRequest(context.Background(), alice, 999)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestSendRequestTwiceConflicts(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	alice := users.addUser("alice", "alice@example.com")
	bob := users.addUser("bob", "bob@example.com")

	_, err := svc.SendRequest(context.Background(), alice, bob)
	require.NoError(t, err)

	_, err = svc.SendRequest(context.Background(), alice, bob)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	assert.Contains(t, err.Error(), "already sent")
}

func TestSendRequestWhenAlreadyFriends(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	alice := users.addUser("alice", "alice@example.com")
	bob := users.addUser("bob", "bob@example.com")

	conn, err := svc.SendRequest(context.Background(), alice, bob)
	require.NoError(t, err)
	_, err = svc.AcceptRequest(context.Background(), conn.ID, bob)
	require.NoError(t, err)

	_, err = svc.SendRequest(context.Background(), bob, alice)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	assert.Contains(t, err.Error(), "already friends")
}

func TestSendRequestQuota(t *testing.T) {
	svc, users, conns, _ := newTestService(t)
	alice := users.addUser("alice", "alice@example.com")

	// 9 prior connections of any status still allow a tenth
	for i := 0; i < 9; i++ {
		peer := users.addUser("peer", "peer@example.com")
		low, high := models.NormalizePair(alice, peer)
		require.NoError(t, conns.Create(context.Background(), &models.Connection{
			UserLowID: low, UserHighID: high, InitiatorID: alice, Status: models.ConnectionRemoved,
		}))
	}
	target := users.addUser("target", "target@example.com")
	_, err := svc.SendRequest(context.Background(), alice, target)
	require.NoError(t, err)

	// now at 10: the next send is refused regardless of statuses
	next := users.addUser("next", "next@example.com")
	_, err = svc.SendRequest(context.Background(), alice, next)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	assert.Contains(t, err.Error(), "limit")
}

func TestAcceptRequest(t *testing.T) {
	svc, users, _, notifier := newTestService(t)
	alice := users.addUser("alice", "alice@example.com")
	bob := users.addUser("bob", "bob@example.com")

	conn, err := svc.SendRequest(context.Background(), alice, bob)
	require.NoError(t, err)

	accepted, err := svc.AcceptRequest(context.Background(), conn.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionAccepted, accepted.Status)
	assert.Equal(t, 1, notifier.accepted)

	// a second accept finds the request no longer pending
	_, err = svc.AcceptRequest(context.Background(), conn.ID, bob)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	assert.Contains(t, err.Error(), "no longer pending")
}

func TestAcceptOwnRequest(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	alice := users.addUser("alice", "alice@example.com")
	bob := users.addUser("bob", "bob@example.com")

	conn, err := svc.SendRequest(context.Background(), alice, bob)
	require.NoError(t, err)

	_, err = svc.AcceptRequest(context.Background(), conn.ID, alice)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	assert.Contains(t, err.Error(), "your own request")
}

func TestAcceptAsOutsider(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	alice := users.addUser("alice", "alice@example.com")
	bob := users.addUser("bob", "bob@example.com")
	mallory := users.addUser("mallory", "mallory@example.com")

	conn, err := svc.SendRequest(context.Background(), alice, bob)
	require.NoError(t, err)

	_, err = svc.AcceptRequest(context.Background(), conn.ID, mallory)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestAcceptUnknownConnection(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	alice := users.addUser("alice", "alice@example.com")

	_, err := svc.AcceptRequest(context.Background(), 42, alice)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestRejectThenResendRevives(t *testing.T) {
	svc, users, conns, _ := newTestService(t)
	alice := users.addUser("alice", "alice@example.com")
	bob := users.addUser("bob", "bob@example.com")

	conn, err := svc.SendRequest(context.Background(), alice, bob)
	require.NoError(t, err)

	rejected, err := svc.RejectRequest(context.Background(), conn.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionRemoved, rejected.Status)

	// bob re-requests: the removed row is revived, and the recorded
	// initiator stays alice even though bob sent the new request
	revived, err := svc.SendRequest(context.Background(), bob, alice)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionPending, revived.Status)
	assert.Equal(t, conn.ID, revived.ID)
	assert.Equal(t, alice, revived.InitiatorID)

	stored, err := conns.FindByID(context.Background(), conn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionPending, stored.Status)
}

func TestCancelPendingAndAccepted(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	alice := users.addUser("alice", "alice@example.com")
	bob := users.addUser("bob", "bob@example.com")

	conn, err := svc.SendRequest(context.Background(), alice, bob)
	require.NoError(t, err)

	// the initiator may withdraw a pending request
	canceled, err := svc.CancelRequest(context.Background(), conn.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionRemoved, canceled.Status)

	// cancel also ends an accepted connection
	conn2, err := svc.SendRequest(context.Background(), alice, bob)
	require.NoError(t, err)
	_, err = svc.AcceptRequest(context.Background(), conn2.ID, bob)
	require.NoError(t, err)
	canceled2, err := svc.CancelRequest(context.Background(), conn2.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionRemoved, canceled2.Status)

	// cancelling a removed connection is a conflict
	_, err = svc.CancelRequest(context.Background(), conn2.ID, bob)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestRemoveFriend(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	alice := users.addUser("alice", "alice@example.com")
	bob := users.addUser("bob", "bob@example.com")

	conn, err := svc.SendRequest(context.Background(), alice, bob)
	require.NoError(t, err)

	// a pending request is not removable as a friend
	err = svc.RemoveFriend(context.Background(), alice, bob)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = svc.AcceptRequest(context.Background(), conn.ID, bob)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveFriend(context.Background(), alice, bob))

	// removal allows a fresh request
	revived, err := svc.SendRequest(context.Background(), bob, alice)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionPending, revived.Status)
}

func TestBlockIsTerminal(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	alice := users.addUser("alice", "alice@example.com")
	bob := users.addUser("bob", "bob@example.com")

	conn, err := svc.BlockUser(context.Background(), alice, bob)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionBlocked, conn.Status)
	assert.Equal(t, alice, conn.InitiatorID)

	_, err = svc.SendRequest(context.Background(), bob, alice)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	assert.Contains(t, err.Error(), "blocked")

	// the blocker cannot re-request either while the block stands
	_, err = svc.SendRequest(context.Background(), alice, bob)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestSentAndReceivedLists(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	alice := users.addUser("alice", "alice@example.com")
	bob := users.addUser("bob", "bob@example.com")
	carol := users.addUser("carol", "carol@example.com")

	_, err := svc.SendRequest(context.Background(), alice, bob)
	require.NoError(t, err)
	_, err = svc.SendRequest(context.Background(), carol, alice)
	require.NoError(t, err)

	sent, err := svc.SentList(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "bob", sent[0].Peer.Username)

	received, err := svc.RequestList(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "carol", received[0].Peer.Username)
}

func TestFriendListEmpty(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	alice := users.addUser("alice", "alice@example.com")

	list, err := svc.FriendList(context.Background(), alice, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), list.TotalItem)
	assert.Equal(t, int64(0), list.TotalPage)
	assert.NotNil(t, list.Data)
	assert.Empty(t, list.Data)
}

func TestFriendListPaginationAndSearch(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	alice := users.addUser("alice", "alice@example.com")
	names := []string{"bob", "carla", "carlos"}
	for _, name := range names {
		peer := users.addUser(name, name+"@example.com")
		conn, err := svc.SendRequest(context.Background(), alice, peer)
		require.NoError(t, err)
		_, err = svc.AcceptRequest(context.Background(), conn.ID, peer)
		require.NoError(t, err)
	}

	list, err := svc.FriendList(context.Background(), alice, "", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), list.TotalItem)
	assert.Equal(t, int64(2), list.TotalPage)
	assert.Len(t, list.Data, 2)

	page2, err := svc.FriendList(context.Background(), alice, "", 2, 2)
	require.NoError(t, err)
	assert.Len(t, page2.Data, 1)

	// case-insensitive substring search over username/email
	carl, err := svc.FriendList(context.Background(), alice, "CARL", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), carl.TotalItem)
}

func TestConcurrentSendExactlyOneWins(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	alice := users.addUser("alice", "alice@example.com")
	bob := users.addUser("bob", "bob@example.com")

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.SendRequest(context.Background(), alice, bob)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.True(t, apperr.IsKind(err, apperr.KindConflict), "loser must get a conflict, got %v", err)
	}
	assert.Equal(t, 1, successes)
}

func TestConcurrentAcceptAndReject(t *testing.T) {
	svc, users, conns, _ := newTestService(t)
	alice := users.addUser("alice", "alice@example.com")
	bob := users.addUser("bob", "bob@example.com")

	conn, err := svc.SendRequest(context.Background(), alice, bob)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var acceptErr, rejectErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, acceptErr = svc.AcceptRequest(context.Background(), conn.ID, bob)
	}()
	go func() {
		defer wg.Done()
		_, rejectErr = svc.RejectRequest(context.Background(), conn.ID, bob)
	}()
	wg.Wait()

	// exactly one transition wins the compare-and-swap
	if acceptErr == nil {
		require.Error(t, rejectErr)
		stored, err := conns.FindByID(context.Background(), conn.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ConnectionAccepted, stored.Status)
	} else {
		require.NoError(t, rejectErr)
		stored, err := conns.FindByID(context.Background(), conn.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ConnectionRemoved, stored.Status)
	}
}

func TestAtMostOneActiveConnectionPerPair(t *testing.T) {
	svc, users, conns, _ := newTestService(t)
	alice := users.addUser("alice", "alice@example.com")
	bob := users.addUser("bob", "bob@example.com")

	conn, err := svc.SendRequest(context.Background(), alice, bob)
	require.NoError(t, err)
	_, err = svc.RejectRequest(context.Background(), conn.ID, bob)
	require.NoError(t, err)
	_, err = svc.SendRequest(context.Background(), alice, bob)
	require.NoError(t, err)

	active := 0
	for _, c := range conns.conns {
		if c.Status != models.ConnectionRemoved {
			active++
		}
	}
	assert.Equal(t, 1, active)
}
