package service

import (
	"context"
	"errors"

	"sound-service/internal/models"
	"sound-service/internal/repository"
	"sound-service/pkg/apperr"

	"gorm.io/gorm"
)

// maxConnections caps how many connection rows (any status) a user may be
// a participant of before new requests are refused. Removed and blocked
// rows count against the quota.
const maxConnections = 10

const defaultFriendPageLimit = 10

// ConnectionNotifier receives lifecycle events worth telling users about.
// Delivery failures must not fail the transition.
type ConnectionNotifier interface {
	ConnectionRequested(ctx context.Context, actorID, recipientID uint)
	ConnectionAccepted(ctx context.Context, actorID, recipientID uint)
}

// sendOutcomes enumerates what SendRequest does when a row already exists
// for the pair, keyed by that row's status. A nil entry means the row is
// revived back to pending.
var sendOutcomes = map[models.ConnectionStatus]*apperr.Error{
	models.ConnectionPending:  apperr.Conflict("connection request already sent"),
	models.ConnectionAccepted: apperr.Conflict("already friends"),
	models.ConnectionBlocked:  apperr.Forbidden("blocked by the user"),
	models.ConnectionRemoved:  nil,
}

// ConnectionService is the only writer to the connection store. Every
// transition is guarded: inserts race against a storage unique index,
// status flips go through compare-and-swap updates, so concurrent callers
// resolve to exactly one winner.
type ConnectionService struct {
	connRepo repository.ConnectionRepository
	userRepo repository.UserRepository
	notifier ConnectionNotifier
}

func NewConnectionService(connRepo repository.ConnectionRepository, userRepo repository.UserRepository, notifier ConnectionNotifier) *ConnectionService {
	return &ConnectionService{
		connRepo: connRepo,
		userRepo: userRepo,
		notifier: notifier,
	}
}

// SendRequest creates a pending connection from sender to receiver, or
// revives a previously removed one. Revival keeps the original initiator.
func (s *ConnectionService) SendRequest(ctx context.Context, senderID, receiverID uint) (*models.Connection, error) {
	if senderID == receiverID {
		return nil, apperr.Invalid("cannot send a connection request to yourself")
	}

	if _, err := s.userRepo.FindByID(ctx, receiverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("failed to look up user", err)
	}

	count, err := s.connRepo.CountByParticipant(ctx, senderID)
	if err != nil {
		return nil, apperr.Internal("failed to count connections", err)
	}
	if count >= maxConnections {
		return nil, apperr.Conflict("connection limit reached")
	}

	existing, err := s.connRepo.FindByPair(ctx, senderID, receiverID)
	switch {
	case err == nil:
		if outcome := sendOutcomes[existing.Status]; outcome != nil {
			return nil, outcome
		}
		return s.revive(ctx, existing, senderID, receiverID)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.create(ctx, senderID, receiverID)
	default:
		return nil, apperr.Internal("failed to look up connection", err)
	}
}

func (s *ConnectionService) create(ctx context.Context, senderID, receiverID uint) (*models.Connection, error) {
	low, high := models.NormalizePair(senderID, receiverID)
	conn := &models.Connection{
		UserLowID:   low,
		UserHighID:  high,
		InitiatorID: senderID,
		Status:      models.ConnectionPending,
	}
	if err := s.connRepo.Create(ctx, conn); err != nil {
		if errors.Is(err, repository.ErrDuplicatePair) {
			// Lost a concurrent send for the same pair.
			return nil, apperr.Conflict("connection request already sent")
		}
		return nil, apperr.Internal("failed to create connection request", err)
	}

	s.notifier.ConnectionRequested(ctx, senderID, receiverID)
	return conn, nil
}

func (s *ConnectionService) revive(ctx context.Context, conn *models.Connection, senderID, receiverID uint) (*models.Connection, error) {
	ok, err := s.connRepo.UpdateStatusFrom(ctx, conn.ID,
		[]models.ConnectionStatus{models.ConnectionRemoved}, models.ConnectionPending)
	if err != nil {
		return nil, apperr.Internal("failed to revive connection", err)
	}
	if !ok {
		return nil, apperr.Conflict("connection request already sent")
	}

	conn.Status = models.ConnectionPending
	s.notifier.ConnectionRequested(ctx, senderID, receiverID)
	return conn, nil
}

// AcceptRequest transitions pending -> accepted. Only the participant who
// did not initiate the request may accept it.
func (s *ConnectionService) AcceptRequest(ctx context.Context, connectionID, actorID uint) (*models.Connection, error) {
	conn, err := s.receiverGuard(ctx, connectionID, actorID, "accept")
	if err != nil {
		return nil, err
	}

	ok, err := s.connRepo.UpdateStatusFrom(ctx, conn.ID,
		[]models.ConnectionStatus{models.ConnectionPending}, models.ConnectionAccepted)
	if err != nil {
		return nil, apperr.Internal("failed to accept connection request", err)
	}
	if !ok {
		return nil, apperr.Conflict("request is no longer pending")
	}

	conn.Status = models.ConnectionAccepted
	s.notifier.ConnectionAccepted(ctx, actorID, conn.InitiatorID)
	return conn, nil
}

// RejectRequest transitions pending -> removed, leaving the row behind so
// the pair can re-request later.
func (s *ConnectionService) RejectRequest(ctx context.Context, connectionID, actorID uint) (*models.Connection, error) {
	conn, err := s.receiverGuard(ctx, connectionID, actorID, "reject")
	if err != nil {
		return nil, err
	}

	ok, err := s.connRepo.UpdateStatusFrom(ctx, conn.ID,
		[]models.ConnectionStatus{models.ConnectionPending}, models.ConnectionRemoved)
	if err != nil {
		return nil, apperr.Internal("failed to reject connection request", err)
	}
	if !ok {
		return nil, apperr.Conflict("request is no longer pending")
	}

	conn.Status = models.ConnectionRemoved
	return conn, nil
}

// CancelRequest lets either participant withdraw a pending request or an
// accepted connection.
func (s *ConnectionService) CancelRequest(ctx context.Context, connectionID, actorID uint) (*models.Connection, error) {
	conn, err := s.findForActor(ctx, connectionID, actorID)
	if err != nil {
		return nil, err
	}

	ok, err := s.connRepo.UpdateStatusFrom(ctx, conn.ID,
		[]models.ConnectionStatus{models.ConnectionPending, models.ConnectionAccepted},
		models.ConnectionRemoved)
	if err != nil {
		return nil, apperr.Internal("failed to cancel connection", err)
	}
	if !ok {
		return nil, apperr.Conflict("connection is not active")
	}

	conn.Status = models.ConnectionRemoved
	return conn, nil
}

// RemoveFriend soft-removes an accepted connection between the actor and
// another user. Pending requests are not removable this way.
func (s *ConnectionService) RemoveFriend(ctx context.Context, actorID, otherUserID uint) error {
	if actorID == otherUserID {
		return apperr.Invalid("cannot remove yourself as a connection")
	}

	conn, err := s.connRepo.FindByPair(ctx, actorID, otherUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("connection does not exist")
		}
		return apperr.Internal("failed to look up connection", err)
	}
	if conn.Status != models.ConnectionAccepted {
		return apperr.NotFound("connection does not exist")
	}

	ok, err := s.connRepo.UpdateStatusFrom(ctx, conn.ID,
		[]models.ConnectionStatus{models.ConnectionAccepted}, models.ConnectionRemoved)
	if err != nil {
		return apperr.Internal("failed to remove connection", err)
	}
	if !ok {
		return apperr.NotFound("connection does not exist")
	}
	return nil
}

// BlockUser forces the pair into the blocked state. Blocked is terminal:
// there is no unblock transition, and the blocked side cannot re-request.
func (s *ConnectionService) BlockUser(ctx context.Context, actorID, otherUserID uint) (*models.Connection, error) {
	if actorID == otherUserID {
		return nil, apperr.Invalid("cannot block yourself")
	}

	if _, err := s.userRepo.FindByID(ctx, otherUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("failed to look up user", err)
	}

	conn, err := s.connRepo.FindByPair(ctx, actorID, otherUserID)
	switch {
	case err == nil:
		if err := s.connRepo.ForceBlock(ctx, conn.ID, actorID); err != nil {
			return nil, apperr.Internal("failed to block user", err)
		}
		conn.Status = models.ConnectionBlocked
		conn.InitiatorID = actorID
		return conn, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		low, high := models.NormalizePair(actorID, otherUserID)
		blocked := &models.Connection{
			UserLowID:   low,
			UserHighID:  high,
			InitiatorID: actorID,
			Status:      models.ConnectionBlocked,
		}
		if err := s.connRepo.Create(ctx, blocked); err != nil {
			if errors.Is(err, repository.ErrDuplicatePair) {
				return nil, apperr.Conflict("connection state changed, retry")
			}
			return nil, apperr.Internal("failed to block user", err)
		}
		return blocked, nil
	default:
		return nil, apperr.Internal("failed to look up connection", err)
	}
}

// SentList returns the pending requests the user initiated.
func (s *ConnectionService) SentList(ctx context.Context, userID uint) ([]models.PendingRequestResponse, error) {
	conns, err := s.connRepo.SentPending(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("failed to list sent requests", err)
	}
	return toPendingResponses(conns, userID), nil
}

// RequestList returns the pending requests addressed to the user.
func (s *ConnectionService) RequestList(ctx context.Context, userID uint) ([]models.PendingRequestResponse, error) {
	conns, err := s.connRepo.ReceivedPending(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("failed to list received requests", err)
	}
	return toPendingResponses(conns, userID), nil
}

// FriendList returns a page of accepted connections joined with the peer
// profile. A user with no friends gets an empty page, not an error.
func (s *ConnectionService) FriendList(ctx context.Context, userID uint, search string, page, limit int) (*models.FriendListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultFriendPageLimit
	}

	conns, total, err := s.connRepo.AcceptedPage(ctx, userID, search, (page-1)*limit, limit)
	if err != nil {
		return nil, apperr.Internal("failed to list friends", err)
	}

	data := make([]models.FriendResponse, 0, len(conns))
	for _, conn := range conns {
		data = append(data, models.FriendResponse{
			ConnectionID: conn.ID,
			Friend:       conn.OtherParticipant(userID).ToResponse(),
			Since:        conn.UpdatedAt,
		})
	}

	totalPage := (total + int64(limit) - 1) / int64(limit)
	return &models.FriendListResponse{
		TotalItem: total,
		TotalPage: totalPage,
		Limit:     limit,
		Page:      page,
		Data:      data,
	}, nil
}

// receiverGuard loads the connection and checks that the actor is the
// participant allowed to answer the request.
func (s *ConnectionService) receiverGuard(ctx context.Context, connectionID, actorID uint, verb string) (*models.Connection, error) {
	conn, err := s.findForActor(ctx, connectionID, actorID)
	if err != nil {
		return nil, err
	}
	if conn.InitiatorID == actorID {
		return nil, apperr.Forbidden("cannot " + verb + " your own request")
	}
	return conn, nil
}

func (s *ConnectionService) findForActor(ctx context.Context, connectionID, actorID uint) (*models.Connection, error) {
	conn, err := s.connRepo.FindByID(ctx, connectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("connection request not found")
		}
		return nil, apperr.Internal("failed to look up connection", err)
	}
	if !conn.HasParticipant(actorID) {
		return nil, apperr.Forbidden("not a participant of this connection")
	}
	return conn, nil
}

func toPendingResponses(conns []models.Connection, userID uint) []models.PendingRequestResponse {
	responses := make([]models.PendingRequestResponse, 0, len(conns))
	for _, conn := range conns {
		responses = append(responses, models.PendingRequestResponse{
			ConnectionID: conn.ID,
			Peer:         conn.OtherParticipant(userID).ToResponse(),
			SentAt:       conn.CreatedAt,
		})
	}
	return responses
}

// noopNotifier is used where lifecycle events have no audience, e.g. the
// seed command.
type noopNotifier struct{}

func (noopNotifier) ConnectionRequested(context.Context, uint, uint) {}
func (noopNotifier) ConnectionAccepted(context.Context, uint, uint)  {}

func NewNoopNotifier() ConnectionNotifier { return noopNotifier{} }
