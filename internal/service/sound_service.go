package service

import (
	"context"
	"errors"
	"mime/multipart"

	"sound-service/internal/models"
	"sound-service/internal/repository"
	"sound-service/pkg/apperr"

	"gorm.io/gorm"
)

// AudioStore is the object-storage boundary for uploaded clips.
type AudioStore interface {
	UploadAudio(ctx context.Context, file *multipart.FileHeader) (string, error)
}

type SoundService struct {
	soundRepo repository.SoundRepository
	userRepo  repository.UserRepository
	store     AudioStore
}

func NewSoundService(soundRepo repository.SoundRepository, userRepo repository.UserRepository, store AudioStore) *SoundService {
	return &SoundService{
		soundRepo: soundRepo,
		userRepo:  userRepo,
		store:     store,
	}
}

// Upload stores the audio object and creates the sound record. Only
// premium users may publish premium-gated clips.
func (s *SoundService) Upload(ctx context.Context, ownerID uint, title string, premium bool, file *multipart.FileHeader) (*models.SoundResponse, error) {
	if title == "" {
		return nil, apperr.Invalid("title is required")
	}

	owner, err := s.userRepo.FindByID(ctx, ownerID)
	if err != nil {
		return nil, apperr.Internal("failed to look up user", err)
	}
	if premium && !owner.Premium {
		return nil, apperr.Forbidden("premium subscription required to publish premium sounds")
	}

	url, err := s.store.UploadAudio(ctx, file)
	if err != nil {
		return nil, apperr.Internal("failed to upload audio", err)
	}

	sound := &models.Sound{
		OwnerID: ownerID,
		Title:   title,
		URL:     url,
		Premium: premium,
		Owner:   *owner,
	}
	if err := s.soundRepo.Create(ctx, sound); err != nil {
		return nil, apperr.Internal("failed to create sound", err)
	}

	resp := sound.ToResponse()
	return &resp, nil
}

// Get returns a sound. Premium clips hide their playback URL from
// non-premium listeners; the owner always sees their own clip.
func (s *SoundService) Get(ctx context.Context, soundID, listenerID uint) (*models.SoundResponse, error) {
	sound, err := s.soundRepo.FindByID(ctx, soundID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("sound not found")
		}
		return nil, apperr.Internal("failed to look up sound", err)
	}

	resp := sound.ToResponse()
	if sound.Premium && sound.OwnerID != listenerID {
		listener, err := s.userRepo.FindByID(ctx, listenerID)
		if err != nil {
			return nil, apperr.Internal("failed to look up user", err)
		}
		if !listener.Premium {
			resp.URL = ""
		}
	}
	return &resp, nil
}

// Play returns the playback URL and bumps the play counter. Premium clips
// require a premium listener.
func (s *SoundService) Play(ctx context.Context, soundID, listenerID uint) (string, error) {
	sound, err := s.soundRepo.FindByID(ctx, soundID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.NotFound("sound not found")
		}
		return "", apperr.Internal("failed to look up sound", err)
	}

	if sound.Premium && sound.OwnerID != listenerID {
		listener, err := s.userRepo.FindByID(ctx, listenerID)
		if err != nil {
			return "", apperr.Internal("failed to look up user", err)
		}
		if !listener.Premium {
			return "", apperr.Forbidden("premium subscription required")
		}
	}

	if err := s.soundRepo.IncrementPlayCount(ctx, sound.ID); err != nil {
		return "", apperr.Internal("failed to record play", err)
	}
	return sound.URL, nil
}

func (s *SoundService) ListByOwner(ctx context.Context, ownerID uint) ([]models.SoundResponse, error) {
	sounds, err := s.soundRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperr.Internal("failed to list sounds", err)
	}
	return toSoundResponses(sounds), nil
}

func (s *SoundService) ListPage(ctx context.Context, search string, page, limit int) ([]models.SoundResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultFriendPageLimit
	}

	sounds, total, err := s.soundRepo.ListPage(ctx, search, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list sounds", err)
	}
	return toSoundResponses(sounds), total, nil
}

// Update edits clip metadata. Owner only.
func (s *SoundService) Update(ctx context.Context, soundID, actorID uint, req *models.UpdateSoundRequest) (*models.SoundResponse, error) {
	sound, err := s.soundRepo.FindByID(ctx, soundID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("sound not found")
		}
		return nil, apperr.Internal("failed to look up sound", err)
	}
	if sound.OwnerID != actorID {
		return nil, apperr.Forbidden("not the owner of this sound")
	}

	if req.Title != "" {
		sound.Title = req.Title
	}
	if req.Premium != nil {
		sound.Premium = *req.Premium
	}
	if err := s.soundRepo.Update(ctx, sound); err != nil {
		return nil, apperr.Internal("failed to update sound", err)
	}

	resp := sound.ToResponse()
	return &resp, nil
}

func (s *SoundService) Delete(ctx context.Context, soundID, actorID uint) error {
	sound, err := s.soundRepo.FindByID(ctx, soundID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("sound not found")
		}
		return apperr.Internal("failed to look up sound", err)
	}
	if sound.OwnerID != actorID {
		return apperr.Forbidden("not the owner of this sound")
	}
	if err := s.soundRepo.Delete(ctx, sound.ID); err != nil {
		return apperr.Internal("failed to delete sound", err)
	}
	return nil
}

func toSoundResponses(sounds []models.Sound) []models.SoundResponse {
	responses := make([]models.SoundResponse, 0, len(sounds))
	for _, sound := range sounds {
		responses = append(responses, sound.ToResponse())
	}
	return responses
}
