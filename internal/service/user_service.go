package service

import (
	"context"
	"errors"
	"time"

	"sound-service/internal/models"
	"sound-service/internal/repository"
	"sound-service/pkg/apperr"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	repo      repository.UserRepository
	jwtSecret string
	jwtExpire time.Duration
}

func NewUserService(repo repository.UserRepository, jwtSecret string, jwtExpire time.Duration) *UserService {
	return &UserService{
		repo:      repo,
		jwtSecret: jwtSecret,
		jwtExpire: jwtExpire,
	}
}

// generateJWT creates a new JWT token for the user
func (s *UserService) generateJWT(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     time.Now().Add(s.jwtExpire).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.UserResponse, error) {
	if existing, _ := s.repo.FindByEmail(ctx, req.Email); existing != nil {
		return nil, apperr.Conflict("user already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	user := &models.User{
		Username:           req.Username,
		Email:              req.Email,
		Password:           string(hashedPassword),
		Phone:              req.Phone,
		SubscriptionStatus: models.SubscriptionNone,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, apperr.Internal("failed to create user", err)
	}

	resp := user.ToResponse()
	return &resp, nil
}

func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (string, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return "", apperr.Forbidden("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return "", apperr.Forbidden("invalid credentials")
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return "", apperr.Internal("failed to sign token", err)
	}
	return token, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("failed to look up user", err)
	}

	resp := user.ToResponse()
	return &resp, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, req *models.UpdateProfileRequest) (*models.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("failed to look up user", err)
	}

	if req.Username != "" {
		user.Username = req.Username
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, apperr.Internal("failed to update user", err)
	}

	resp := user.ToResponse()
	return &resp, nil
}
