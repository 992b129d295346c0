package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mannaworks/manna-server/internal/auth"
	"github.com/mannaworks/manna-server/internal/config"
	"github.com/mannaworks/manna-server/internal/dto"
	"github.com/mannaworks/manna-server/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrMissingFields      = errors.New("email, password and username are required")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountNotFound    = errors.New("account not found")
)

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{db: db, cfg: cfg}
}

func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if req.Email == "" || req.Username == "" || len(req.Password) < 8 {
		return nil, ErrMissingFields
	}

	var existing models.User
	if err := s.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}
	if err := s.db.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = "user"
	}

	displayName := strings.TrimSpace(req.FirstName + " " + req.LastName)
	if displayName == "" {
		displayName = req.Username
	}

	user := models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Username:     req.Username,
		DisplayName:  displayName,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hash),
		Role:         role,
		Provider:     "local",
	}
	user.SetRoles([]string{role})

	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issue(&user)
}

func (s *AuthService) Login(req *dto.LoginRequest) (*dto.AuthResponse, error) {
	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// Last-login bookkeeping is best-effort and must not block issuance.
	go func(id uuid.UUID) {
		now := time.Now()
		if err := s.db.Model(&models.User{}).Where("id = ?", id).
			Update("last_login_at", now).Error; err != nil {
			slog.Error("last-login update failed", "error", err, "user_id", id.String())
		}
	}(user.ID)

	return s.issue(&user)
}

// Verify checks a raw bearer credential and loads the referenced account.
// Token invalidity and a missing account are distinct failures: the first is
// ErrInvalidCredentials territory (auth.ErrInvalidToken), the second
// ErrAccountNotFound.
func (s *AuthService) Verify(raw string) (*models.User, *auth.Claims, error) {
	claims, err := auth.VerifyToken(raw, []byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, nil, err
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, nil, auth.ErrInvalidToken
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, nil, ErrAccountNotFound
	}
	return &user, claims, nil
}

func (s *AuthService) issue(user *models.User) (*dto.AuthResponse, error) {
	token, err := auth.IssueToken(user, []byte(s.cfg.JWTSecret), s.cfg.TokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &dto.AuthResponse{User: *user, Token: token}, nil
}
