package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/huangang/folio/backend/internal/config"
	"github.com/huangang/folio/backend/internal/models"
	"github.com/huangang/folio/backend/internal/utils"
	"github.com/huangang/folio/backend/pkg/logger"
	"github.com/huangang/folio/backend/pkg/response"
	"gorm.io/gorm"
)

var (
	errInvalidCredentials = response.NewUnauthorized("invalid email or password")
	errEmailTaken         = response.NewAlreadyExists("email is already registered")
)

type AuthService struct {
	db        *gorm.DB
	jwtConfig *config.JWTConfig
	queue     TaskQueue
	publicURL string
}

func NewAuthService(db *gorm.DB, jwtCfg *config.JWTConfig, queue TaskQueue, publicURL string) *AuthService {
	return &AuthService{
		db:        db,
		jwtConfig: jwtCfg,
		queue:     queue,
		publicURL: publicURL,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,notblank,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token    string       `json:"token"`
	User     *models.User `json:"user"`
	ExpireAt time.Time    `json:"expireAt"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8,max=72"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hash, err := utils.HashPassword(password)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return "", response.NewBadRequest(err.Error())
	}
	return hash, err
}

// Register creates an account, signs a session token and queues a welcome mail.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*LoginResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, response.NewBadRequest("name is required")
	}
	email := normalizeEmail(req.Email)

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Unscoped().Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errEmailTaken
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Name: name, Email: email, Password: hash}
	if err := db.Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, errEmailTaken
		}
		return nil, err
	}

	if s.queue != nil {
		if err := s.queue.Enqueue(BuildWelcomeMail(user, s.publicURL)); err != nil {
			// registration stands even when the mail cannot be queued
			logger.Warn().Err(err).Uint("user_id", user.ID).Msg("welcome mail not queued")
		}
	}

	logger.Info().Uint("user_id", user.ID).Msg("user registered")
	return s.issueToken(user)
}

// Login checks credentials and signs a session token.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.Where("email = ?", normalizeEmail(req.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if !utils.CheckPassword(req.Password, user.Password) {
		return nil, errInvalidCredentials
	}

	now := time.Now()
	if err := db.Model(&user).Update("last_login", now).Error; err != nil {
		return nil, err
	}
	user.LastLogin = &now

	return s.issueToken(&user)
}

func (s *AuthService) issueToken(user *models.User) (*LoginResponse, error) {
	token, err := utils.GenerateToken(user.ID, user.Email, s.jwtConfig.ExpireHour)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{
		Token:    token,
		User:     user,
		ExpireAt: time.Now().Add(time.Duration(s.jwtConfig.ExpireHour) * time.Hour),
	}, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}
	return &user, nil
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, req *ChangePasswordRequest) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if !utils.CheckPassword(req.OldPassword, user.Password) {
		return response.NewBadRequest("incorrect old password")
	}

	hashedPassword, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(user).Update("password", hashedPassword).Error
}
