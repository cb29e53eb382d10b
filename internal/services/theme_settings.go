package services

import (
	"context"
	"errors"

	"github.com/huangang/folio/backend/internal/models"
	"github.com/huangang/folio/backend/pkg/logger"
	"github.com/huangang/folio/backend/pkg/response"
	"gorm.io/gorm"
)

var errThemeNotFound = response.NewNotFound("theme settings not found")

type ThemeSettingsService struct {
	db    *gorm.DB
	cache PortfolioCache
}

func NewThemeSettingsService(db *gorm.DB, cache PortfolioCache) *ThemeSettingsService {
	if cache == nil {
		cache = NoopPortfolioCache{}
	}
	return &ThemeSettingsService{db: db, cache: cache}
}

// ThemeSettingsRequest is shared by create and update; absent fields are left alone.
type ThemeSettingsRequest struct {
	PrimaryColor      *string `json:"primaryColor" binding:"omitempty,hexcolor"`
	SecondaryColor    *string `json:"secondaryColor" binding:"omitempty,hexcolor"`
	AccentColor       *string `json:"accentColor" binding:"omitempty,hexcolor"`
	BackgroundColor   *string `json:"backgroundColor" binding:"omitempty,hexcolor"`
	TextColor         *string `json:"textColor" binding:"omitempty,hexcolor"`
	FontFamily        *string `json:"fontFamily" binding:"omitempty,max=100"`
	LogoURL           *string `json:"logoUrl" binding:"omitempty,max=500"`
	DefaultLanguageID *uint   `json:"defaultLanguageId"`
}

// Get returns the caller's theme settings, or nil when none were created.
func (s *ThemeSettingsService) Get(ctx context.Context, userID uint) (*models.ThemeSettings, error) {
	return findThemeSettings(s.db.WithContext(ctx), userID)
}

func findThemeSettings(db *gorm.DB, userID uint) (*models.ThemeSettings, error) {
	var settings models.ThemeSettings
	err := db.Preload("DefaultLanguage").Where("user_id = ?", userID).First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}

func (s *ThemeSettingsService) Create(ctx context.Context, userID uint, req *ThemeSettingsRequest) (*models.ThemeSettings, error) {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.ThemeSettings{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, response.NewAlreadyExists("theme settings already exist")
	}

	settings := &models.ThemeSettings{
		UserID:          userID,
		PrimaryColor:    "#1a1a1a",
		SecondaryColor:  "#4a4a4a",
		AccentColor:     "#0070f3",
		BackgroundColor: "#ffffff",
		TextColor:       "#111111",
		FontFamily:      "Inter",
	}
	if err := s.apply(db, settings, req); err != nil {
		return nil, err
	}
	if err := db.Create(settings).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, response.NewAlreadyExists("theme settings already exist")
		}
		return nil, err
	}

	s.invalidate(ctx, userID)
	return s.Get(ctx, userID)
}

func (s *ThemeSettingsService) Update(ctx context.Context, userID uint, req *ThemeSettingsRequest) (*models.ThemeSettings, error) {
	db := s.db.WithContext(ctx)
	settings, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, errThemeNotFound
	}
	settings.DefaultLanguage = nil

	if err := s.apply(db, settings, req); err != nil {
		return nil, err
	}
	if err := db.Save(settings).Error; err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID)
	return s.Get(ctx, userID)
}

func (s *ThemeSettingsService) apply(db *gorm.DB, settings *models.ThemeSettings, req *ThemeSettingsRequest) error {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&settings.PrimaryColor, req.PrimaryColor)
	set(&settings.SecondaryColor, req.SecondaryColor)
	set(&settings.AccentColor, req.AccentColor)
	set(&settings.BackgroundColor, req.BackgroundColor)
	set(&settings.TextColor, req.TextColor)
	set(&settings.FontFamily, req.FontFamily)
	set(&settings.LogoURL, req.LogoURL)

	if req.DefaultLanguageID != nil {
		var count int64
		if err := db.Model(&models.Language{}).Where("id = ?", *req.DefaultLanguageID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errLanguageNotFound
		}
		id := *req.DefaultLanguageID
		settings.DefaultLanguageID = &id
	}
	return nil
}

// invalidate drops cached public views, which embed the owner's theme.
func (s *ThemeSettingsService) invalidate(ctx context.Context, userID uint) {
	slugs, err := portfolioSlugsForUser(s.db.WithContext(ctx), userID)
	if err != nil {
		logger.Warnf("[ThemeSettings] lookup portfolios of user %d failed: %v", userID, err)
		return
	}
	s.cache.Invalidate(ctx, slugs...)
}

type LanguageService struct {
	db *gorm.DB
}

func NewLanguageService(db *gorm.DB) *LanguageService {
	return &LanguageService{db: db}
}

func (s *LanguageService) List(ctx context.Context) ([]models.Language, error) {
	var languages []models.Language
	err := s.db.WithContext(ctx).Order("code ASC").Find(&languages).Error
	return languages, err
}
