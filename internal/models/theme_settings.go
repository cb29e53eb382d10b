package models

import "time"

// ThemeSettings is a user's branding applied to their public portfolios
type ThemeSettings struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            uint      `gorm:"uniqueIndex;not null" json:"userId"`
	PrimaryColor      string    `gorm:"size:20" json:"primaryColor"`
	SecondaryColor    string    `gorm:"size:20" json:"secondaryColor"`
	AccentColor       string    `gorm:"size:20" json:"accentColor"`
	BackgroundColor   string    `gorm:"size:20" json:"backgroundColor"`
	TextColor         string    `gorm:"size:20" json:"textColor"`
	FontFamily        string    `gorm:"size:100" json:"fontFamily"`
	LogoURL           string    `gorm:"size:500" json:"logoUrl"`
	DefaultLanguageID *uint     `json:"defaultLanguageId"`
	DefaultLanguage   *Language `gorm:"foreignKey:DefaultLanguageID" json:"defaultLanguage,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (ThemeSettings) TableName() string { return "theme_settings" }
