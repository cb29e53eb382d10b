package models

import "time"

// Portfolio is a named, shareable selection of projects addressed by slug
type Portfolio struct {
	ID          uint               `gorm:"primaryKey" json:"id"`
	Slug        string             `gorm:"uniqueIndex;size:64;not null" json:"slug"`
	Name        string             `gorm:"size:200;not null" json:"name"`
	Description *string            `gorm:"type:text" json:"description"`
	UserID      uint               `gorm:"index;not null" json:"userId"`
	Links       []PortfolioProject `gorm:"foreignKey:PortfolioID" json:"links"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

func (Portfolio) TableName() string { return "portfolios" }

// PortfolioProject links a project into a portfolio at a position.
// Orders within one portfolio always form the dense range 0..n-1.
type PortfolioProject struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PortfolioID uint      `gorm:"uniqueIndex:idx_portfolio_project;not null" json:"portfolioId"`
	ProjectID   uint      `gorm:"uniqueIndex:idx_portfolio_project;index;not null" json:"projectId"`
	Project     *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Order       int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (PortfolioProject) TableName() string { return "portfolio_projects" }
