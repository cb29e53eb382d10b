package models

import "time"

// Project is a user's piece of work, described per language by ProjectContent
type Project struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	Name        string           `gorm:"size:200;not null" json:"name"`
	Description *string          `gorm:"type:text" json:"description"`
	Client      *string          `gorm:"size:200" json:"client"`
	Order       int              `gorm:"column:sort_order;not null;default:0;index" json:"order"`
	UserID      uint             `gorm:"index;not null" json:"userId"`
	Contents    []ProjectContent `gorm:"foreignKey:ProjectID" json:"contents,omitempty"`
	Tags        []ProjectTag     `gorm:"foreignKey:ProjectID" json:"tags,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

func (Project) TableName() string { return "projects" }
