package models

import (
	"time"

	"gorm.io/datatypes"
)

// Language is a content language (seeded, read-only through the API)
type Language struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"uniqueIndex;size:10;not null" json:"code"`
	Name string `gorm:"size:100;not null" json:"name"`
}

func (Language) TableName() string { return "languages" }

// ProjectContent holds a project's slides for one language
type ProjectContent struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	ProjectID  uint           `gorm:"uniqueIndex:idx_project_language;not null" json:"projectId"`
	LanguageID uint           `gorm:"uniqueIndex:idx_project_language;not null" json:"languageId"`
	Language   *Language      `gorm:"foreignKey:LanguageID" json:"language,omitempty"`
	Blocks     []ContentBlock `gorm:"foreignKey:ProjectContentID" json:"blocks,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

func (ProjectContent) TableName() string { return "project_contents" }

// BlockType is the kind of slide a ContentBlock renders
type BlockType string

const (
	BlockTypeHeader BlockType = "HEADER"
	BlockTypeText   BlockType = "TEXT"
	BlockTypeImage  BlockType = "IMAGE"
	BlockTypeQuote  BlockType = "QUOTE"
)

// Valid reports whether t is one of the known block types.
func (t BlockType) Valid() bool {
	switch t {
	case BlockTypeHeader, BlockTypeText, BlockTypeImage, BlockTypeQuote:
		return true
	}
	return false
}

// ContentBlock is one ordered slide of a ProjectContent
type ContentBlock struct {
	ID               uint              `gorm:"primaryKey" json:"id"`
	ProjectContentID uint              `gorm:"index;not null" json:"projectContentId"`
	Type             BlockType         `gorm:"size:20;not null;default:TEXT" json:"type"`
	Order            int               `gorm:"column:sort_order;not null;default:0" json:"order"`
	Config           datatypes.JSONMap `json:"config"`
	Content          datatypes.JSONMap `json:"content"`
	SlideTagID       *uint             `gorm:"index" json:"slideTagId"`
	SlideTag         *SlideTag         `gorm:"foreignKey:SlideTagID" json:"slideTag,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

func (ContentBlock) TableName() string { return "content_blocks" }
