package models

import "time"

// Tag labels projects; names are unique per owner
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex:idx_tag_user_name;size:100;not null" json:"name"`
	UserID    uint      `gorm:"uniqueIndex:idx_tag_user_name;not null" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Tag) TableName() string { return "tags" }

// ProjectTag joins a project and a tag
type ProjectTag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"uniqueIndex:idx_project_tag;not null" json:"projectId"`
	TagID     uint      `gorm:"uniqueIndex:idx_project_tag;index;not null" json:"tagId"`
	Tag       *Tag      `gorm:"foreignKey:TagID" json:"tag,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (ProjectTag) TableName() string { return "project_tags" }

// SlideTag labels individual content blocks; scoped per owner like Tag
type SlideTag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex:idx_slide_tag_user_name;size:100;not null" json:"name"`
	UserID    uint      `gorm:"uniqueIndex:idx_slide_tag_user_name;not null" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (SlideTag) TableName() string { return "slide_tags" }
