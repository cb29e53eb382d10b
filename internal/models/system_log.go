package models

import (
	"time"

	"gorm.io/datatypes"
)

// SystemLog is one entry of a user's activity trail, written by the audit
// middleware after every authenticated write.
type SystemLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    *uint          `gorm:"index:idx_system_logs_user_created,priority:1" json:"userId"`
	Level     string         `gorm:"size:20;not null;default:info" json:"level"`
	Module    string         `gorm:"size:100;index" json:"module"`
	Action    string         `gorm:"size:50" json:"action"`
	Message   string         `gorm:"type:text" json:"message"`
	Status    int            `json:"status"`
	RequestID string         `gorm:"size:64" json:"requestId"`
	IP        string         `gorm:"size:45" json:"ip"`
	UserAgent string         `gorm:"size:500" json:"userAgent"`
	Extra     datatypes.JSON `json:"extra"`
	CreatedAt time.Time      `gorm:"index;index:idx_system_logs_user_created,priority:2" json:"createdAt"`
}

func (SystemLog) TableName() string { return "system_logs" }
