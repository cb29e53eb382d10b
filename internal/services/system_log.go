package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/huangang/folio/backend/internal/models"
	"github.com/huangang/folio/backend/pkg/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	LogLevelInfo    = "info"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
)

// LogEntry is one activity record before it is stored.
type LogEntry struct {
	Level     string
	Module    string
	Action    string
	Message   string
	Status    int
	RequestID string
	UserID    *uint
	IP        string
	UserAgent string
	Extra     interface{}
}

type SystemLogService struct {
	db *gorm.DB
}

func NewSystemLogService(db *gorm.DB) *SystemLogService {
	return &SystemLogService{db: db}
}

type ActivityListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
	Module   string `form:"module"`
}

type ActivityListResponse struct {
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
	Items    []models.SystemLog `json:"items"`
}

// Record stores an entry. Failures are logged and swallowed so auditing never
// breaks the request being audited.
func (s *SystemLogService) Record(ctx context.Context, e *LogEntry) {
	if e.Level == "" {
		e.Level = LogLevelInfo
	}

	var extra datatypes.JSON
	if e.Extra != nil {
		if b, err := json.Marshal(e.Extra); err == nil {
			extra = b
		}
	}

	entry := &models.SystemLog{
		Level:     e.Level,
		Module:    e.Module,
		Action:    e.Action,
		Message:   e.Message,
		Status:    e.Status,
		RequestID: e.RequestID,
		UserID:    e.UserID,
		IP:        e.IP,
		UserAgent: e.UserAgent,
		Extra:     extra,
		CreatedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		logger.Warn().Err(err).Str("module", e.Module).Str("action", e.Action).Msg("activity log write failed")
	}
}

// ListForUser pages through the caller's activity, newest first.
func (s *SystemLogService) ListForUser(ctx context.Context, userID uint, req *ActivityListRequest) (*ActivityListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	query := s.db.WithContext(ctx).Model(&models.SystemLog{}).Where("user_id = ?", userID)
	if req.Module != "" {
		query = query.Where("module = ?", req.Module)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var logs []models.SystemLog
	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC, id DESC").Find(&logs).Error; err != nil {
		return nil, err
	}

	return &ActivityListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    logs,
	}, nil
}

// CleanupOldLogs deletes entries older than retentionDays and returns how many
// were removed.
func (s *SystemLogService) CleanupOldLogs(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
