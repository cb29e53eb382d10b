package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/huangang/folio/backend/internal/models"
	"github.com/huangang/folio/backend/pkg/response"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	errBlockNotFound     = response.NewNotFound("block not found")
	errBlockNotInProject = response.NewForbidden("block does not belong to this project")
)

type ContentBlockService struct {
	db *gorm.DB
}

func NewContentBlockService(db *gorm.DB) *ContentBlockService {
	return &ContentBlockService{db: db}
}

type CreateBlockRequest struct {
	ProjectContentID uint                   `json:"projectContentId" binding:"required"`
	Type             models.BlockType       `json:"type"`
	Order            *int                   `json:"order" binding:"omitempty,min=0"`
	Config           map[string]interface{} `json:"config"`
	Content          map[string]interface{} `json:"content"`
}

type UpdateBlockRequest struct {
	BlockID uint                   `json:"blockId" binding:"required"`
	Type    *models.BlockType      `json:"type"`
	Order   *int                   `json:"order" binding:"omitempty,min=0"`
	Config  map[string]interface{} `json:"config"`
	Content map[string]interface{} `json:"content"`
}

type BlockSlideTagRequest struct {
	TagID *uint `json:"tagId"`
}

// DefaultBlockPayload returns fresh default config and content for a block type.
func DefaultBlockPayload(t models.BlockType) (config, content datatypes.JSONMap) {
	switch t {
	case models.BlockTypeHeader:
		return datatypes.JSONMap{"align": "center", "size": "large"},
			datatypes.JSONMap{"text": "New Header"}
	case models.BlockTypeImage:
		return datatypes.JSONMap{"width": "full", "height": "auto"},
			datatypes.JSONMap{"src": "", "alt": "Image description"}
	case models.BlockTypeQuote:
		return datatypes.JSONMap{"style": "modern"},
			datatypes.JSONMap{"text": "New quote text", "author": "Author name"}
	default:
		return datatypes.JSONMap{"align": "left"},
			datatypes.JSONMap{"text": "New text content"}
	}
}

// mergeOver copies override keys on top of base.
func mergeOver(base datatypes.JSONMap, override map[string]interface{}) datatypes.JSONMap {
	for k, v := range override {
		base[k] = v
	}
	return base
}

// Create adds a block to a project content. Without an explicit order the
// block goes after the current last one, or first with order 1.
func (s *ContentBlockService) Create(ctx context.Context, userID, projectID uint, req *CreateBlockRequest) (*models.ContentBlock, error) {
	blockType := req.Type
	if blockType == "" {
		blockType = models.BlockTypeText
	}
	if !blockType.Valid() {
		return nil, response.NewBadRequest("invalid block type: " + string(blockType))
	}

	var block *models.ContentBlock
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findOwnedProject(tx, userID, projectID); err != nil {
			return err
		}

		var content models.ProjectContent
		if err := tx.First(&content, req.ProjectContentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("project content not found")
			}
			return err
		}
		if content.ProjectID != projectID {
			return response.NewForbidden("project content does not belong to this project")
		}

		order := 1
		if req.Order != nil {
			order = *req.Order
		} else {
			var maxOrder sql.NullInt64
			if err := tx.Model(&models.ContentBlock{}).
				Where("project_content_id = ?", content.ID).
				Select("MAX(sort_order)").
				Scan(&maxOrder).Error; err != nil {
				return err
			}
			if maxOrder.Valid {
				order = int(maxOrder.Int64) + 1
			}
		}

		config, payload := DefaultBlockPayload(blockType)
		block = &models.ContentBlock{
			ProjectContentID: content.ID,
			Type:             blockType,
			Order:            order,
			Config:           mergeOver(config, req.Config),
			Content:          mergeOver(payload, req.Content),
		}
		return tx.Create(block).Error
	})
	if err != nil {
		return nil, err
	}
	return block, nil
}

// Update changes a block. Config and content are replaced wholesale.
func (s *ContentBlockService) Update(ctx context.Context, userID, projectID uint, req *UpdateBlockRequest) (*models.ContentBlock, error) {
	db := s.db.WithContext(ctx)
	block, err := findProjectBlock(db, userID, projectID, req.BlockID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Type != nil {
		if !req.Type.Valid() {
			return nil, response.NewBadRequest("invalid block type: " + string(*req.Type))
		}
		updates["type"] = *req.Type
	}
	if req.Order != nil {
		updates["sort_order"] = *req.Order
	}
	if req.Config != nil {
		updates["config"] = datatypes.JSONMap(req.Config)
	}
	if req.Content != nil {
		updates["content"] = datatypes.JSONMap(req.Content)
	}
	if len(updates) == 0 {
		return block, nil
	}

	if err := db.Model(block).Updates(updates).Error; err != nil {
		return nil, err
	}
	return reloadBlock(db, block.ID)
}

func (s *ContentBlockService) Delete(ctx context.Context, userID, projectID, blockID uint) (*models.ContentBlock, error) {
	db := s.db.WithContext(ctx)
	block, err := findProjectBlock(db, userID, projectID, blockID)
	if err != nil {
		return nil, err
	}
	if err := db.Delete(block).Error; err != nil {
		return nil, err
	}
	return block, nil
}

// SetSlideTag attaches a slide tag to a block, or clears it when tagID is nil.
func (s *ContentBlockService) SetSlideTag(ctx context.Context, userID, projectID, blockID uint, tagID *uint) (*models.ContentBlock, error) {
	db := s.db.WithContext(ctx)
	block, err := findProjectBlock(db, userID, projectID, blockID)
	if err != nil {
		return nil, err
	}

	if tagID != nil {
		if _, err := findOwnedSlideTag(db, userID, *tagID); err != nil {
			return nil, err
		}
	}

	if err := db.Model(block).Update("slide_tag_id", tagID).Error; err != nil {
		return nil, err
	}
	return reloadBlock(db, block.ID)
}

// findProjectBlock loads a block after checking the caller owns projectID and
// the block sits under one of that project's contents.
func findProjectBlock(db *gorm.DB, userID, projectID, blockID uint) (*models.ContentBlock, error) {
	if _, err := findOwnedProject(db, userID, projectID); err != nil {
		return nil, err
	}

	var block models.ContentBlock
	if err := db.First(&block, blockID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errBlockNotFound
		}
		return nil, err
	}

	var content models.ProjectContent
	if err := db.First(&content, block.ProjectContentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errBlockNotFound
		}
		return nil, err
	}
	if content.ProjectID != projectID {
		return nil, errBlockNotInProject
	}
	return &block, nil
}

func reloadBlock(db *gorm.DB, blockID uint) (*models.ContentBlock, error) {
	var block models.ContentBlock
	if err := db.Preload("SlideTag").First(&block, blockID).Error; err != nil {
		return nil, err
	}
	return &block, nil
}
