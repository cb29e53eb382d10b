package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/huangang/folio/backend/internal/models"
	"github.com/huangang/folio/backend/pkg/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockFixture struct {
	*portfolioFixture
	blocks  *ContentBlockService
	project *models.Project
	content *models.ProjectContent
}

func newBlockFixture(t *testing.T) *blockFixture {
	t.Helper()
	f := newPortfolioFixture(t)
	project := createProject(t, f.projects, f.owner.ID, "Deck")
	content, err := f.projects.AddContent(context.Background(), f.owner.ID, project.ID, languageByCode(t, f.db, "en").ID)
	require.NoError(t, err)
	return &blockFixture{
		portfolioFixture: f,
		blocks:           NewContentBlockService(f.db),
		project:          project,
		content:          content,
	}
}

func TestDefaultBlockPayload(t *testing.T) {
	tests := []struct {
		blockType models.BlockType
		configKey string
		configVal string
		textKey   string
		textVal   string
	}{
		{models.BlockTypeHeader, "size", "large", "text", "New Header"},
		{models.BlockTypeText, "align", "left", "text", "New text content"},
		{models.BlockTypeImage, "width", "full", "alt", "Image description"},
		{models.BlockTypeQuote, "style", "modern", "author", "Author name"},
	}
	for _, tt := range tests {
		t.Run(string(tt.blockType), func(t *testing.T) {
			config, content := DefaultBlockPayload(tt.blockType)
			assert.Equal(t, tt.configVal, config[tt.configKey])
			assert.Equal(t, tt.textVal, content[tt.textKey])
		})
	}

	// callers get independent maps
	a, _ := DefaultBlockPayload(models.BlockTypeText)
	a["align"] = "right"
	b, _ := DefaultBlockPayload(models.BlockTypeText)
	assert.Equal(t, "left", b["align"])
}

func TestBlockCreate_DefaultOrderStartsAtOne(t *testing.T) {
	f := newBlockFixture(t)
	ctx := context.Background()

	first, err := f.blocks.Create(ctx, f.owner.ID, f.project.ID, &CreateBlockRequest{ProjectContentID: f.content.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Order)
	assert.Equal(t, models.BlockTypeText, first.Type)

	second, err := f.blocks.Create(ctx, f.owner.ID, f.project.ID, &CreateBlockRequest{ProjectContentID: f.content.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Order)

	explicit, err := f.blocks.Create(ctx, f.owner.ID, f.project.ID, &CreateBlockRequest{
		ProjectContentID: f.content.ID,
		Order:            intPtr(10),
	})
	require.NoError(t, err)
	assert.Equal(t, 10, explicit.Order)

	next, err := f.blocks.Create(ctx, f.owner.ID, f.project.ID, &CreateBlockRequest{ProjectContentID: f.content.ID})
	require.NoError(t, err)
	assert.Equal(t, 11, next.Order, "max+1 follows the highest order")
}

func TestBlockCreate_MergesOverridesOverDefaults(t *testing.T) {
	f := newBlockFixture(t)

	block, err := f.blocks.Create(context.Background(), f.owner.ID, f.project.ID, &CreateBlockRequest{
		ProjectContentID: f.content.ID,
		Type:             models.BlockTypeQuote,
		Content:          map[string]interface{}{"text": "Less is more"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Less is more", block.Content["text"])
	assert.Equal(t, "Author name", block.Content["author"])
	assert.Equal(t, "modern", block.Config["style"])
}

func TestBlockCreate_Errors(t *testing.T) {
	f := newBlockFixture(t)
	ctx := context.Background()
	otherProject := createProject(t, f.projects, f.owner.ID, "Other")

	tests := []struct {
		name      string
		userID    uint
		projectID uint
		req       *CreateBlockRequest
		status    int
	}{
		{"invalid type", f.owner.ID, f.project.ID, &CreateBlockRequest{ProjectContentID: f.content.ID, Type: "VIDEO"}, http.StatusBadRequest},
		{"missing content", f.owner.ID, f.project.ID, &CreateBlockRequest{ProjectContentID: 9999}, http.StatusNotFound},
		{"content of another project", f.owner.ID, otherProject.ID, &CreateBlockRequest{ProjectContentID: f.content.ID}, http.StatusForbidden},
		{"foreign project", f.other.ID, f.project.ID, &CreateBlockRequest{ProjectContentID: f.content.ID}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.blocks.Create(ctx, tt.userID, tt.projectID, tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.status, response.StatusOf(err))
		})
	}
}

func TestBlockUpdate_ReplacesConfigWholesale(t *testing.T) {
	f := newBlockFixture(t)
	ctx := context.Background()
	block, err := f.blocks.Create(ctx, f.owner.ID, f.project.ID, &CreateBlockRequest{
		ProjectContentID: f.content.ID,
		Type:             models.BlockTypeHeader,
	})
	require.NoError(t, err)

	header := models.BlockTypeHeader
	updated, err := f.blocks.Update(ctx, f.owner.ID, f.project.ID, &UpdateBlockRequest{
		BlockID: block.ID,
		Type:    &header,
		Config:  map[string]interface{}{"align": "right"},
		Order:   intPtr(5),
	})
	require.NoError(t, err)
	assert.Equal(t, "right", updated.Config["align"])
	_, hasSize := updated.Config["size"]
	assert.False(t, hasSize, "config is replaced, not merged")
	assert.Equal(t, "New Header", updated.Content["text"], "content untouched when absent")
	assert.Equal(t, 5, updated.Order)

	video := models.BlockType("VIDEO")
	_, err = f.blocks.Update(ctx, f.owner.ID, f.project.ID, &UpdateBlockRequest{BlockID: block.ID, Type: &video})
	assert.Equal(t, http.StatusBadRequest, response.StatusOf(err))
}

func TestBlockUpdate_WrongProjectIsForbidden(t *testing.T) {
	f := newBlockFixture(t)
	ctx := context.Background()
	block, err := f.blocks.Create(ctx, f.owner.ID, f.project.ID, &CreateBlockRequest{ProjectContentID: f.content.ID})
	require.NoError(t, err)
	otherProject := createProject(t, f.projects, f.owner.ID, "Other")

	_, err = f.blocks.Update(ctx, f.owner.ID, otherProject.ID, &UpdateBlockRequest{
		BlockID: block.ID,
		Content: map[string]interface{}{"text": "moved"},
	})
	assert.Equal(t, http.StatusForbidden, response.StatusOf(err))

	_, err = f.blocks.Update(ctx, f.owner.ID, f.project.ID, &UpdateBlockRequest{BlockID: 9999})
	assert.Equal(t, http.StatusNotFound, response.StatusOf(err))

	var reloaded models.ContentBlock
	require.NoError(t, f.db.First(&reloaded, block.ID).Error)
	assert.Equal(t, "New text content", reloaded.Content["text"])
}

func TestBlockDelete(t *testing.T) {
	f := newBlockFixture(t)
	ctx := context.Background()
	block, err := f.blocks.Create(ctx, f.owner.ID, f.project.ID, &CreateBlockRequest{ProjectContentID: f.content.ID})
	require.NoError(t, err)

	_, err = f.blocks.Delete(ctx, f.other.ID, f.project.ID, block.ID)
	assert.Equal(t, http.StatusNotFound, response.StatusOf(err))

	deleted, err := f.blocks.Delete(ctx, f.owner.ID, f.project.ID, block.ID)
	require.NoError(t, err)
	assert.Equal(t, block.ID, deleted.ID)

	_, err = f.blocks.Delete(ctx, f.owner.ID, f.project.ID, block.ID)
	assert.Equal(t, http.StatusNotFound, response.StatusOf(err))
}

func TestBlockSetSlideTag(t *testing.T) {
	f := newBlockFixture(t)
	ctx := context.Background()
	slideTags := NewSlideTagService(f.db)
	block, err := f.blocks.Create(ctx, f.owner.ID, f.project.ID, &CreateBlockRequest{ProjectContentID: f.content.ID})
	require.NoError(t, err)

	foreign, err := slideTags.Create(ctx, f.other.ID, "theirs")
	require.NoError(t, err)
	_, err = f.blocks.SetSlideTag(ctx, f.owner.ID, f.project.ID, block.ID, &foreign.ID)
	assert.Equal(t, http.StatusNotFound, response.StatusOf(err))

	mine, err := slideTags.Create(ctx, f.owner.ID, "cover")
	require.NoError(t, err)
	tagged, err := f.blocks.SetSlideTag(ctx, f.owner.ID, f.project.ID, block.ID, &mine.ID)
	require.NoError(t, err)
	require.NotNil(t, tagged.SlideTagID)
	assert.Equal(t, mine.ID, *tagged.SlideTagID)

	cleared, err := f.blocks.SetSlideTag(ctx, f.owner.ID, f.project.ID, block.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.SlideTagID)
	assert.Nil(t, cleared.SlideTag)
}

func TestProjectGet_BlocksOrdered(t *testing.T) {
	f := newBlockFixture(t)
	ctx := context.Background()
	for _, order := range []int{3, 1, 2} {
		_, err := f.blocks.Create(ctx, f.owner.ID, f.project.ID, &CreateBlockRequest{
			ProjectContentID: f.content.ID,
			Order:            intPtr(order),
		})
		require.NoError(t, err)
	}

	project, err := f.projects.Get(ctx, f.owner.ID, f.project.ID)
	require.NoError(t, err)
	require.Len(t, project.Contents, 1)
	var orders []int
	for _, b := range project.Contents[0].Blocks {
		orders = append(orders, b.Order)
	}
	assert.Equal(t, []int{1, 2, 3}, orders)
}
