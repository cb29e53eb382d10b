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

func TestTagCRUD(t *testing.T) {
	db := newTestDB(t)
	svc := NewTagService(db)
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com")
	other := createUser(t, db, "other@example.com")

	web, err := svc.Create(ctx, owner.ID, " web ")
	require.NoError(t, err)
	assert.Equal(t, "web", web.Name)

	_, err = svc.Create(ctx, owner.ID, "web")
	assert.Equal(t, http.StatusBadRequest, response.StatusOf(err), "duplicate name")

	_, err = svc.Create(ctx, other.ID, "web")
	assert.NoError(t, err, "names are unique per owner only")

	_, err = svc.Create(ctx, owner.ID, "  ")
	assert.Equal(t, http.StatusBadRequest, response.StatusOf(err))

	printTag, err := svc.Create(ctx, owner.ID, "print")
	require.NoError(t, err)

	_, err = svc.Update(ctx, owner.ID, printTag.ID, "web")
	assert.Equal(t, http.StatusBadRequest, response.StatusOf(err), "rename onto an existing name")

	renamed, err := svc.Update(ctx, owner.ID, printTag.ID, "editorial")
	require.NoError(t, err)
	assert.Equal(t, "editorial", renamed.Name)

	_, err = svc.Update(ctx, other.ID, printTag.ID, "stolen")
	assert.Equal(t, http.StatusNotFound, response.StatusOf(err))

	tags, err := svc.List(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "editorial", tags[0].Name)
	assert.Equal(t, "web", tags[1].Name)
}

func TestProjectTags_AddIsIdempotent(t *testing.T) {
	f := newPortfolioFixture(t)
	svc := NewTagService(f.db)
	ctx := context.Background()
	project := createProject(t, f.projects, f.owner.ID, "A")
	tag, err := svc.Create(ctx, f.owner.ID, "web")
	require.NoError(t, err)

	first, created, err := svc.AddToProject(ctx, f.owner.ID, project.ID, tag.ID)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.AddToProject(ctx, f.owner.ID, project.ID, tag.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	require.NotNil(t, second.Tag)
	assert.Equal(t, "web", second.Tag.Name)

	assignments, err := svc.ListForProject(ctx, f.owner.ID, project.ID)
	require.NoError(t, err)
	assert.Len(t, assignments, 1)

	require.NoError(t, svc.RemoveFromProject(ctx, f.owner.ID, project.ID, tag.ID))
	require.NoError(t, svc.RemoveFromProject(ctx, f.owner.ID, project.ID, tag.ID), "removing twice is fine")

	assignments, err = svc.ListForProject(ctx, f.owner.ID, project.ID)
	require.NoError(t, err)
	assert.Empty(t, assignments)
}

func TestProjectTags_Ownership(t *testing.T) {
	f := newPortfolioFixture(t)
	svc := NewTagService(f.db)
	ctx := context.Background()
	project := createProject(t, f.projects, f.owner.ID, "A")
	foreignTag, err := svc.Create(ctx, f.other.ID, "theirs")
	require.NoError(t, err)

	_, _, err = svc.AddToProject(ctx, f.owner.ID, project.ID, foreignTag.ID)
	assert.Equal(t, http.StatusNotFound, response.StatusOf(err))

	_, _, err = svc.AddToProject(ctx, f.other.ID, project.ID, foreignTag.ID)
	assert.Equal(t, http.StatusNotFound, response.StatusOf(err))

	_, err = svc.ListForProject(ctx, f.other.ID, project.ID)
	assert.Equal(t, http.StatusNotFound, response.StatusOf(err))
}

func TestTagDelete_RemovesAssignments(t *testing.T) {
	f := newPortfolioFixture(t)
	svc := NewTagService(f.db)
	ctx := context.Background()
	project := createProject(t, f.projects, f.owner.ID, "A")
	tag, err := svc.Create(ctx, f.owner.ID, "web")
	require.NoError(t, err)
	_, _, err = svc.AddToProject(ctx, f.owner.ID, project.ID, tag.ID)
	require.NoError(t, err)

	_, err = svc.Delete(ctx, f.other.ID, tag.ID)
	assert.Equal(t, http.StatusNotFound, response.StatusOf(err))

	_, err = svc.Delete(ctx, f.owner.ID, tag.ID)
	require.NoError(t, err)

	var count int64
	require.NoError(t, f.db.Model(&models.ProjectTag{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSlideTags(t *testing.T) {
	f := newPortfolioFixture(t)
	ctx := context.Background()
	slideTags := NewSlideTagService(f.db)
	blocks := NewContentBlockService(f.db)

	project := createProject(t, f.projects, f.owner.ID, "A")
	content, err := f.projects.AddContent(ctx, f.owner.ID, project.ID, languageByCode(t, f.db, "en").ID)
	require.NoError(t, err)
	block, err := blocks.Create(ctx, f.owner.ID, project.ID, &CreateBlockRequest{ProjectContentID: content.ID})
	require.NoError(t, err)

	cover, err := slideTags.Create(ctx, f.owner.ID, "cover")
	require.NoError(t, err)
	_, err = slideTags.Create(ctx, f.owner.ID, "cover")
	assert.Equal(t, http.StatusBadRequest, response.StatusOf(err))

	tagged, err := blocks.SetSlideTag(ctx, f.owner.ID, project.ID, block.ID, &cover.ID)
	require.NoError(t, err)
	require.NotNil(t, tagged.SlideTag)
	assert.Equal(t, "cover", tagged.SlideTag.Name)

	_, err = slideTags.Delete(ctx, f.owner.ID, cover.ID)
	require.NoError(t, err)

	var reloaded models.ContentBlock
	require.NoError(t, f.db.First(&reloaded, block.ID).Error)
	assert.Nil(t, reloaded.SlideTagID, "deleting a slide tag clears it from blocks")

	list, err := slideTags.List(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
