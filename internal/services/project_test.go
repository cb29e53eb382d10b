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

func projectNames(projects []models.Project) []string {
	names := make([]string, len(projects))
	for i, p := range projects {
		names[i] = p.Name
	}
	return names
}

func TestProjectCreate_AppendsOrder(t *testing.T) {
	f := newPortfolioFixture(t)

	a := createProject(t, f.projects, f.owner.ID, "A")
	b := createProject(t, f.projects, f.owner.ID, "B")
	foreign := createProject(t, f.projects, f.other.ID, "X")

	assert.Equal(t, 0, a.Order)
	assert.Equal(t, 1, b.Order)
	assert.Equal(t, 0, foreign.Order, "orders are per owner")
}

func TestProjectCreate_TrimsOptionalFields(t *testing.T) {
	f := newPortfolioFixture(t)

	p, err := f.projects.Create(context.Background(), f.owner.ID, &CreateProjectRequest{
		Name:        " Rebrand ",
		Description: strPtr("  "),
		Client:      strPtr(" ACME "),
	})
	require.NoError(t, err)
	assert.Equal(t, "Rebrand", p.Name)
	assert.Nil(t, p.Description)
	require.NotNil(t, p.Client)
	assert.Equal(t, "ACME", *p.Client)
}

func TestProjectGet_ForeignIsNotFound(t *testing.T) {
	f := newPortfolioFixture(t)
	p := createProject(t, f.projects, f.owner.ID, "Private")

	_, err := f.projects.Get(context.Background(), f.other.ID, p.ID)
	assert.Equal(t, http.StatusNotFound, response.StatusOf(err))
}

func TestProjectUpdate(t *testing.T) {
	f := newPortfolioFixture(t)
	ctx := context.Background()
	p := createProject(t, f.projects, f.owner.ID, "Old")

	_, err := f.projects.Update(ctx, f.owner.ID, p.ID, &UpdateProjectRequest{})
	assert.Equal(t, http.StatusBadRequest, response.StatusOf(err))

	_, err = f.projects.Update(ctx, f.other.ID, p.ID, &UpdateProjectRequest{Name: strPtr("New")})
	assert.Equal(t, http.StatusNotFound, response.StatusOf(err))

	_, err = f.projects.Update(ctx, f.owner.ID, p.ID, &UpdateProjectRequest{Name: strPtr("  ")})
	assert.Equal(t, http.StatusBadRequest, response.StatusOf(err))

	updated, err := f.projects.Update(ctx, f.owner.ID, p.ID, &UpdateProjectRequest{Name: strPtr("New"), Client: strPtr("Studio")})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)
	require.NotNil(t, updated.Client)
	assert.Equal(t, "Studio", *updated.Client)
}

func TestProjectReorder(t *testing.T) {
	f := newPortfolioFixture(t)
	ctx := context.Background()
	a := createProject(t, f.projects, f.owner.ID, "A")
	b := createProject(t, f.projects, f.owner.ID, "B")
	c := createProject(t, f.projects, f.owner.ID, "C")

	projects, err := f.projects.Reorder(ctx, f.owner.ID, []uint{c.ID, a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, projectNames(projects))
	for i, p := range projects {
		assert.Equal(t, i, p.Order)
	}
}

func TestProjectReorder_RejectsWithoutWriting(t *testing.T) {
	f := newPortfolioFixture(t)
	ctx := context.Background()
	a := createProject(t, f.projects, f.owner.ID, "A")
	b := createProject(t, f.projects, f.owner.ID, "B")
	foreign := createProject(t, f.projects, f.other.ID, "X")

	tests := []struct {
		name   string
		ids    []uint
		status int
	}{
		{"empty", nil, http.StatusBadRequest},
		{"duplicate", []uint{b.ID, b.ID}, http.StatusBadRequest},
		{"foreign id", []uint{b.ID, foreign.ID, a.ID}, http.StatusForbidden},
		{"unknown id", []uint{b.ID, 9999}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.projects.Reorder(ctx, f.owner.ID, tt.ids)
			require.Error(t, err)
			assert.Equal(t, tt.status, response.StatusOf(err))
		})
	}

	projects, err := f.projects.List(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, projectNames(projects))
	assert.Equal(t, 0, projects[0].Order)
	assert.Equal(t, 1, projects[1].Order)
}

func TestProjectDelete_CascadesAndRenumbersPortfolios(t *testing.T) {
	f := newPortfolioFixture(t)
	ctx := context.Background()
	first := f.createPortfolio(t, "First")
	second := f.createPortfolio(t, "Second")
	a := createProject(t, f.projects, f.owner.ID, "A")
	b := createProject(t, f.projects, f.owner.ID, "B")
	c := createProject(t, f.projects, f.owner.ID, "C")

	for _, project := range []*models.Project{a, b, c} {
		_, err := f.portfolios.AddProject(ctx, f.owner.ID, first.Slug, project.ID)
		require.NoError(t, err)
	}
	for _, project := range []*models.Project{b, c} {
		_, err := f.portfolios.AddProject(ctx, f.owner.ID, second.Slug, project.ID)
		require.NoError(t, err)
	}

	en := languageByCode(t, f.db, "en")
	content, err := f.projects.AddContent(ctx, f.owner.ID, b.ID, en.ID)
	require.NoError(t, err)
	blocks := NewContentBlockService(f.db)
	_, err = blocks.Create(ctx, f.owner.ID, b.ID, &CreateBlockRequest{ProjectContentID: content.ID})
	require.NoError(t, err)
	tags := NewTagService(f.db)
	tag, err := tags.Create(ctx, f.owner.ID, "web")
	require.NoError(t, err)
	_, _, err = tags.AddToProject(ctx, f.owner.ID, b.ID, tag.ID)
	require.NoError(t, err)

	_, err = f.projects.Delete(ctx, f.other.ID, b.ID)
	assert.Equal(t, http.StatusNotFound, response.StatusOf(err))

	deleted, err := f.projects.Delete(ctx, f.owner.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", deleted.Name)

	p1, err := f.portfolios.GetBySlug(ctx, first.Slug)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, linkOrders(p1))
	assert.Equal(t, []uint{a.ID, c.ID}, linkedProjectIDs(p1))

	p2, err := f.portfolios.GetBySlug(ctx, second.Slug)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, linkOrders(p2))
	assert.Equal(t, []uint{c.ID}, linkedProjectIDs(p2))

	for _, model := range []interface{}{&models.ProjectContent{}, &models.ContentBlock{}, &models.ProjectTag{}} {
		var count int64
		require.NoError(t, f.db.Model(model).Count(&count).Error)
		assert.Zero(t, count, "%T rows left behind", model)
	}
	assert.ElementsMatch(t, []string{first.Slug, second.Slug}, f.cache.invalidated[len(f.cache.invalidated)-2:])

	// the tag itself is untouched
	remaining, err := tags.List(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestProjectContents(t *testing.T) {
	f := newPortfolioFixture(t)
	ctx := context.Background()
	p := createProject(t, f.projects, f.owner.ID, "A")
	en := languageByCode(t, f.db, "en")
	fr := languageByCode(t, f.db, "fr")

	content, err := f.projects.AddContent(ctx, f.owner.ID, p.ID, en.ID)
	require.NoError(t, err)
	assert.Equal(t, "en", content.Language.Code)

	_, err = f.projects.AddContent(ctx, f.owner.ID, p.ID, en.ID)
	assert.Equal(t, http.StatusBadRequest, response.StatusOf(err), "one content per language")

	_, err = f.projects.AddContent(ctx, f.owner.ID, p.ID, 9999)
	assert.Equal(t, http.StatusNotFound, response.StatusOf(err))

	_, err = f.projects.AddContent(ctx, f.other.ID, p.ID, fr.ID)
	assert.Equal(t, http.StatusNotFound, response.StatusOf(err))

	frContent, err := f.projects.AddContent(ctx, f.owner.ID, p.ID, fr.ID)
	require.NoError(t, err)

	loaded, err := f.projects.Get(ctx, f.owner.ID, p.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Contents, 2)

	_, err = f.projects.DeleteContent(ctx, f.owner.ID, p.ID, frContent.ID)
	require.NoError(t, err)
	_, err = f.projects.DeleteContent(ctx, f.owner.ID, p.ID, frContent.ID)
	assert.Equal(t, http.StatusNotFound, response.StatusOf(err))

	loaded, err = f.projects.Get(ctx, f.owner.ID, p.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Contents, 1)
	assert.Equal(t, content.ID, loaded.Contents[0].ID)
}
