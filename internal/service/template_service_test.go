package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildsafe/safety-backend/internal/checklist"
	"github.com/buildsafe/safety-backend/internal/domain"
)

func strPtr(s string) *string { return &s }

func fallProtection() TemplateRequest {
	return TemplateRequest{
		Name:     "Fall Protection",
		Category: strPtr("Heights"),
		Trades:   []string{"Roofing", " roofing ", "Ironwork", ""},
		Items: []TemplateItemRequest{
			{Title: "Harness inspected"},
			{Title: "Anchor point rated"},
			{Title: "---SECTION: Ladders---", IsSectionHeader: true},
		},
	}
}

func newTemplateFixture(t *testing.T) (*store, TemplateService, *domain.Actor, *domain.Actor) {
	t.Helper()
	st := newStore()
	templates, _, _, _ := st.repos()
	admin := domain.ActorFromUser(st.addUser("admin@site.example", true))
	worker := domain.ActorFromUser(st.addUser("worker@site.example", false))
	return st, NewTemplateService(templates), admin, worker
}

func TestCreateTemplateAssignsPositions(t *testing.T) {
	_, svc, _, worker := newTemplateFixture(t)
	ctx := context.Background()

	created, err := svc.CreateTemplate(ctx, worker, fallProtection())
	require.NoError(t, err)
	assert.Equal(t, worker.ID, created.CreatedBy)
	assert.Equal(t, []string{"Roofing", "Ironwork"}, created.Trades)

	got, err := svc.GetTemplate(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 3)
	titles := []string{}
	for i, it := range got.Items {
		assert.Equal(t, i, it.DisplayOrder)
		titles = append(titles, it.Title)
	}
	assert.Equal(t, []string{"Harness inspected", "Anchor point rated", "---SECTION: Ladders---"}, titles)
	assert.True(t, got.Items[2].IsSectionHeader)
}

func TestCreateTemplateValidation(t *testing.T) {
	_, svc, _, worker := newTemplateFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		req   TemplateRequest
		field string
	}{
		{"blank name", TemplateRequest{Name: "   "}, "name"},
		{"blank item title", TemplateRequest{Name: "Ok", Items: []TemplateItemRequest{{Title: "x"}, {Title: " "}}}, "items[1].title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTemplate(ctx, worker, tt.req)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	_, err := svc.CreateTemplate(ctx, nil, fallProtection())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestGetTemplateUnknownIsNotFound(t *testing.T) {
	_, svc, _, _ := newTemplateFixture(t)
	_, err := svc.GetTemplate(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateTemplateReplacesItems(t *testing.T) {
	_, svc, _, worker := newTemplateFixture(t)
	ctx := context.Background()

	created, err := svc.CreateTemplate(ctx, worker, fallProtection())
	require.NoError(t, err)

	updated, err := svc.UpdateTemplate(ctx, worker, created.ID, TemplateRequest{
		Name:  "Fall Protection v2",
		Items: []TemplateItemRequest{{Title: "Guardrails"}, {Title: "Nets"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Fall Protection v2", updated.Name)
	require.Len(t, updated.Items, 2)
	assert.Equal(t, "Nets", updated.Items[1].Title)
	assert.Equal(t, 1, updated.Items[1].DisplayOrder)
	assert.NotEqual(t, created.Items[0].ID, updated.Items[0].ID)

	_, err = svc.UpdateTemplate(ctx, worker, uuid.New(), fallProtection())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteTemplateGates(t *testing.T) {
	st, svc, admin, worker := newTemplateFixture(t)
	ctx := context.Background()

	created, err := svc.CreateTemplate(ctx, worker, fallProtection())
	require.NoError(t, err)
	before := st.writeCount()

	assert.ErrorIs(t, svc.DeleteTemplate(ctx, worker, created.ID, true), domain.ErrForbidden)
	assert.ErrorIs(t, svc.DeleteTemplate(ctx, admin, created.ID, false), domain.ErrConfirmationRequired)
	assert.Equal(t, before, st.writeCount(), "rejected deletes must not reach the store")

	require.NoError(t, svc.DeleteTemplate(ctx, admin, created.ID, true))
	_, err = svc.GetTemplate(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListTemplatesFiltersAndExcludesEmpty(t *testing.T) {
	_, svc, _, worker := newTemplateFixture(t)
	ctx := context.Background()

	_, err := svc.CreateTemplate(ctx, worker, fallProtection())
	require.NoError(t, err)
	_, err = svc.CreateTemplate(ctx, worker, TemplateRequest{Name: "Empty draft", Category: strPtr("Electrical")})
	require.NoError(t, err)

	all, err := svc.ListTemplates(ctx, checklist.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 3, all[0].ItemCount)

	withEmpty, err := svc.ListTemplates(ctx, checklist.Filter{IncludeEmpty: true})
	require.NoError(t, err)
	assert.Len(t, withEmpty, 2)

	byTrade, err := svc.ListTemplates(ctx, checklist.Filter{Search: "IRONWORK"})
	require.NoError(t, err)
	assert.Len(t, byTrade, 1)

	none, err := svc.ListTemplates(ctx, checklist.Filter{Category: "Electrical"})
	require.NoError(t, err)
	assert.Empty(t, none)

	cats, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Electrical", "Heights"}, cats)
}
