package checklist

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildsafe/safety-backend/internal/domain"
)

func threeItemTemplate() *domain.ChecklistTemplate {
	desc := "Daily scaffold walk"
	return &domain.ChecklistTemplate{
		ID:          uuid.New(),
		Name:        "Scaffold",
		Description: &desc,
		Items: []domain.ChecklistItem{
			{ID: uuid.New(), Title: "Base plates", DisplayOrder: 2},
			{ID: uuid.New(), Title: "Guardrails", DisplayOrder: 0},
			{ID: uuid.New(), Title: "Toe boards", DisplayOrder: 1},
		},
	}
}

func TestNewSnapshotIsUncheckedAndOrdered(t *testing.T) {
	s := NewSnapshot(threeItemTemplate())

	require.Len(t, s.Entries, 3)
	assert.Equal(t, "Daily scaffold walk", s.Description)
	for i, e := range s.Entries {
		assert.False(t, e.IsChecked)
		assert.Empty(t, e.Notes)
		assert.Equal(t, i, e.DisplayOrder)
	}
	assert.Equal(t, "Guardrails", s.Entries[0].Title)
}

func TestToggleThenProgressFloors(t *testing.T) {
	s := NewSnapshot(threeItemTemplate())

	require.NoError(t, s.Toggle(1))
	assert.Equal(t, 33, s.Progress())

	require.NoError(t, s.Toggle(0))
	assert.Equal(t, 66, s.Progress())

	require.NoError(t, s.Toggle(2))
	assert.Equal(t, 100, s.Progress())

	require.NoError(t, s.Toggle(2))
	assert.Equal(t, 66, s.Progress())
}

func TestCountsSkipSectionHeaders(t *testing.T) {
	tmpl := threeItemTemplate()
	tmpl.Items = append(tmpl.Items, domain.ChecklistItem{ID: uuid.New(), Title: "---SECTION: Edges---", DisplayOrder: 3, IsSectionHeader: true})
	s := NewSnapshot(tmpl)
	require.Len(t, s.Entries, 4)

	require.NoError(t, s.Toggle(0))
	checked, total := s.Counts()
	assert.Equal(t, 1, checked)
	assert.Equal(t, 3, total)
	assert.Equal(t, 33, s.Progress())
}

func TestToggleRejectsHeadersAndBadIndexes(t *testing.T) {
	tpl := &domain.ChecklistTemplate{Items: []domain.ChecklistItem{
		{ID: uuid.New(), Title: "Section", IsSectionHeader: true},
		{ID: uuid.New(), Title: "Item", DisplayOrder: 1},
	}}
	s := NewSnapshot(tpl)

	var ve *domain.ValidationError
	assert.ErrorAs(t, s.Toggle(0), &ve)
	assert.ErrorAs(t, s.Toggle(5), &ve)
	assert.ErrorAs(t, s.SetNote(-1, "x"), &ve)

	require.NoError(t, s.Toggle(1))
	assert.Equal(t, 100, s.Progress(), "headers are excluded from the total")
}

func TestSetNote(t *testing.T) {
	s := NewSnapshot(threeItemTemplate())
	require.NoError(t, s.SetNote(2, "bent plate on east side"))
	assert.Equal(t, "bent plate on east side", s.Entries[2].Notes)
}

func TestProgress(t *testing.T) {
	assert.Equal(t, 0, Progress(0, 0))
	assert.Equal(t, 0, Progress(3, 0))
	assert.Equal(t, 100, Progress(4, 4))
	assert.Equal(t, 100, Progress(5, 4))

	prev := -1
	for checked := 0; checked <= 7; checked++ {
		p := Progress(checked, 7)
		assert.GreaterOrEqual(t, p, prev)
		prev = p
	}
}

func TestCompletionProgress(t *testing.T) {
	items := []domain.CompletionItem{
		{Title: "H", IsSectionHeader: true},
		{Title: "a", IsChecked: true},
		{Title: "b"},
	}
	assert.Equal(t, 50, CompletionProgress(items))
	assert.Equal(t, 0, CompletionProgress(nil))
}
