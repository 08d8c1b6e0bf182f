// Package checklist holds the pure checklist operations shared by the API and
// its clients: drag-reordering, working snapshots, progress and filtering.
package checklist

import (
	"sort"

	"github.com/buildsafe/safety-backend/internal/domain"
)

// SortItems orders items ascending by DisplayOrder, keeping the input order for ties.
func SortItems(items []domain.ChecklistItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DisplayOrder < items[j].DisplayOrder
	})
}

// SortCompletionItems orders recorded items the same way.
func SortCompletionItems(items []domain.CompletionItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DisplayOrder < items[j].DisplayOrder
	})
}

// Renumber assigns DisplayOrder = position to every item.
func Renumber(items []domain.ChecklistItem) {
	for i := range items {
		items[i].DisplayOrder = i
	}
}

// CanMove reports whether ReorderItems would change the order of items.
func CanMove(items []domain.ChecklistItem, dragged, target int) bool {
	if dragged < 0 || dragged >= len(items) || target < 0 || target >= len(items) || dragged == target {
		return false
	}
	return !items[dragged].IsSectionHeader && !items[target].IsSectionHeader
}

// ReorderItems moves the item at dragged to target and renumbers the result.
// Section headers can be neither dragged nor dropped onto; in that case, and
// for out-of-range or identical indexes, the input is returned unchanged.
func ReorderItems(items []domain.ChecklistItem, dragged, target int) []domain.ChecklistItem {
	if !CanMove(items, dragged, target) {
		return items
	}

	moved := items[dragged]
	out := make([]domain.ChecklistItem, 0, len(items))
	out = append(out, items[:dragged]...)
	out = append(out, items[dragged+1:]...)

	out = append(out[:target], append([]domain.ChecklistItem{moved}, out[target:]...)...)
	Renumber(out)
	return out
}
