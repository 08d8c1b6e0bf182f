package checklist

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/buildsafe/safety-backend/internal/domain"
)

// SnapshotEntry is the working check/note state for one template item.
type SnapshotEntry struct {
	ChecklistItemID uuid.UUID `json:"checklist_item_id"`
	Title           string    `json:"title"`
	DisplayOrder    int       `json:"display_order"`
	IsSectionHeader bool      `json:"is_section_header"`
	IsChecked       bool      `json:"is_checked"`
	Notes           string    `json:"notes"`
}

// Snapshot is the in-progress state of a completion before it is submitted.
// It lives only in the caller's memory; nothing is persisted until submit.
type Snapshot struct {
	ChecklistID uuid.UUID       `json:"checklist_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Entries     []SnapshotEntry `json:"items"`
}

// NewSnapshot starts a completion of t: one unchecked entry per item, in display order.
func NewSnapshot(t *domain.ChecklistTemplate) *Snapshot {
	items := make([]domain.ChecklistItem, len(t.Items))
	copy(items, t.Items)
	SortItems(items)

	s := &Snapshot{
		ChecklistID: t.ID,
		Name:        t.Name,
		Entries:     make([]SnapshotEntry, 0, len(items)),
	}
	if t.Description != nil {
		s.Description = *t.Description
	}
	for _, it := range items {
		s.Entries = append(s.Entries, SnapshotEntry{
			ChecklistItemID: it.ID,
			Title:           it.Title,
			DisplayOrder:    it.DisplayOrder,
			IsSectionHeader: it.IsSectionHeader,
		})
	}
	return s
}

func (s *Snapshot) entry(index int) (*SnapshotEntry, error) {
	if index < 0 || index >= len(s.Entries) {
		return nil, domain.NewValidationError("index", fmt.Sprintf("item index %d out of range", index))
	}
	return &s.Entries[index], nil
}

// Toggle flips the checked state at index. Section headers are not checkable.
func (s *Snapshot) Toggle(index int) error {
	e, err := s.entry(index)
	if err != nil {
		return err
	}
	if e.IsSectionHeader {
		return domain.NewValidationError("index", "section headers cannot be checked")
	}
	e.IsChecked = !e.IsChecked
	return nil
}

// SetNote replaces the note at index.
func (s *Snapshot) SetNote(index int, text string) error {
	e, err := s.entry(index)
	if err != nil {
		return err
	}
	e.Notes = text
	return nil
}

// Counts returns the number of checked entries and checkable entries.
// Section headers are not checkable and are left out of both counts.
func (s *Snapshot) Counts() (checked, total int) {
	for _, e := range s.Entries {
		if e.IsSectionHeader {
			continue
		}
		total++
		if e.IsChecked {
			checked++
		}
	}
	return checked, total
}

// Progress is the floored percentage of checkable entries that are checked.
func (s *Snapshot) Progress() int {
	return Progress(s.Counts())
}

// Progress returns floor(checked/total*100), or 0 for an empty checklist.
func Progress(checked, total int) int {
	if total <= 0 {
		return 0
	}
	if checked > total {
		checked = total
	}
	return checked * 100 / total
}

// CompletionProgress computes progress over recorded completion items.
func CompletionProgress(items []domain.CompletionItem) int {
	var checked, total int
	for _, it := range items {
		if it.IsSectionHeader {
			continue
		}
		total++
		if it.IsChecked {
			checked++
		}
	}
	return Progress(checked, total)
}
