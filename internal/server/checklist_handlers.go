package server

import (
	"net/http"
	"strconv"

	"github.com/buildsafe/safety-backend/internal/auth"
	"github.com/buildsafe/safety-backend/internal/checklist"
	"github.com/buildsafe/safety-backend/internal/domain"
	"github.com/buildsafe/safety-backend/internal/service"
)

func (s *Server) listTemplatesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	includeEmpty, _ := strconv.ParseBool(q.Get("include_empty"))
	filter := checklist.Filter{
		Category:     q.Get("category"),
		Trade:        q.Get("trade"),
		Search:       q.Get("search"),
		IncludeEmpty: includeEmpty,
	}

	templates, err := s.templates.ListTemplates(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, err, "list checklists")
		return
	}
	respondWithJSON(w, http.StatusOK, templates)
}

func (s *Server) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := s.templates.ListCategories(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "list categories")
		return
	}
	respondWithJSON(w, http.StatusOK, categories)
}

func (s *Server) getTemplateHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "checklist")
	if !ok {
		return
	}
	template, err := s.templates.GetTemplate(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "retrieve checklist")
		return
	}
	respondWithJSON(w, http.StatusOK, template)
}

func (s *Server) createTemplateHandler(w http.ResponseWriter, r *http.Request) {
	var req service.TemplateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	template, err := s.templates.CreateTemplate(r.Context(), auth.ActorFrom(r.Context()), req)
	if err != nil {
		respondWithServiceError(w, err, "create checklist")
		return
	}
	respondWithJSON(w, http.StatusCreated, template)
}

func (s *Server) updateTemplateHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "checklist")
	if !ok {
		return
	}
	var req service.TemplateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	template, err := s.templates.UpdateTemplate(r.Context(), auth.ActorFrom(r.Context()), id, req)
	if err != nil {
		respondWithServiceError(w, err, "update checklist")
		return
	}
	respondWithJSON(w, http.StatusOK, template)
}

func (s *Server) deleteTemplateHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "checklist")
	if !ok {
		return
	}
	if err := s.templates.DeleteTemplate(r.Context(), auth.ActorFrom(r.Context()), id, confirmed(r)); err != nil {
		respondWithServiceError(w, err, "delete checklist")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reorderRequest struct {
	Items        []service.TemplateItemResponse `json:"items"`
	DraggedIndex int                            `json:"dragged_index"`
	TargetIndex  int                            `json:"target_index"`
}

// reorderItemsHandler applies one drag-and-drop move to an item list held by
// the client. Nothing is persisted; the client saves through PUT /checklists/{id}.
func (s *Server) reorderItemsHandler(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	items := make([]domain.ChecklistItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, domain.ChecklistItem{
			ID:              it.ID,
			Title:           it.Title,
			DisplayOrder:    it.DisplayOrder,
			IsSectionHeader: it.IsSectionHeader,
		})
	}
	moved := checklist.CanMove(items, req.DraggedIndex, req.TargetIndex)
	items = checklist.ReorderItems(items, req.DraggedIndex, req.TargetIndex)

	out := make([]service.TemplateItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, service.TemplateItemResponse{
			ID:              it.ID,
			Title:           it.Title,
			DisplayOrder:    it.DisplayOrder,
			IsSectionHeader: it.IsSectionHeader,
		})
	}
	respondWithJSON(w, http.StatusOK, reorderResponse{Items: out, Moved: moved})
}

type reorderResponse struct {
	Items []service.TemplateItemResponse `json:"items"`
	Moved bool                           `json:"moved"`
}

type progressResponse struct {
	Checked  int `json:"checked"`
	Total    int `json:"total"`
	Progress int `json:"progress"`
}

// progressHandler reports progress for a working snapshot.
func (s *Server) progressHandler(w http.ResponseWriter, r *http.Request) {
	var snap checklist.Snapshot
	if !decodeJSON(w, r, &snap) {
		return
	}
	checked, total := snap.Counts()
	respondWithJSON(w, http.StatusOK, progressResponse{
		Checked:  checked,
		Total:    total,
		Progress: checklist.Progress(checked, total),
	})
}

func (s *Server) startCompletionHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "checklist")
	if !ok {
		return
	}
	snap, err := s.completions.StartCompletion(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "start completion")
		return
	}
	respondWithJSON(w, http.StatusOK, snap)
}

func (s *Server) listTemplateCompletionsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "checklist")
	if !ok {
		return
	}
	completions, err := s.history.ListTemplateCompletions(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "list completions")
		return
	}
	respondWithJSON(w, http.StatusOK, completions)
}
