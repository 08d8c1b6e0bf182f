package server

import (
	"net/http"

	"github.com/buildsafe/safety-backend/internal/auth"
	"github.com/buildsafe/safety-backend/internal/service"
)

func (s *Server) listCompletionsHandler(w http.ResponseWriter, r *http.Request) {
	completions, err := s.history.ListCompletions(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "list completions")
		return
	}
	respondWithJSON(w, http.StatusOK, completions)
}

func (s *Server) submitCompletionHandler(w http.ResponseWriter, r *http.Request) {
	var req service.SubmitCompletionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	completion, err := s.completions.Submit(r.Context(), auth.ActorFrom(r.Context()), req)
	if err != nil {
		respondWithServiceError(w, err, "submit completion")
		return
	}
	respondWithJSON(w, http.StatusCreated, completion)
}

func (s *Server) viewCompletionHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "completion")
	if !ok {
		return
	}
	completion, err := s.history.ViewCompletion(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "retrieve completion")
		return
	}
	respondWithJSON(w, http.StatusOK, completion)
}

func (s *Server) editCompletionHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "completion")
	if !ok {
		return
	}
	var req service.EditCompletionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	completion, err := s.history.EditCompletion(r.Context(), auth.ActorFrom(r.Context()), id, req)
	if err != nil {
		respondWithServiceError(w, err, "edit completion")
		return
	}
	respondWithJSON(w, http.StatusOK, completion)
}

func (s *Server) deleteCompletionHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "completion")
	if !ok {
		return
	}
	if err := s.history.DeleteCompletion(r.Context(), auth.ActorFrom(r.Context()), id, confirmed(r)); err != nil {
		respondWithServiceError(w, err, "delete completion")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
