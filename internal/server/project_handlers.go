package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/buildsafe/safety-backend/internal/auth"
	"github.com/buildsafe/safety-backend/internal/service"
)

func (s *Server) listProjectsHandler(w http.ResponseWriter, r *http.Request) {
	projects, err := s.projects.ListProjects(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		respondWithServiceError(w, err, "list projects")
		return
	}
	respondWithJSON(w, http.StatusOK, projects)
}

func (s *Server) createProjectHandler(w http.ResponseWriter, r *http.Request) {
	var req service.CreateProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	project, err := s.projects.CreateProject(r.Context(), auth.ActorFrom(r.Context()), req)
	if err != nil {
		respondWithServiceError(w, err, "create project")
		return
	}
	respondWithJSON(w, http.StatusCreated, project)
}

// uploadHandler stores a multipart "file" in the blob store and returns its public URL.
func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "Upload exceeds the 10 MB limit")
			return
		}
		respondWithError(w, http.StatusBadRequest, "Request must be multipart/form-data with a \"file\" field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	url, err := s.blobs.Upload(r.Context(), header.Filename, file, contentType)
	if err != nil {
		log.Printf("Error uploading %q: %v", header.Filename, err)
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]string{"url": url})
}
