package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/buildsafe/safety-backend/internal/domain"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", s.HelloWorldHandler)

	r.Get("/health", s.healthHandler)

	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Get("/me", s.meHandler)

		r.Route("/checklists", func(r chi.Router) {
			r.Get("/", s.listTemplatesHandler)
			r.Post("/", s.createTemplateHandler)
			r.Get("/categories", s.listCategoriesHandler)
			r.Post("/items/reorder", s.reorderItemsHandler)
			r.Post("/progress", s.progressHandler)
			r.Get("/{id}", s.getTemplateHandler)
			r.Put("/{id}", s.updateTemplateHandler)
			r.Delete("/{id}", s.deleteTemplateHandler)
			r.Get("/{id}/start", s.startCompletionHandler)
			r.Get("/{id}/completions", s.listTemplateCompletionsHandler)
		})

		r.Route("/completions", func(r chi.Router) {
			r.Get("/", s.listCompletionsHandler)
			r.Post("/", s.submitCompletionHandler)
			r.Get("/{id}", s.viewCompletionHandler)
			r.Put("/{id}", s.editCompletionHandler)
			r.Delete("/{id}", s.deleteCompletionHandler)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", s.listProjectsHandler)
			r.Post("/", s.createProjectHandler)
		})

		r.Post("/uploads", s.uploadHandler)

		r.Route("/admin/users", func(r chi.Router) {
			r.Get("/", s.listUsersHandler)
			r.Post("/", s.createUserHandler)
			r.Put("/{id}", s.updateUserHandler)
			r.Delete("/{id}", s.deleteUserHandler)
			r.Post("/{id}/reset-password", s.resetPasswordHandler)
		})
	})

	return r
}

func (s *Server) HelloWorldHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Hello World from Safety Backend!"})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	healthStats := s.db.Health()
	if status, ok := healthStats["status"]; ok && status == "down" {
		respondWithJSON(w, http.StatusServiceUnavailable, healthStats)
		return
	}
	respondWithJSON(w, http.StatusOK, healthStats)
}

// decodeJSON reads a single JSON object into dst and writes a 400 describing
// what was wrong with the body. It reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	err := decoder.Decode(dst)
	if err == nil {
		return true
	}

	var syntaxError *json.SyntaxError
	var unmarshalTypeError *json.UnmarshalTypeError
	if errors.As(err, &syntaxError) {
		msg := fmt.Sprintf("Request body contains badly-formed JSON (at position %d)", syntaxError.Offset)
		respondWithError(w, http.StatusBadRequest, msg)
	} else if errors.Is(err, io.ErrUnexpectedEOF) {
		msg := "Request body contains badly-formed JSON"
		respondWithError(w, http.StatusBadRequest, msg)
	} else if errors.As(err, &unmarshalTypeError) {
		msg := fmt.Sprintf("Request body contains an invalid value for the %q field (at position %d)", unmarshalTypeError.Field, unmarshalTypeError.Offset)
		respondWithError(w, http.StatusBadRequest, msg)
	} else if strings.HasPrefix(err.Error(), "json: unknown field ") {
		fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
		msg := fmt.Sprintf("Request body contains unknown field %s", fieldName)
		respondWithError(w, http.StatusBadRequest, msg)
	} else if errors.Is(err, io.EOF) {
		msg := "Request body must not be empty"
		respondWithError(w, http.StatusBadRequest, msg)
	} else {
		// Values such as a malformed uuid or timestamp fail in their own UnmarshalJSON.
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Request body is invalid: %v", err))
	}
	return false
}

// pathID parses the {id} URL parameter.
func pathID(w http.ResponseWriter, r *http.Request, entity string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s ID provided", entity))
		return uuid.Nil, false
	}
	return id, true
}

// confirmed reads the ?confirm=true flag destructive deletes require.
func confirmed(r *http.Request) bool {
	ok, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	return ok
}

// respondWithServiceError maps the domain error taxonomy onto HTTP statuses.
// Store failures keep their raw message.
func respondWithServiceError(w http.ResponseWriter, err error, op string) {
	var verr *domain.ValidationError
	var rerr *domain.RemoteError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		respondWithError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		respondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrConfirmationRequired):
		respondWithError(w, http.StatusPreconditionRequired, err.Error())
	case errors.As(err, &verr):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &rerr):
		log.Printf("Error calling %s service: %v", op, err)
		respondWithError(w, http.StatusInternalServerError, err.Error())
	default:
		log.Printf("Error calling %s service: %v", op, err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to %s", op))
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshaling JSON response: %v", err)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal server error preparing response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
