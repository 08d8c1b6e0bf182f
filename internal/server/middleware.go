package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/buildsafe/safety-backend/internal/auth"
	"github.com/buildsafe/safety-backend/internal/domain"
)

// authenticate resolves the bearer token to an actor once per request and
// stores it in the request context for the handlers.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.BearerToken(r)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, err.Error())
			return
		}
		userID, err := s.tokens.Verify(token)
		if err != nil {
			log.Printf("Rejected bearer token: %v", err)
			respondWithError(w, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
			return
		}
		actor, err := s.gate.ResolveActor(r.Context(), userID)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				respondWithError(w, http.StatusUnauthorized, "unknown user")
				return
			}
			log.Printf("Error resolving actor %s: %v", userID, err)
			respondWithServiceError(w, err, "resolve actor")
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithActor(r.Context(), actor)))
	})
}

type meResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

func (s *Server) meHandler(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	if actor == nil {
		respondWithError(w, http.StatusUnauthorized, domain.ErrUnauthorized.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, meResponse{
		ID:      actor.ID.String(),
		Email:   actor.Email,
		Name:    actor.Name,
		IsAdmin: actor.IsAdmin,
	})
}
