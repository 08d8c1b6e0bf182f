package server

import (
	"net/http"

	"github.com/buildsafe/safety-backend/internal/auth"
	"github.com/buildsafe/safety-backend/internal/service"
)

func (s *Server) listUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := s.admin.ListUsers(r.Context(), auth.ActorFrom(r.Context()))
	if err != nil {
		respondWithServiceError(w, err, "list users")
		return
	}
	respondWithJSON(w, http.StatusOK, users)
}

func (s *Server) createUserHandler(w http.ResponseWriter, r *http.Request) {
	var req service.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := s.admin.CreateUser(r.Context(), auth.ActorFrom(r.Context()), req)
	if err != nil {
		respondWithServiceError(w, err, "create user")
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

func (s *Server) updateUserHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "user")
	if !ok {
		return
	}
	var req service.UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := s.admin.UpdateUser(r.Context(), auth.ActorFrom(r.Context()), id, req)
	if err != nil {
		respondWithServiceError(w, err, "update user")
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

func (s *Server) deleteUserHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "user")
	if !ok {
		return
	}
	res, err := s.admin.DeleteUser(r.Context(), auth.ActorFrom(r.Context()), id, confirmed(r))
	if err != nil {
		respondWithServiceError(w, err, "delete user")
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

func (s *Server) resetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "user")
	if !ok {
		return
	}
	var req service.ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := s.admin.ResetPassword(r.Context(), auth.ActorFrom(r.Context()), id, req)
	if err != nil {
		respondWithServiceError(w, err, "reset password")
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}
