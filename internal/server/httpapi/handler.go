package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/erisahalipaj/userauth/internal/common"
	"github.com/erisahalipaj/userauth/internal/server/services"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	res, err := s.service.Register(r.Context(), services.RegisterRequest{
		Username:        req.Username,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Message:     "user registered successfully",
		UserID:      res.UserID,
		AccessToken: res.Token,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	res, err := s.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Message:     "authenticated successfully",
		UserID:      res.UserID,
		AccessToken: res.Token,
	})
}

func (s *Server) handleChange(w http.ResponseWriter, r *http.Request) {
	var req changeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.UserID == "" {
		s.writeError(w, r, common.ErrMissingField)
		return
	}
	if !s.authorize(w, r, req.UserID) {
		return
	}

	err := s.service.Change(r.Context(), services.ChangeRequest{
		UserID:             req.UserID,
		NewUsername:        req.NewUsername,
		NewPassword:        req.NewPassword,
		NewPasswordConfirm: req.NewPasswordConfirm,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "user credentials updated successfully"})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.UserID == "" {
		s.writeError(w, r, common.ErrMissingField)
		return
	}
	if !s.authorize(w, r, req.UserID) {
		return
	}

	if err := s.service.Delete(r.Context(), req.UserID); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "user account deleted successfully"})
}

// authorize requires a Bearer token whose user_id claim matches the target
// of the mutation. A caller-supplied user_id alone is not proof of ownership.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request, targetUserID string) bool {
	const prefix = "Bearer "

	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, prefix) {
		writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "authorization required"})
		return false
	}

	claims, err := s.issuer.Verify(strings.TrimPrefix(header, prefix))
	if err != nil {
		msg := "invalid token"
		if errors.Is(err, common.ErrTokenExpired) {
			msg = "token expired"
		}
		writeJSON(w, http.StatusUnauthorized, messageResponse{Message: msg})
		return false
	}

	if claims.UserID != targetUserID {
		writeJSON(w, http.StatusForbidden, messageResponse{Message: "token does not match the target user"})
		return false
	}

	return true
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MiB
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid request body"})
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrMissingField), errors.Is(err, common.ErrPasswordMismatch):
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: err.Error()})
	case errors.Is(err, common.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, messageResponse{Message: err.Error()})
	case errors.Is(err, common.ErrNotFound):
		writeJSON(w, http.StatusNotFound, messageResponse{Message: err.Error()})
	case errors.Is(err, common.ErrUsernameTaken):
		writeJSON(w, http.StatusConflict, messageResponse{Message: err.Error()})
	default:
		// ErrInternal and anything unexpected: the detail stays in the logs
		s.logger.Error(r.Context(), "request failed", "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "an unexpected error occurred"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
