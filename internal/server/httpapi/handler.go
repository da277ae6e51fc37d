package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dmitrijs2005/mithaimart/internal/common"
	"github.com/dmitrijs2005/mithaimart/internal/server/models"
	"github.com/dmitrijs2005/mithaimart/internal/server/services"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is returned by login and register.
type SessionResponse struct {
	User      models.AccountView `json:"user"`
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
}

type meResponse struct {
	User models.AccountView `json:"user"`
}

type adminSummaryResponse struct {
	Admin      models.AccountView `json:"admin"`
	ServerTime time.Time          `json:"server_time"`
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "malformed request body")
		return
	}

	res, err := s.accounts.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		s.logger.Info(r.Context(), "registration rejected", "error", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse(res))
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "malformed request body")
		return
	}

	res, err := s.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.logger.Info(r.Context(), "login rejected", "error", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse(res))
}

func (s *HTTPServer) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	v, err := s.accounts.Me(r.Context(), claims.Subject)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, meResponse{User: *v})
}

func (s *HTTPServer) handleAdminSummary(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	v, err := s.accounts.Me(r.Context(), claims.Subject)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if v.Role != common.RoleAdmin {
		writeError(w, http.StatusForbidden, ErrCodeForbidden, "forbidden")
		return
	}

	writeJSON(w, http.StatusOK, adminSummaryResponse{Admin: *v, ServerTime: time.Now().UTC()})
}

func sessionResponse(res *services.AuthResult) SessionResponse {
	return SessionResponse{User: res.Account, Token: res.Token, ExpiresAt: res.ExpiresAt}
}
