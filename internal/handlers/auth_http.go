package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/thehashrocket/issue-portal-sub000/internal/authz"
	"github.com/thehashrocket/issue-portal-sub000/internal/config"
	"github.com/thehashrocket/issue-portal-sub000/internal/middleware"
	"github.com/thehashrocket/issue-portal-sub000/internal/repository"
	"github.com/thehashrocket/issue-portal-sub000/internal/service"
	"github.com/thehashrocket/issue-portal-sub000/internal/utils"
)

type AuthHTTP struct {
	svc   *service.AuthService
	users repository.UserRepository
	cfg   config.Config
	log   zerolog.Logger
}

func NewAuthHTTP(s *service.AuthService, users repository.UserRepository, cfg config.Config, log zerolog.Logger) *AuthHTTP {
	return &AuthHTTP{svc: s, users: users, cfg: cfg, log: log}
}

// POST /api/auth/register
func (h *AuthHTTP) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Email    string `json:"email"`
			Name     string `json:"name"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "VALIDATION", "invalid json")
			return
		}
		u, err := h.svc.Register(r.Context(), in.Email, in.Name, in.Password)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		utils.JSON(w, http.StatusCreated, u)
	}
}

// POST /api/auth/login
func (h *AuthHTTP) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "VALIDATION", "invalid json")
			return
		}
		token, u, err := h.svc.Login(r.Context(), in.Email, in.Password)
		if err != nil {
			writeError(w, h.log, err)
			return
		}

		// httpOnly session cookie; Lax works same-origin behind the proxy.
		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookie,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Secure:   h.cfg.Env != "dev",
			Expires:  time.Now().Add(h.cfg.SessionTTL),
		})
		utils.JSON(w, http.StatusOK, u)
	}
}

// POST /api/auth/logout
func (h *AuthHTTP) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookie,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,              // expire immediately
			Expires:  time.Unix(0, 0), // for older browsers
		})
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /api/auth/me
func (h *AuthHTTP) Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := middleware.SessionFrom(r.Context())
		if sess == nil {
			writeError(w, h.log, authz.ErrUnauthenticated)
			return
		}
		u, err := h.users.GetByID(r.Context(), sess.UserID)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, u)
	}
}
