package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/thehashrocket/issue-portal-sub000/internal/authz"
	"github.com/thehashrocket/issue-portal-sub000/internal/domain"
	"github.com/thehashrocket/issue-portal-sub000/internal/middleware"
	"github.com/thehashrocket/issue-portal-sub000/internal/repository"
	"github.com/thehashrocket/issue-portal-sub000/internal/utils"
)

// UserHTTP is the admin-facing account management surface. The one
// exception is update, where users may edit their own profile.
type UserHTTP struct {
	users repository.UserRepository
	az    *authz.Authorizer
	log   zerolog.Logger
}

func NewUserHTTP(users repository.UserRepository, az *authz.Authorizer, log zerolog.Logger) *UserHTTP {
	return &UserHTTP{users: users, az: az, log: log}
}

// GET /api/users?q=&role=&active=&limit=&offset=
func (h *UserHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qv := r.URL.Query()
		f := repository.UserFilter{
			Q:      strings.TrimSpace(qv.Get("q")),
			Active: utils.QueryBoolPtr(qv, "active"),
			Limit:  utils.QueryInt(qv, "limit", 20),
			Offset: utils.QueryInt(qv, "offset", 0),
		}
		if s := strings.TrimSpace(qv.Get("role")); s != "" {
			role, err := domain.ParseRole(s)
			if err != nil {
				writeError(w, h.log, err)
				return
			}
			f.Role = string(role)
		}
		items, total, err := h.users.List(r.Context(), f)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		w.Header().Set("X-Total-Count", strconv.Itoa(total))
		utils.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
	}
}

// POST /api/users
// Admin provisioning, the only way to mint staff accounts.
func (h *UserHTTP) Create() http.HandlerFunc {
	type inDTO struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
		Role     string `json:"role"`
		ClientID string `json:"clientId"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "VALIDATION", "invalid json")
			return
		}
		in.Email = strings.ToLower(strings.TrimSpace(in.Email))
		in.Name = strings.TrimSpace(in.Name)
		if in.Email == "" || !strings.Contains(in.Email, "@") {
			utils.Error(w, http.StatusBadRequest, "VALIDATION", "a valid email is required")
			return
		}
		if in.Name == "" {
			utils.Error(w, http.StatusBadRequest, "VALIDATION", "name is required")
			return
		}
		if err := utils.ValidatePassword(in.Password); err != nil {
			writeError(w, h.log, err)
			return
		}
		role := domain.RoleUser
		if strings.TrimSpace(in.Role) != "" {
			var err error
			role, err = domain.ParseRole(in.Role)
			if err != nil {
				writeError(w, h.log, err)
				return
			}
		}
		in.ClientID = strings.TrimSpace(in.ClientID)
		if in.ClientID != "" && badID(in.ClientID) {
			utils.Error(w, http.StatusBadRequest, "VALIDATION", "clientId must be a UUID")
			return
		}

		hash, err := utils.HashPassword(in.Password)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		u := &domain.User{Email: in.Email, Name: in.Name, Role: role, Active: true, ClientID: in.ClientID}
		if err := h.users.Create(r.Context(), u, hash); err != nil {
			writeError(w, h.log, err)
			return
		}
		utils.JSON(w, http.StatusCreated, u)
	}
}

// GET /api/users/{id}
func (h *UserHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if badID(id) {
			writeError(w, h.log, domain.ErrUserNotFound)
			return
		}
		u, err := h.users.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, u)
	}
}

// PATCH /api/users/{id}
// Admins edit anyone; users edit their own profile. Role and active are
// admin-only fields either way, so nobody can promote or reactivate
// themselves.
func (h *UserHTTP) Update() http.HandlerFunc {
	type inDTO struct {
		Email    *string `json:"email"`
		Name     *string `json:"name"`
		Role     *string `json:"role"`
		Active   *bool   `json:"active"`
		ClientID *string `json:"clientId"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sess := middleware.SessionFrom(r.Context())
		id := chi.URLParam(r, "id")
		if badID(id) {
			writeError(w, h.log, domain.ErrUserNotFound)
			return
		}
		u, err := h.users.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		if err := h.az.Check(sess, authz.ResourceUser, authz.ActionUpdate, authz.ResourceData{OwnerID: u.ID}); err != nil {
			writeError(w, h.log, err)
			return
		}

		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "VALIDATION", "invalid json")
			return
		}
		if (in.Role != nil || in.Active != nil) && !sess.IsAdmin() {
			utils.Error(w, http.StatusForbidden, "FORBIDDEN", "role and active are admin-only fields")
			return
		}

		if in.Email != nil {
			e := strings.ToLower(strings.TrimSpace(*in.Email))
			if e == "" || !strings.Contains(e, "@") {
				utils.Error(w, http.StatusBadRequest, "VALIDATION", "a valid email is required")
				return
			}
			u.Email = e
		}
		if in.Name != nil {
			n := strings.TrimSpace(*in.Name)
			if n == "" {
				utils.Error(w, http.StatusBadRequest, "VALIDATION", "name is required")
				return
			}
			u.Name = n
		}
		if in.Role != nil {
			role, err := domain.ParseRole(*in.Role)
			if err != nil {
				writeError(w, h.log, err)
				return
			}
			u.Role = role
		}
		if in.Active != nil {
			u.Active = *in.Active
		}
		if in.ClientID != nil {
			c := strings.TrimSpace(*in.ClientID)
			if c != "" && badID(c) {
				utils.Error(w, http.StatusBadRequest, "VALIDATION", "clientId must be a UUID")
				return
			}
			u.ClientID = c
		}

		if err := h.users.Update(r.Context(), u); err != nil {
			writeError(w, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, u)
	}
}

// PATCH /api/users/{id}/password
func (h *UserHTTP) UpdatePassword() http.HandlerFunc {
	type inDTO struct {
		Password string `json:"password"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sess := middleware.SessionFrom(r.Context())
		id := chi.URLParam(r, "id")
		if badID(id) {
			writeError(w, h.log, domain.ErrUserNotFound)
			return
		}
		u, err := h.users.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		if err := h.az.Check(sess, authz.ResourceUser, authz.ActionUpdate, authz.ResourceData{OwnerID: u.ID}); err != nil {
			writeError(w, h.log, err)
			return
		}

		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "VALIDATION", "invalid json")
			return
		}
		if err := utils.ValidatePassword(in.Password); err != nil {
			writeError(w, h.log, err)
			return
		}
		hash, err := utils.HashPassword(in.Password)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		if err := h.users.UpdatePasswordHash(r.Context(), u.ID, hash); err != nil {
			writeError(w, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// DELETE /api/users/{id}
// Refused with 409 while the user still owns issues, comments or files.
func (h *UserHTTP) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if badID(id) {
			writeError(w, h.log, domain.ErrUserNotFound)
			return
		}
		if err := h.users.Delete(r.Context(), id); err != nil {
			writeError(w, h.log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
