package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/thehashrocket/issue-portal-sub000/internal/domain"
	"github.com/thehashrocket/issue-portal-sub000/internal/repository"
	"github.com/thehashrocket/issue-portal-sub000/internal/utils"
)

// ClientHTTP manages the client-company records issues hang off of. Role
// checks happen at the router, so handlers here only validate input.
type ClientHTTP struct {
	clients repository.ClientRepository
	log     zerolog.Logger
}

func NewClientHTTP(clients repository.ClientRepository, log zerolog.Logger) *ClientHTTP {
	return &ClientHTTP{clients: clients, log: log}
}

// GET /api/clients?q=&limit=&offset=
func (h *ClientHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qv := r.URL.Query()
		f := repository.ClientFilter{
			Q:      strings.TrimSpace(qv.Get("q")),
			Limit:  utils.QueryInt(qv, "limit", 20),
			Offset: utils.QueryInt(qv, "offset", 0),
		}
		items, total, err := h.clients.List(r.Context(), f)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		w.Header().Set("X-Total-Count", strconv.Itoa(total))
		utils.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
	}
}

// POST /api/clients
func (h *ClientHTTP) Create() http.HandlerFunc {
	type inDTO struct {
		Name         string `json:"name"`
		ContactEmail string `json:"contactEmail"`
		Phone        string `json:"phone"`
		Website      string `json:"website"`
		Notes        string `json:"notes"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "VALIDATION", "invalid json")
			return
		}
		in.Name = strings.TrimSpace(in.Name)
		if in.Name == "" {
			utils.Error(w, http.StatusBadRequest, "VALIDATION", "name is required")
			return
		}
		c := &domain.Client{
			Name:         in.Name,
			ContactEmail: strings.TrimSpace(in.ContactEmail),
			Phone:        strings.TrimSpace(in.Phone),
			Website:      strings.TrimSpace(in.Website),
			Notes:        strings.TrimSpace(in.Notes),
		}
		if err := h.clients.Create(r.Context(), c); err != nil {
			writeError(w, h.log, err)
			return
		}
		utils.JSON(w, http.StatusCreated, c)
	}
}

// GET /api/clients/{id}
func (h *ClientHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if badID(id) {
			writeError(w, h.log, domain.ErrClientNotFound)
			return
		}
		c, err := h.clients.Get(r.Context(), id)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, c)
	}
}

// PATCH /api/clients/{id}
func (h *ClientHTTP) Update() http.HandlerFunc {
	type inDTO struct {
		Name         *string `json:"name"`
		ContactEmail *string `json:"contactEmail"`
		Phone        *string `json:"phone"`
		Website      *string `json:"website"`
		Notes        *string `json:"notes"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if badID(id) {
			writeError(w, h.log, domain.ErrClientNotFound)
			return
		}
		c, err := h.clients.Get(r.Context(), id)
		if err != nil {
			writeError(w, h.log, err)
			return
		}

		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "VALIDATION", "invalid json")
			return
		}
		if in.Name != nil {
			n := strings.TrimSpace(*in.Name)
			if n == "" {
				utils.Error(w, http.StatusBadRequest, "VALIDATION", "name is required")
				return
			}
			c.Name = n
		}
		if in.ContactEmail != nil {
			c.ContactEmail = strings.TrimSpace(*in.ContactEmail)
		}
		if in.Phone != nil {
			c.Phone = strings.TrimSpace(*in.Phone)
		}
		if in.Website != nil {
			c.Website = strings.TrimSpace(*in.Website)
		}
		if in.Notes != nil {
			c.Notes = strings.TrimSpace(*in.Notes)
		}

		if err := h.clients.Update(r.Context(), c); err != nil {
			writeError(w, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, c)
	}
}

// DELETE /api/clients/{id}
// Issues and users keep their rows; their client link just goes away.
func (h *ClientHTTP) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if badID(id) {
			writeError(w, h.log, domain.ErrClientNotFound)
			return
		}
		if err := h.clients.Delete(r.Context(), id); err != nil {
			writeError(w, h.log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
