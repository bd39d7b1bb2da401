package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/thehashrocket/issue-portal-sub000/internal/authz"
	"github.com/thehashrocket/issue-portal-sub000/internal/domain"
	"github.com/thehashrocket/issue-portal-sub000/internal/middleware"
	"github.com/thehashrocket/issue-portal-sub000/internal/notify"
	"github.com/thehashrocket/issue-portal-sub000/internal/repository"
	"github.com/thehashrocket/issue-portal-sub000/internal/utils"
)

// IssueHTTP wires the issue endpoints to the repository, the authorization
// gate and the notifier.
type IssueHTTP struct {
	issues   repository.IssueRepository
	az       *authz.Authorizer
	notifier *notify.Service
	log      zerolog.Logger
}

func NewIssueHTTP(issues repository.IssueRepository, az *authz.Authorizer, notifier *notify.Service, log zerolog.Logger) *IssueHTTP {
	return &IssueHTTP{issues: issues, az: az, notifier: notifier, log: log}
}

// badID reports malformed UUIDs so lookups can 404 without round-tripping
// garbage to the database.
func badID(id string) bool {
	return uuid.Validate(id) != nil
}

func issueData(i *domain.Issue) authz.ResourceData {
	return authz.ResourceData{OwnerID: i.ReportedByID, AssigneeID: i.AssignedToID}
}

// loadIssue fetches {id} and runs the gate for act. Missing rows 404
// before any authorization decision, matching lookup semantics everywhere
// else in the API. The file handler shares it, since attachments scope all
// access to their parent issue.
func loadIssue(w http.ResponseWriter, r *http.Request, log zerolog.Logger, issues repository.IssueRepository, az *authz.Authorizer, act authz.Action) *domain.Issue {
	id := chi.URLParam(r, "id")
	if badID(id) {
		writeError(w, log, domain.ErrIssueNotFound)
		return nil
	}
	issue, err := issues.Get(r.Context(), id)
	if err != nil {
		writeError(w, log, err)
		return nil
	}
	if err := az.Check(middleware.SessionFrom(r.Context()), authz.ResourceIssue, act, issueData(issue)); err != nil {
		writeError(w, log, err)
		return nil
	}
	return issue
}

func (h *IssueHTTP) loadIssue(w http.ResponseWriter, r *http.Request, act authz.Action) *domain.Issue {
	return loadIssue(w, r, h.log, h.issues, h.az, act)
}

// -----------------------------------------------------------------------------
// GET /api/issues?q=&status=&priority=&clientId=&assigneeId=&reporterId=&sort=&order=&limit=&offset=
// Non-staff callers only ever see issues they reported or are assigned to.
// -----------------------------------------------------------------------------
func (h *IssueHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := middleware.SessionFrom(r.Context())
		qv := r.URL.Query()

		f := repository.IssueFilter{
			Q:          strings.TrimSpace(qv.Get("q")),
			ClientID:   strings.TrimSpace(qv.Get("clientId")),
			AssigneeID: strings.TrimSpace(qv.Get("assigneeId")),
			ReporterID: strings.TrimSpace(qv.Get("reporterId")),
			Limit:      utils.QueryInt(qv, "limit", 20),
			Offset:     utils.QueryInt(qv, "offset", 0),
			Sort:       qv.Get("sort"),
			Order:      qv.Get("order"),
		}
		if s := strings.TrimSpace(qv.Get("status")); s != "" {
			st, err := domain.ParseStatus(s)
			if err != nil {
				writeError(w, h.log, err)
				return
			}
			f.Status = string(st)
		}
		if p := strings.TrimSpace(qv.Get("priority")); p != "" {
			pr, err := domain.ParsePriority(p)
			if err != nil {
				writeError(w, h.log, err)
				return
			}
			f.Priority = string(pr)
		}
		if sess != nil && !sess.Role.IsStaff() {
			f.InvolvedUserID = sess.UserID
		}

		items, total, err := h.issues.List(r.Context(), f)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		w.Header().Set("X-Total-Count", strconv.Itoa(total))
		utils.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
	}
}

// -----------------------------------------------------------------------------
// POST /api/issues
// New issues always enter the workflow at NEW. Only staff may hand out an
// assignment at creation time; for everyone else the field is ignored.
// -----------------------------------------------------------------------------
func (h *IssueHTTP) Create() http.HandlerFunc {
	type inDTO struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Priority    string `json:"priority"`
		ClientID    string `json:"clientId"`
		AssigneeID  string `json:"assignedToId"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sess := middleware.SessionFrom(r.Context())
		if sess == nil {
			writeError(w, h.log, authz.ErrUnauthenticated)
			return
		}

		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "VALIDATION", "invalid json")
			return
		}
		in.Title = strings.TrimSpace(in.Title)
		if in.Title == "" {
			utils.Error(w, http.StatusBadRequest, "VALIDATION", "title is required")
			return
		}
		priority, err := domain.ParsePriority(in.Priority)
		if err != nil {
			writeError(w, h.log, err)
			return
		}

		in.ClientID = strings.TrimSpace(in.ClientID)
		if in.ClientID != "" && badID(in.ClientID) {
			utils.Error(w, http.StatusBadRequest, "VALIDATION", "clientId must be a UUID")
			return
		}
		assignee := ""
		if sess.Role.IsStaff() {
			assignee = strings.TrimSpace(in.AssigneeID)
			if assignee != "" && badID(assignee) {
				utils.Error(w, http.StatusBadRequest, "VALIDATION", "assignedToId must be a UUID")
				return
			}
		}

		issue := &domain.Issue{
			Title:        in.Title,
			Description:  strings.TrimSpace(in.Description),
			Priority:     priority,
			ClientID:     in.ClientID,
			ReportedByID: sess.UserID,
			AssignedToID: assignee,
		}
		if err := h.issues.Create(r.Context(), issue); err != nil {
			writeError(w, h.log, err)
			return
		}

		created, err := h.issues.Get(r.Context(), issue.ID)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		if created.AssignedToID != "" {
			h.notifier.IssueAssigned(r.Context(), created, sess.UserID)
		}
		utils.JSON(w, http.StatusCreated, created)
	}
}

// -----------------------------------------------------------------------------
// GET /api/issues/{id}
// -----------------------------------------------------------------------------
func (h *IssueHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		issue := h.loadIssue(w, r, authz.ActionView)
		if issue == nil {
			return
		}
		utils.JSON(w, http.StatusOK, issue)
	}
}

// -----------------------------------------------------------------------------
// PATCH /api/issues/{id}
// Status is deliberately not editable here; the workflow endpoint below is
// the only way to move an issue.
// -----------------------------------------------------------------------------
func (h *IssueHTTP) Update() http.HandlerFunc {
	type inDTO struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Priority    *string `json:"priority"`
		ClientID    *string `json:"clientId"`
		AssigneeID  *string `json:"assignedToId"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sess := middleware.SessionFrom(r.Context())
		issue := h.loadIssue(w, r, authz.ActionUpdate)
		if issue == nil {
			return
		}

		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "VALIDATION", "invalid json")
			return
		}

		if in.Title != nil {
			t := strings.TrimSpace(*in.Title)
			if t == "" {
				utils.Error(w, http.StatusBadRequest, "VALIDATION", "title is required")
				return
			}
			issue.Title = t
		}
		if in.Description != nil {
			issue.Description = strings.TrimSpace(*in.Description)
		}
		if in.Priority != nil {
			p, err := domain.ParsePriority(*in.Priority)
			if err != nil {
				writeError(w, h.log, err)
				return
			}
			issue.Priority = p
		}
		if in.ClientID != nil {
			c := strings.TrimSpace(*in.ClientID)
			if c != "" && badID(c) {
				utils.Error(w, http.StatusBadRequest, "VALIDATION", "clientId must be a UUID")
				return
			}
			issue.ClientID = c
		}
		prevAssignee := issue.AssignedToID
		if in.AssigneeID != nil {
			a := strings.TrimSpace(*in.AssigneeID)
			if a != "" && badID(a) {
				utils.Error(w, http.StatusBadRequest, "VALIDATION", "assignedToId must be a UUID")
				return
			}
			issue.AssignedToID = a
		}

		if err := h.issues.Update(r.Context(), issue); err != nil {
			writeError(w, h.log, err)
			return
		}
		updated, err := h.issues.Get(r.Context(), issue.ID)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		if updated.AssignedToID != "" && updated.AssignedToID != prevAssignee {
			h.notifier.IssueAssigned(r.Context(), updated, sess.UserID)
		}
		utils.JSON(w, http.StatusOK, updated)
	}
}

// -----------------------------------------------------------------------------
// PATCH /api/issues/{id}/status
// Validates the workflow edge, then compare-and-swaps against the status
// the caller saw. A concurrent move surfaces as 409.
// -----------------------------------------------------------------------------
func (h *IssueHTTP) UpdateStatus() http.HandlerFunc {
	type inDTO struct {
		Status string `json:"status"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sess := middleware.SessionFrom(r.Context())
		issue := h.loadIssue(w, r, authz.ActionUpdateStatus)
		if issue == nil {
			return
		}

		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "VALIDATION", "invalid json")
			return
		}
		next, err := domain.ParseStatus(in.Status)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		from := issue.Status
		if err := from.ValidateTransition(next); err != nil {
			writeError(w, h.log, err)
			return
		}

		if err := h.issues.UpdateStatus(r.Context(), issue.ID, from, next); err != nil {
			writeError(w, h.log, err)
			return
		}
		updated, err := h.issues.Get(r.Context(), issue.ID)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		if from != next {
			h.notifier.IssueStatusChanged(r.Context(), updated, from, next, sess.UserID)
		}
		utils.JSON(w, http.StatusOK, updated)
	}
}

// -----------------------------------------------------------------------------
// GET /api/issues/{id}/statuses
// The moves legal from the issue's current position, for building UIs that
// only offer valid targets.
// -----------------------------------------------------------------------------
func (h *IssueHTTP) Statuses() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		issue := h.loadIssue(w, r, authz.ActionView)
		if issue == nil {
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{
			"current": issue.Status,
			"allowed": issue.Status.AllowedTransitions(),
		})
	}
}

// -----------------------------------------------------------------------------
// DELETE /api/issues/{id}
// -----------------------------------------------------------------------------
func (h *IssueHTTP) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		issue := h.loadIssue(w, r, authz.ActionDelete)
		if issue == nil {
			return
		}
		if err := h.issues.Delete(r.Context(), issue.ID); err != nil {
			writeError(w, h.log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// -----------------------------------------------------------------------------
// POST /api/issues/{id}/comments
// Visibility of the parent issue is the only gate; anyone who can see an
// issue can comment on it.
// -----------------------------------------------------------------------------
func (h *IssueHTTP) AddComment() http.HandlerFunc {
	type inDTO struct {
		Body string `json:"body"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sess := middleware.SessionFrom(r.Context())
		issue := h.loadIssue(w, r, authz.ActionView)
		if issue == nil {
			return
		}

		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "VALIDATION", "invalid json")
			return
		}
		in.Body = strings.TrimSpace(in.Body)
		if in.Body == "" {
			utils.Error(w, http.StatusBadRequest, "VALIDATION", "body is required")
			return
		}

		c := &domain.Comment{IssueID: issue.ID, CreatedByID: sess.UserID, Body: in.Body}
		if err := h.issues.AddComment(r.Context(), c); err != nil {
			writeError(w, h.log, err)
			return
		}
		h.notifier.CommentAdded(r.Context(), issue, c)
		utils.JSON(w, http.StatusCreated, c)
	}
}

// -----------------------------------------------------------------------------
// GET /api/issues/{id}/comments
// -----------------------------------------------------------------------------
func (h *IssueHTTP) ListComments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		issue := h.loadIssue(w, r, authz.ActionView)
		if issue == nil {
			return
		}
		items, err := h.issues.ListComments(r.Context(), issue.ID)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
	}
}

// -----------------------------------------------------------------------------
// DELETE /api/issues/{id}/comments/{commentID}
// Staff or the comment's author.
// -----------------------------------------------------------------------------
func (h *IssueHTTP) DeleteComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		issueID := chi.URLParam(r, "id")
		commentID := chi.URLParam(r, "commentID")
		if badID(issueID) || badID(commentID) {
			writeError(w, h.log, domain.ErrCommentNotFound)
			return
		}
		c, err := h.issues.GetComment(r.Context(), commentID)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		if c.IssueID != issueID {
			writeError(w, h.log, domain.ErrCommentNotFound)
			return
		}
		err = h.az.Check(middleware.SessionFrom(r.Context()), authz.ResourceComment, authz.ActionDelete, authz.ResourceData{OwnerID: c.CreatedByID})
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		if err := h.issues.DeleteComment(r.Context(), commentID); err != nil {
			writeError(w, h.log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
