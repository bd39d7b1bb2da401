package router

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thehashrocket/issue-portal-sub000/internal/domain"
)

func TestIssueCreateDefaults(t *testing.T) {
	app := newTestApp(t)
	reporter := app.seedUser(t, "Reporter", domain.RoleUser)
	tok := app.token(t, reporter)

	issue := app.createIssue(t, tok, "Login page 500s", map[string]any{
		"description": "stack trace attached",
		"priority":    "high",
	})
	assert.Equal(t, domain.StatusNew, issue.Status)
	assert.Equal(t, domain.PriorityHigh, issue.Priority)
	assert.Equal(t, reporter.ID, issue.ReportedByID)
	assert.Equal(t, "Reporter", issue.ReporterName)
	assert.Empty(t, issue.AssignedToID)

	rec := app.doJSON(t, http.MethodPost, "/api/issues", tok, map[string]any{"title": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.doJSON(t, http.MethodPost, "/api/issues", tok, map[string]any{"title": "x", "priority": "URGENT"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION", errCode(t, rec))
}

func TestIssueAssignmentOnCreate(t *testing.T) {
	app := newTestApp(t)
	reporter := app.seedUser(t, "EndUser", domain.RoleUser)
	dev := app.seedUser(t, "Handler", domain.RoleDeveloper)

	// Non-staff reporters cannot pick an assignee; the field is dropped.
	issue := app.createIssue(t, app.token(t, reporter), "self-served", map[string]any{
		"assignedToId": dev.ID,
	})
	assert.Empty(t, issue.AssignedToID)

	// Staff can, and the assignee hears about it.
	devTok := app.token(t, app.seedUser(t, "Manager", domain.RoleAccountManager))
	issue = app.createIssue(t, devTok, "prioritized intake", map[string]any{
		"assignedToId": dev.ID,
	})
	assert.Equal(t, dev.ID, issue.AssignedToID)
	assert.Equal(t, "Handler", issue.AssigneeName)

	ns := app.listNotifications(t, app.token(t, dev))
	require.Len(t, ns, 1)
	assert.Equal(t, domain.NotificationAssigned, ns[0].Type)
	assert.Equal(t, issue.ID, ns[0].IssueID)
}

func TestIssueListScoping(t *testing.T) {
	app := newTestApp(t)
	alice := app.seedUser(t, "Alice", domain.RoleUser)
	bob := app.seedUser(t, "Bob", domain.RoleUser)
	dev := app.seedUser(t, "Triage", domain.RoleDeveloper)

	mine := app.createIssue(t, app.token(t, alice), "alice problem", nil)
	other := app.createIssue(t, app.token(t, bob), "bob problem", nil)

	// Non-staff only see what they reported or are assigned to.
	rec := app.doJSON(t, http.MethodGet, "/api/issues", app.token(t, alice), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[issueList](t, rec)
	require.Equal(t, 1, got.Total)
	assert.Equal(t, mine.ID, got.Items[0].ID)
	assert.Equal(t, "1", rec.Header().Get("X-Total-Count"))

	// Staff see everything.
	rec = app.doJSON(t, http.MethodGet, "/api/issues", app.token(t, dev), nil)
	got = decodeBody[issueList](t, rec)
	assert.Equal(t, 2, got.Total)

	// Direct fetch of a foreign issue is forbidden, not hidden.
	rec = app.doJSON(t, http.MethodGet, "/api/issues/"+other.ID, app.token(t, alice), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", errCode(t, rec))

	rec = app.doJSON(t, http.MethodGet, "/api/issues/"+other.ID, app.token(t, dev), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Unknown status filters are rejected up front.
	rec = app.doJSON(t, http.MethodGet, "/api/issues?status=BOGUS", app.token(t, dev), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION", errCode(t, rec))
}

func TestIssueListPagination(t *testing.T) {
	app := newTestApp(t)
	dev := app.seedUser(t, "Dev", domain.RoleDeveloper)
	tok := app.token(t, dev)

	for _, title := range []string{"one", "two", "three"} {
		app.createIssue(t, tok, title, nil)
	}

	rec := app.doJSON(t, http.MethodGet, "/api/issues?limit=2", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[issueList](t, rec)
	assert.Len(t, got.Items, 2)
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, "3", rec.Header().Get("X-Total-Count"))
}

func TestIssueStatusWorkflow(t *testing.T) {
	app := newTestApp(t)
	reporter := app.seedUser(t, "Customer", domain.RoleUser)
	dev := app.seedUser(t, "Fixer", domain.RoleDeveloper)
	devTok := app.token(t, dev)

	issue := app.createIssue(t, app.token(t, reporter), "crash on export", nil)

	// Reporters don't run the workflow, even on their own issues.
	rec := app.doJSON(t, http.MethodPatch, "/api/issues/"+issue.ID+"/status", app.token(t, reporter),
		map[string]string{"status": "IN_PROGRESS"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Legal edge.
	rec = app.doJSON(t, http.MethodPatch, "/api/issues/"+issue.ID+"/status", devTok,
		map[string]string{"status": "IN_PROGRESS"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	moved := decodeBody[domain.Issue](t, rec)
	assert.Equal(t, domain.StatusInProgress, moved.Status)

	// Unknown status value.
	rec = app.doJSON(t, http.MethodPatch, "/api/issues/"+issue.ID+"/status", devTok,
		map[string]string{"status": "DONE"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION", errCode(t, rec))

	// Known status, but not an edge from IN_PROGRESS.
	rec = app.doJSON(t, http.MethodPatch, "/api/issues/"+issue.ID+"/status", devTok,
		map[string]string{"status": "NEW"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_TRANSITION", errCode(t, rec))

	// The reporter was told about the one real move.
	ns := app.listNotifications(t, app.token(t, reporter))
	require.Len(t, ns, 1)
	assert.Equal(t, domain.NotificationStatusChanged, ns[0].Type)

	// Advertised moves match the workflow table.
	rec = app.doJSON(t, http.MethodGet, "/api/issues/"+issue.ID+"/statuses", devTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var allowed struct {
		Current domain.Status   `json:"current"`
		Allowed []domain.Status `json:"allowed"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&allowed))
	assert.Equal(t, domain.StatusInProgress, allowed.Current)
	assert.ElementsMatch(t, []domain.Status{
		domain.StatusPending, domain.StatusNeedsReview, domain.StatusFixed,
		domain.StatusClosed, domain.StatusWontFix,
	}, allowed.Allowed)
}

func TestIssueUpdateAndDelete(t *testing.T) {
	app := newTestApp(t)
	reporter := app.seedUser(t, "Owner", domain.RoleUser)
	stranger := app.seedUser(t, "Stranger", domain.RoleUser)
	dev := app.seedUser(t, "Assignee", domain.RoleDeveloper)
	repTok := app.token(t, reporter)

	issue := app.createIssue(t, repTok, "original title", nil)

	// Owners may edit their own issues.
	rec := app.doJSON(t, http.MethodPatch, "/api/issues/"+issue.ID, repTok,
		map[string]any{"title": "clarified title", "priority": "critical"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[domain.Issue](t, rec)
	assert.Equal(t, "clarified title", updated.Title)
	assert.Equal(t, domain.PriorityCritical, updated.Priority)
	assert.Equal(t, domain.StatusNew, updated.Status, "field updates never move the workflow")

	// Unrelated end users may not.
	rec = app.doJSON(t, http.MethodPatch, "/api/issues/"+issue.ID, app.token(t, stranger),
		map[string]any{"title": "hijacked"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Assignment change notifies the new assignee.
	rec = app.doJSON(t, http.MethodPatch, "/api/issues/"+issue.ID, app.token(t, dev),
		map[string]any{"assignedToId": dev.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	ns := app.listNotifications(t, app.token(t, dev))
	assert.Empty(t, ns, "self-assignment is not announced")

	adminTok := app.token(t, app.seedUser(t, "Boss", domain.RoleAdmin))
	rec = app.doJSON(t, http.MethodPatch, "/api/issues/"+issue.ID, adminTok,
		map[string]any{"assignedToId": ""})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = app.doJSON(t, http.MethodPatch, "/api/issues/"+issue.ID, adminTok,
		map[string]any{"assignedToId": dev.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	ns = app.listNotifications(t, app.token(t, dev))
	require.Len(t, ns, 1)
	assert.Equal(t, domain.NotificationAssigned, ns[0].Type)

	// Unrelated users cannot delete; the reporter can.
	rec = app.doJSON(t, http.MethodDelete, "/api/issues/"+issue.ID, app.token(t, stranger), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.doJSON(t, http.MethodDelete, "/api/issues/"+issue.ID, repTok, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = app.doJSON(t, http.MethodGet, "/api/issues/"+issue.ID, repTok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIssueComments(t *testing.T) {
	app := newTestApp(t)
	reporter := app.seedUser(t, "Author", domain.RoleUser)
	dev := app.seedUser(t, "Support", domain.RoleDeveloper)
	outsider := app.seedUser(t, "Outsider", domain.RoleUser)
	repTok := app.token(t, reporter)
	devTok := app.token(t, dev)

	issue := app.createIssue(t, repTok, "needs discussion", nil)

	rec := app.doJSON(t, http.MethodPost, "/api/issues/"+issue.ID+"/comments", repTok,
		map[string]string{"body": "any update?"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	mine := decodeBody[domain.Comment](t, rec)
	assert.Equal(t, reporter.ID, mine.CreatedByID)
	assert.Equal(t, "Author", mine.AuthorName)

	// Empty bodies are rejected.
	rec = app.doJSON(t, http.MethodPost, "/api/issues/"+issue.ID+"/comments", repTok,
		map[string]string{"body": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Visibility of the parent issue gates commenting.
	rec = app.doJSON(t, http.MethodPost, "/api/issues/"+issue.ID+"/comments", app.token(t, outsider),
		map[string]string{"body": "drive-by"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// A staff reply notifies the reporter.
	rec = app.doJSON(t, http.MethodPost, "/api/issues/"+issue.ID+"/comments", devTok,
		map[string]string{"body": "looking into it"})
	require.Equal(t, http.StatusCreated, rec.Code)
	theirs := decodeBody[domain.Comment](t, rec)
	ns := app.listNotifications(t, repTok)
	require.Len(t, ns, 1)
	assert.Equal(t, domain.NotificationCommented, ns[0].Type)

	rec = app.doJSON(t, http.MethodGet, "/api/issues/"+issue.ID+"/comments", repTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Items []domain.Comment `json:"items"`
		Total int              `json:"total"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Equal(t, 2, list.Total)

	// Authors delete their own comments; other non-staff cannot.
	rec = app.doJSON(t, http.MethodDelete, "/api/issues/"+issue.ID+"/comments/"+theirs.ID, repTok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code, "issue ownership does not grant comment deletion")

	rec = app.doJSON(t, http.MethodDelete, "/api/issues/"+issue.ID+"/comments/"+mine.ID, repTok, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Staff may clean up anything.
	rec = app.doJSON(t, http.MethodDelete, "/api/issues/"+issue.ID+"/comments/"+theirs.ID, devTok, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func (a *testApp) uploadFile(t *testing.T, token, issueID, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/issues/"+issueID+"/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return a.do(t, req)
}

func TestIssueFilesRoundTrip(t *testing.T) {
	app := newTestApp(t)
	reporter := app.seedUser(t, "Uploader", domain.RoleUser)
	outsider := app.seedUser(t, "Nosy", domain.RoleUser)
	repTok := app.token(t, reporter)

	issue := app.createIssue(t, repTok, "attach the log", nil)
	payload := []byte("panic: boom\ngoroutine 1 [running]")

	rec := app.uploadFile(t, repTok, issue.ID, "crash.log", payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// The blob key must never appear in responses.
	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	_, leaked := raw["key"]
	assert.False(t, leaked)

	rec = app.uploadFile(t, repTok, issue.ID, "crash.log", payload)
	require.Equal(t, http.StatusCreated, rec.Code)
	meta := decodeBody[domain.File](t, rec)
	assert.Equal(t, "crash.log", meta.Name)
	assert.Equal(t, int64(len(payload)), meta.Size)

	// Missing multipart field.
	req := httptest.NewRequest(http.MethodPost, "/api/issues/"+issue.ID+"/files", bytes.NewReader(nil))
	req.Header.Set("Authorization", "Bearer "+repTok)
	rec = app.do(t, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Parent visibility gates uploads and listings.
	rec = app.uploadFile(t, app.token(t, outsider), issue.ID, "x.txt", []byte("x"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.doJSON(t, http.MethodGet, "/api/issues/"+issue.ID+"/files", repTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Items []domain.File `json:"items"`
		Total int           `json:"total"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Equal(t, 2, list.Total)

	// Download streams the original bytes back.
	rec = app.doJSON(t, http.MethodGet, "/api/files/"+meta.ID, repTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, payload, rec.Body.Bytes())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "crash.log")

	rec = app.doJSON(t, http.MethodGet, "/api/files/"+meta.ID, app.token(t, outsider), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Uploader deletes; the bytes are gone with the metadata.
	rec = app.doJSON(t, http.MethodDelete, "/api/files/"+meta.ID, app.token(t, outsider), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.doJSON(t, http.MethodDelete, "/api/files/"+meta.ID, repTok, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = app.doJSON(t, http.MethodGet, "/api/files/"+meta.ID, repTok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func (a *testApp) listNotifications(t *testing.T, token string) []domain.Notification {
	t.Helper()
	rec := a.doJSON(t, http.MethodGet, "/api/notifications", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var list struct {
		Items []domain.Notification `json:"items"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	return list.Items
}

// Guards against filters leaking rows the caller may not see: the scoped
// list and an explicit reporter filter must agree.
func TestIssueListFiltersComposeWithScoping(t *testing.T) {
	app := newTestApp(t)
	alice := app.seedUser(t, "Ann", domain.RoleUser)
	dev := app.seedUser(t, "Eng", domain.RoleDeveloper)
	aliceTok := app.token(t, alice)

	app.createIssue(t, aliceTok, "mine alpha", nil)
	app.createIssue(t, app.token(t, dev), "theirs beta", nil)

	rec := app.doJSON(t, http.MethodGet, "/api/issues?reporterId="+dev.ID, aliceTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[issueList](t, rec)
	assert.Zero(t, got.Total, "filtering by a foreign reporter yields nothing for non-staff")

	rec = app.doJSON(t, http.MethodGet, "/api/issues?reporterId="+dev.ID, app.token(t, dev), nil)
	got = decodeBody[issueList](t, rec)
	assert.Equal(t, 1, got.Total)
}
