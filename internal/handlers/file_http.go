package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/thehashrocket/issue-portal-sub000/internal/authz"
	"github.com/thehashrocket/issue-portal-sub000/internal/domain"
	"github.com/thehashrocket/issue-portal-sub000/internal/middleware"
	"github.com/thehashrocket/issue-portal-sub000/internal/repository"
	"github.com/thehashrocket/issue-portal-sub000/internal/storage"
	"github.com/thehashrocket/issue-portal-sub000/internal/utils"
)

// maxUploadBytes caps a single attachment request body.
const maxUploadBytes = 32 << 20

// FileHTTP serves issue attachments. Metadata lives in the repository,
// bytes in the blob store; access always goes through the parent issue's
// visibility rules.
type FileHTTP struct {
	files  repository.FileRepository
	issues repository.IssueRepository
	blobs  storage.BlobStore
	az     *authz.Authorizer
	log    zerolog.Logger
}

func NewFileHTTP(files repository.FileRepository, issues repository.IssueRepository, blobs storage.BlobStore, az *authz.Authorizer, log zerolog.Logger) *FileHTTP {
	return &FileHTTP{files: files, issues: issues, blobs: blobs, az: az, log: log}
}

// POST /api/issues/{id}/files (multipart, field "file")
func (h *FileHTTP) Upload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := middleware.SessionFrom(r.Context())
		issue := loadIssue(w, r, h.log, h.issues, h.az, authz.ActionView)
		if issue == nil {
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		src, header, err := r.FormFile("file")
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "VALIDATION", `multipart field "file" is required`)
			return
		}
		defer src.Close()

		name := filepath.Base(strings.TrimSpace(header.Filename))
		if name == "" || name == "." || name == string(filepath.Separator) {
			utils.Error(w, http.StatusBadRequest, "VALIDATION", "file name is required")
			return
		}

		key, size, err := h.blobs.Put(r.Context(), name, src)
		if err != nil {
			writeError(w, h.log, err)
			return
		}

		meta := &domain.File{
			IssueID:      issue.ID,
			UploadedByID: sess.UserID,
			Name:         name,
			Key:          key,
			Size:         size,
			ContentType:  header.Header.Get("Content-Type"),
		}
		if err := h.files.Create(r.Context(), meta); err != nil {
			// Don't leave an orphan blob behind a failed metadata row.
			if derr := h.blobs.Delete(r.Context(), key); derr != nil {
				h.log.Error().Err(derr).Str("key", key).Msg("orphan blob cleanup failed")
			}
			writeError(w, h.log, err)
			return
		}
		utils.JSON(w, http.StatusCreated, meta)
	}
}

// GET /api/issues/{id}/files
func (h *FileHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		issue := loadIssue(w, r, h.log, h.issues, h.az, authz.ActionView)
		if issue == nil {
			return
		}
		items, err := h.files.ListByIssue(r.Context(), issue.ID)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
	}
}

// GET /api/files/{fileID} streams the attachment bytes.
func (h *FileHTTP) Download() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		meta := h.loadFile(w, r)
		if meta == nil {
			return
		}
		issue, err := h.issues.Get(r.Context(), meta.IssueID)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		if err := h.az.Check(middleware.SessionFrom(r.Context()), authz.ResourceIssue, authz.ActionView, issueData(issue)); err != nil {
			writeError(w, h.log, err)
			return
		}

		blob, err := h.blobs.Open(r.Context(), meta.Key)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		defer blob.Close()

		ct := meta.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		w.Header().Set("Content-Type", ct)
		w.Header().Set("Content-Length", strconv.FormatInt(meta.Size, 10))
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", meta.Name))
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, blob); err != nil {
			h.log.Error().Err(err).Str("file_id", meta.ID).Msg("attachment stream aborted")
		}
	}
}

// DELETE /api/files/{fileID}
// Staff or the uploader. The metadata row goes first so a blob store
// hiccup can't resurrect the file in listings.
func (h *FileHTTP) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		meta := h.loadFile(w, r)
		if meta == nil {
			return
		}
		err := h.az.Check(middleware.SessionFrom(r.Context()), authz.ResourceFile, authz.ActionDelete, authz.ResourceData{OwnerID: meta.UploadedByID})
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		if err := h.files.Delete(r.Context(), meta.ID); err != nil {
			writeError(w, h.log, err)
			return
		}
		if err := h.blobs.Delete(r.Context(), meta.Key); err != nil && !errors.Is(err, storage.ErrBlobNotFound) {
			h.log.Error().Err(err).Str("key", meta.Key).Msg("blob delete failed")
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *FileHTTP) loadFile(w http.ResponseWriter, r *http.Request) *domain.File {
	fileID := chi.URLParam(r, "fileID")
	if badID(fileID) {
		writeError(w, h.log, domain.ErrFileNotFound)
		return nil
	}
	meta, err := h.files.Get(r.Context(), fileID)
	if err != nil {
		writeError(w, h.log, err)
		return nil
	}
	return meta
}
