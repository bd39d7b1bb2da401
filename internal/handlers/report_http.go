package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/thehashrocket/issue-portal-sub000/internal/domain"
	"github.com/thehashrocket/issue-portal-sub000/internal/repository"
	"github.com/thehashrocket/issue-portal-sub000/internal/utils"
)

type ReportHTTP struct {
	issues repository.IssueRepository
	log    zerolog.Logger
}

func NewReportHTTP(issues repository.IssueRepository, log zerolog.Logger) *ReportHTTP {
	return &ReportHTTP{issues: issues, log: log}
}

// GET /api/reports/summary
// Returns: { open, resolvedLast7Days, highPriorityOpen, byStatus }
func (h *ReportHTTP) Summary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := h.issues.CountByStatus(r.Context())
		if err != nil {
			writeError(w, h.log, err)
			return
		}

		// Zero-fill so every workflow status shows up in the payload.
		byStatus := make(map[domain.Status]int, len(counts))
		open := 0
		for _, s := range domain.Statuses() {
			byStatus[s] = counts[s]
			if !s.IsResolved() {
				open += counts[s]
			}
		}

		resolved7d, err := h.issues.CountResolvedSince(r.Context(), time.Now().Add(-7*24*time.Hour))
		if err != nil {
			writeError(w, h.log, err)
			return
		}

		highOpen, err := h.issues.CountOpenByPriorities(r.Context(), []domain.Priority{domain.PriorityHigh, domain.PriorityCritical})
		if err != nil {
			writeError(w, h.log, err)
			return
		}

		utils.JSON(w, http.StatusOK, map[string]any{
			"open":              open,
			"resolvedLast7Days": resolved7d,
			"highPriorityOpen":  highOpen,
			"byStatus":          byStatus,
		})
	}
}
