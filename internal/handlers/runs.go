package handlers

import (
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/pubdatecheck/internal/report"
)

// runListing is the short form of a run returned by the list endpoint.
type runListing struct {
	ID            string `json:"id"`
	Batch         string `json:"batch"`
	Timestamp     string `json:"timestamp"`
	Candidates    int    `json:"candidates"`
	Kept          int    `json:"kept"`
	Discrepancies int    `json:"discrepancies"`
	Error         string `json:"error,omitempty"`
}

func (h *Handler) HandleRuns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		runs := h.runStore.List()
		list := make([]runListing, 0, len(runs))
		for _, run := range runs {
			list = append(list, runListing{
				ID:            run.ID,
				Batch:         run.Batch.ID,
				Timestamp:     run.Config.Timestamp,
				Candidates:    run.Batch.Candidates,
				Kept:          run.Batch.Kept,
				Discrepancies: run.Batch.Discrepancies,
				Error:         run.Batch.Error,
			})
		}
		h.writeJSON(w, list)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleRunDetail serves /api/runs/{id} and /api/runs/{id}/discrepancies.
func (h *Handler) HandleRunDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	id, sub, _ := strings.Cut(path, "/")

	run, ok := h.getRunOrError(w, id)
	if !ok {
		return
	}

	switch sub {
	case "":
		h.writeJSON(w, run)
	case "discrepancies":
		rows := run.Rows()
		if rows == nil {
			rows = []report.Row{}
		}
		h.writeJSON(w, rows)
	default:
		h.writeError(w, "Not found", http.StatusNotFound)
	}
}
