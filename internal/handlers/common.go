package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/pubdatecheck/internal/report"
	"github.com/lehigh-university-libraries/pubdatecheck/internal/storage"
)

type Handler struct {
	runStore  *storage.RunStore
	reportDir string
}

func New(store *storage.RunStore, reportDir string) *Handler {
	return &Handler{
		runStore:  store,
		reportDir: reportDir,
	}
}

// Routes registers every endpoint on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/runs", h.HandleRuns)
	mux.HandleFunc("/api/runs/", h.HandleRunDetail)
	mux.HandleFunc("/healthcheck", h.HandleHealthcheck)
	mux.HandleFunc("/", h.HandleStatic)
	return mux
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

func (h *Handler) getRunOrError(w http.ResponseWriter, id string) (*report.Run, bool) {
	run, exists := h.runStore.Get(id)
	if !exists {
		h.writeError(w, "Run not found", http.StatusNotFound)
		return nil, false
	}
	return run, true
}

func (h *Handler) HandleHealthcheck(w http.ResponseWriter, r *http.Request) {
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Unable to write healthcheck", "err", err)
	}
}
