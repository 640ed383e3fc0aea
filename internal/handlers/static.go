package handlers

import (
	"net/http"
	"path/filepath"
	"strings"
)

// HandleStatic serves generated reports from the report directory.
func (h *Handler) HandleStatic(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")

	// Prevent directory traversal attacks
	if strings.Contains(path, "..") || strings.Contains(path, "\\") {
		http.Error(w, "Invalid file path", http.StatusBadRequest)
		return
	}

	switch {
	case strings.HasSuffix(path, ".html"):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	case strings.HasSuffix(path, ".yaml"):
		w.Header().Set("Content-Type", "application/yaml")
	case strings.HasSuffix(path, ".csv"):
		w.Header().Set("Content-Type", "text/csv")
	}

	http.ServeFile(w, r, filepath.Join(h.reportDir, filepath.FromSlash(path)))
}
