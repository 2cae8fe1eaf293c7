package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/MrSnakeDoc/quill/internal/content"
	"github.com/MrSnakeDoc/quill/internal/httpserver/deps"
	"github.com/MrSnakeDoc/quill/internal/logger"
)

type importResponse struct {
	Imported int `json:"imported"`
}

// Export streams the whole collection as a downloadable JSON file.
func Export(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := d.Store.Export()
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="%s"`, content.ExportFileName(d.Now())))
		writeJSON(w, http.StatusOK, payload, d.Logger)
	}
}

// Import replaces the collection with the uploaded export. Nothing changes
// unless every article is valid.
func Import(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBody))
		if err != nil {
			writeError(w, &badRequestError{err: fmt.Errorf("failed to read import body: %w", err)}, d.Logger)
			return
		}

		n, err := d.Store.ImportJSON(r.Context(), data)
		if err != nil {
			writeError(w, err, d.Logger)
			return
		}

		d.Logger.Info("articles imported via api",
			logger.Int("count", n),
			logger.String("remote_ip", r.RemoteAddr))
		writeJSON(w, http.StatusOK, importResponse{Imported: n}, d.Logger)
	}
}
