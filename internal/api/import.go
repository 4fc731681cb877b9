package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/Ranker/internal/tabular"
)

// maxUploadBytes caps spreadsheet uploads.
const maxUploadBytes = 16 << 20

type ImportHandler struct {
	reader *tabular.Reader
}

func NewImportHandler(reader *tabular.Reader) *ImportHandler {
	return &ImportHandler{reader: reader}
}

// Import parses an uploaded .xlsx or .csv form file into rows ready for
// /rank. Nothing is persisted.
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file field required"})
		return
	}
	defer file.Close()

	table, err := h.reader.Read(header.Filename, file)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}
