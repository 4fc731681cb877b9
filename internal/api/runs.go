package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Ranker/internal/store"
	"github.com/MikeSquared-Agency/Ranker/internal/tabular"
)

type RunsHandler struct {
	store store.Store
}

func NewRunsHandler(s store.Store) *RunsHandler {
	return &RunsHandler{store: s}
}

func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.RunFilter{
		Variant: q.Get("variant"),
		Source:  q.Get("source"),
	}
	if s := q.Get("status"); s != "" {
		status := store.RunStatus(s)
		filter.Status = &status
	}
	if s := q.Get("since"); s != "" {
		since, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "since must be RFC3339"})
			return
		}
		filter.Since = &since
	}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		s := q.Get(name)
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + name})
			return
		}
		*dst = n
	}

	runs, err := h.store.ListRuns(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if runs == nil {
		runs = []*store.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// Export streams a completed run's report as an .xlsx workbook (default) or
// as the comparison table in CSV.
func (h *RunsHandler) Export(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if run.Report == nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "run has no report"})
		return
	}

	var (
		buf         bytes.Buffer
		contentType string
		ext         string
		err         error
	)
	switch format := r.URL.Query().Get("format"); format {
	case "", "xlsx":
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		ext = "xlsx"
		err = tabular.WriteWorkbook(&buf, run.Report)
	case "csv":
		contentType = "text/csv"
		ext = "csv"
		err = tabular.WriteComparisonCSV(&buf, run.Report)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "format must be xlsx or csv"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="run-%s.%s"`, run.ID, ext))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func (h *RunsHandler) lookup(w http.ResponseWriter, r *http.Request) (*store.Run, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid run id"})
		return nil, false
	}
	run, err := h.store.GetRun(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return nil, false
	}
	if run == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
		return nil, false
	}
	return run, true
}
