package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/Ranker/internal/broker"
	"github.com/MikeSquared-Agency/Ranker/internal/crisp"
	"github.com/MikeSquared-Agency/Ranker/internal/scoring"
)

type CrispHandler struct {
	broker *broker.Broker
}

func NewCrispHandler(b *broker.Broker) *CrispHandler {
	return &CrispHandler{broker: b}
}

func (h *CrispHandler) Convert(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	conv := h.broker.Converter(crisp.Scale(req.Scale))
	level, err := conv.Convert(req.CriterionID, *req.Value)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ConvertResponse{
		CriterionID: req.CriterionID,
		Value:       *req.Value,
		Level:       level,
		Scale:       string(conv.Scale()),
	})
}

// Matrix converts every row of raw measurements to crisp levels. Rows with
// unusable cells are reported as skipped, as in a ranking run.
func (h *CrispHandler) Matrix(w http.ResponseWriter, r *http.Request) {
	var req CrispMatrixRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	criteria := h.broker.Criteria()
	m, err := scoring.BuildDecisionMatrix(criteria, req.Alternatives)
	if err != nil {
		writeError(w, err)
		return
	}
	conv := h.broker.Converter(crisp.Scale(req.Scale))
	out, err := conv.ConvertMatrix(m)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CrispMatrixResponse{
		Scale:        string(conv.Scale()),
		Criteria:     criteria.IDs(),
		Alternatives: out.Alternatives,
		Skipped:      out.Skipped,
	})
}
