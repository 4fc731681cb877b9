package api

import (
	"log/slog"
	"net/http"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/Ranker/internal/broker"
	"github.com/MikeSquared-Agency/Ranker/internal/config"
	"github.com/MikeSquared-Agency/Ranker/internal/crisp"
	"github.com/MikeSquared-Agency/Ranker/internal/scoring"
)

type RankHandler struct {
	broker *broker.Broker
	cfg    *config.Config
	logger *slog.Logger
}

func NewRankHandler(b *broker.Broker, cfg *config.Config, logger *slog.Logger) *RankHandler {
	return &RankHandler{broker: b, cfg: cfg, logger: logger}
}

type CriteriaResponse struct {
	Criteria       scoring.Criteria  `json:"criteria"`
	DefaultWeights scoring.WeightSet `json:"default_weights"`
	Variant        string            `json:"variant"`
	Normalization  string            `json:"normalization,omitempty"`
	Scale          string            `json:"scale"`
	TieMethod      string            `json:"tie_method"`
}

func (h *RankHandler) Criteria(w http.ResponseWriter, r *http.Request) {
	criteria := h.broker.Criteria()
	writeJSON(w, http.StatusOK, CriteriaResponse{
		Criteria:       criteria,
		DefaultWeights: criteria.DefaultWeights(),
		Variant:        h.cfg.Ranking.Variant,
		Normalization:  h.cfg.Ranking.Normalization,
		Scale:          h.cfg.Ranking.Scale,
		TieMethod:      h.cfg.Ranking.TieMethod,
	})
}

// Rank runs SAW and WP, persists the run and returns it. Failed runs are
// persisted too; the response then carries the run id next to the error.
func (h *RankHandler) Rank(w http.ResponseWriter, r *http.Request) {
	var req RankRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	run, err := h.broker.Execute(r.Context(), req.toBroker(chiMiddleware.GetReqID(r.Context())))
	if err != nil {
		if run == nil {
			h.logger.Error("rank request not persisted", "name", req.Name, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, errorStatus(err), map[string]interface{}{
			"error":   err.Error(),
			"run_id":  run.ID,
			"skipped": run.Skipped,
		})
		return
	}
	writeJSON(w, http.StatusCreated, run)
}

type SAWResponse struct {
	*scoring.SAWResult
	Skipped []scoring.SkippedRow `json:"skipped,omitempty"`
}

func (h *RankHandler) SAW(w http.ResponseWriter, r *http.Request) {
	req, m, ok := h.matrix(w, r)
	if !ok {
		return
	}
	opts := h.broker.Ranker(scoring.Variant(req.Variant), scoring.NormalizationMethod(req.Normalization)).Options()
	res, err := scoring.SAW(m, h.weights(req), scoring.SAWOptions{
		Variant:       opts.Variant,
		Normalization: opts.Normalization,
		TieMethod:     opts.TieMethod,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SAWResponse{SAWResult: res, Skipped: m.Skipped})
}

type WPResponse struct {
	*scoring.WPResult
	Skipped []scoring.SkippedRow `json:"skipped,omitempty"`
}

func (h *RankHandler) WP(w http.ResponseWriter, r *http.Request) {
	req, m, ok := h.matrix(w, r)
	if !ok {
		return
	}
	opts := h.broker.Ranker(scoring.Variant(req.Variant), "").Options()
	res, err := scoring.WP(m, h.weights(req), opts.TieMethod)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, WPResponse{WPResult: res, Skipped: m.Skipped})
}

// matrix decodes a RankRequest and builds its decision matrix, applying the
// crisp conversion when asked. It writes the error response itself.
func (h *RankHandler) matrix(w http.ResponseWriter, r *http.Request) (RankRequest, *scoring.DecisionMatrix, bool) {
	var req RankRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return req, nil, false
	}
	m, err := scoring.BuildDecisionMatrix(h.broker.Criteria(), req.Alternatives)
	if err != nil {
		if m != nil {
			writeJSON(w, errorStatus(err), map[string]interface{}{"error": err.Error(), "skipped": m.Skipped})
			return req, nil, false
		}
		writeError(w, err)
		return req, nil, false
	}
	if req.Crisp {
		converted, err := h.broker.Converter(crisp.Scale(req.Scale)).ConvertMatrix(m)
		if err != nil {
			writeError(w, err)
			return req, nil, false
		}
		m = converted
	}
	return req, m, true
}

func (h *RankHandler) weights(req RankRequest) scoring.WeightSet {
	if req.Weights == nil {
		return h.broker.Criteria().DefaultWeights()
	}
	return scoring.WeightSet(req.Weights)
}
