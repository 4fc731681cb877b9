package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/MikeSquared-Agency/Ranker/internal/broker"
	"github.com/MikeSquared-Agency/Ranker/internal/crisp"
	"github.com/MikeSquared-Agency/Ranker/internal/scoring"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 4 << 20

var validate = validator.New()

// RankRequest is the body of every /rank endpoint. Values may be numbers or
// numeric strings; omitted options use the configured defaults.
type RankRequest struct {
	Name          string           `json:"name,omitempty" validate:"max=200"`
	Alternatives  []scoring.RawRow `json:"alternatives" validate:"required,min=1"`
	Weights       []float64        `json:"weights,omitempty" validate:"omitempty,dive,gte=0,lte=1"`
	Variant       string           `json:"variant,omitempty" validate:"omitempty,oneof=plain fuzzy"`
	Normalization string           `json:"normalization,omitempty" validate:"omitempty,oneof=extreme_ratio min_max"`
	Crisp         bool             `json:"crisp,omitempty"`
	Scale         string           `json:"scale,omitempty" validate:"omitempty,oneof=100 4"`
}

func (req RankRequest) toBroker(requestID string) broker.Request {
	out := broker.Request{
		RequestID:     requestID,
		Name:          req.Name,
		Source:        broker.SourceAPI,
		Rows:          req.Alternatives,
		Variant:       scoring.Variant(req.Variant),
		Normalization: scoring.NormalizationMethod(req.Normalization),
		Crisp:         req.Crisp,
		Scale:         crisp.Scale(req.Scale),
	}
	if req.Weights != nil {
		out.Weights = scoring.WeightSet(req.Weights)
	}
	return out
}

type ConvertRequest struct {
	CriterionID string   `json:"criterion_id" validate:"required"`
	Value       *float64 `json:"value" validate:"required"`
	Scale       string   `json:"scale,omitempty" validate:"omitempty,oneof=100 4"`
}

type ConvertResponse struct {
	CriterionID string  `json:"criterion_id"`
	Value       float64 `json:"value"`
	Level       float64 `json:"level"`
	Scale       string  `json:"scale"`
}

type CrispMatrixRequest struct {
	Alternatives []scoring.RawRow `json:"alternatives" validate:"required,min=1"`
	Scale        string           `json:"scale,omitempty" validate:"omitempty,oneof=100 4"`
}

type CrispMatrixResponse struct {
	Scale        string                `json:"scale"`
	Criteria     []string              `json:"criteria"`
	Alternatives []scoring.Alternative `json:"alternatives"`
	Skipped      []scoring.SkippedRow  `json:"skipped,omitempty"`
}

// decodeJSON reads a size-capped JSON body into v and validates it. Numbers
// are kept as json.Number so string and numeric cells coerce alike.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body", scoring.ErrInvalidInput)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %s", scoring.ErrInvalidInput, validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// errorStatus maps scoring sentinels onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, scoring.ErrEmptyInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, scoring.ErrInvalidInput), errors.Is(err, scoring.ErrUnknownCriterion):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errorStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
