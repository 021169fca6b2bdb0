// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
)

// maxAbsDelta is the largest magnitude a single score delta may carry, per
// the contract for POST /customer/{customerId}/score/{score}.
var maxAbsDelta = decimal.NewFromInt(1000)

// ScoreDependencies defines the interface for applying score deltas.
type ScoreDependencies interface {
	UpdateScore(ctx context.Context, customerID int64, delta decimal.Decimal) (decimal.Decimal, error)
}

// ScoreHandler handles score-update requests.
type ScoreHandler struct {
	deps ScoreDependencies
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps ScoreDependencies) *ScoreHandler {
	return &ScoreHandler{deps: deps}
}

// HandlePostScore handles POST /customer/{customerId}/score/{score} requests.
func (h *ScoreHandler) HandlePostScore(w http.ResponseWriter, r *http.Request) {
	customerID, err := strconv.ParseInt(r.PathValue("customerId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	delta, err := decimal.NewFromString(r.PathValue("score"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if delta.Abs().GreaterThan(maxAbsDelta) {
		writeError(w, http.StatusBadRequest, "delta_out_of_range", ErrBadRequest)
		return
	}

	newScore, err := h.deps.UpdateScore(r.Context(), customerID, delta)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, newScore.String())
}
