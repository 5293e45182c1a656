// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
)

// PrizePoolDependencies defines the interface for prize-pool queries.
type PrizePoolDependencies interface {
	PrizePool(ctx context.Context) (PrizePoolSummary, error)
}

// PrizePoolHandler handles prize-pool summary requests.
type PrizePoolHandler struct {
	deps PrizePoolDependencies
}

// NewPrizePoolHandler creates a new prize-pool handler.
func NewPrizePoolHandler(deps PrizePoolDependencies) *PrizePoolHandler {
	return &PrizePoolHandler{deps: deps}
}

// HandleGetPrizePool handles GET /prizepool requests.
func (h *PrizePoolHandler) HandleGetPrizePool(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	summary, err := h.deps.PrizePool(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
