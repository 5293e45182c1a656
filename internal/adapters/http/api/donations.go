// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// DonationDependencies defines the interface for prize-pool donations.
type DonationDependencies interface {
	Donate(ctx context.Context, ev DonationEvent) (string, error)
}

// DonationsHandler handles direct prize-pool contributions.
type DonationsHandler struct {
	deps DonationDependencies
}

// NewDonationsHandler creates a new donations handler.
func NewDonationsHandler(deps DonationDependencies) *DonationsHandler {
	return &DonationsHandler{deps: deps}
}

type donationRequest struct {
	TokenMint   string  `json:"token_mint"`
	Amount      float64 `json:"amount"`
	Contributor string  `json:"contributor"`
	TS          string  `json:"ts"`
}

type donationResponse struct {
	ContributionID string `json:"contribution_id"`
}

// HandleDonation handles POST /donations requests.
func (h *DonationsHandler) HandleDonation(w http.ResponseWriter, r *http.Request) {
	const op = "api.donation"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req donationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}
	ts, err := parseTS(req.TS)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: invalid ts; must be RFC3339", op, ErrBadRequest))
		return
	}
	id, err := h.deps.Donate(r.Context(), DonationEvent{
		TokenMint:   req.TokenMint,
		Amount:      req.Amount,
		Contributor: req.Contributor,
		Timestamp:   ts,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, donationResponse{ContributionID: id})
}
