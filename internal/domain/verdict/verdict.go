// Package verdict defines the contract for generating judge commentary
// during round 2 synthesis.
//
// The engine stores the returned text verbatim and never parses it, so
// generators are free to produce anything from canned templates to the
// output of an external language model. Generation happens around, not
// inside, the pure scoring functions: a slow or failing generator leaves the
// ledger and lifecycle untouched.
package verdict

import (
	"context"
	"fmt"
)

// Request carries the context a generator receives for one judge's verdict.
type Request struct {
	SubmissionID   string
	SubmissionName string
	JudgeID        string
	WeightedTotal  float64
	Round1Total    float64
	CommunityBonus float64
	FinalScore     float64
}

// Generator produces opaque verdict text for one judge.
type Generator interface {
	// Generate returns the verdict text, honoring ctx for cancellation.
	Generate(ctx context.Context, req Request) (string, error)
}

// TemplateGenerator is the built-in deterministic generator. It exists so
// the synthesis path works end to end without an external model; deployments
// that want real commentary inject their own Generator.
type TemplateGenerator struct{}

// NewTemplateGenerator creates a TemplateGenerator.
func NewTemplateGenerator() *TemplateGenerator { return &TemplateGenerator{} }

// Generate renders a fixed-format verdict from the request numbers.
func (g *TemplateGenerator) Generate(ctx context.Context, req Request) (string, error) {
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
	default:
	}
	return fmt.Sprintf(
		"%s scored %s at %.2f in round 1; with a community bonus of %.2f the panel total moves from %.2f to a final %.2f.",
		req.JudgeID, req.SubmissionName, req.WeightedTotal,
		req.CommunityBonus, req.Round1Total, req.FinalScore,
	), nil
}
