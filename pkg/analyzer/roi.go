package analyzer

import (
	"errors"
	"fmt"
)

// ErrZeroEffort reports an ROI request with zero effort cost. The ratio is
// undefined there, and callers must handle the condition explicitly rather
// than receive an infinity.
var ErrZeroEffort = errors.New("roi undefined: effort cost is zero")

// ROIResult quantifies a proposed logging cleanup.
type ROIResult struct {
	PotentialSavings float64 `json:"potential_savings"` // totalCost * reduction
	EffortCost       float64 `json:"effort_cost"`       // hours * rate
	NetSavings       float64 `json:"net_savings"`       // savings - effort
	ROI              float64 `json:"roi"`               // net / effort
}

// ROI estimates the return on spending hours at an hourly rate to cut
// total cost by a reduction fraction.
//
// reduction must be in [0, 1]; hours and rate must be non-negative. A zero
// effort cost (hours or rate zero) returns ErrZeroEffort.
func ROI(totalCost, reduction, hours, rate float64) (ROIResult, error) {
	if reduction < 0 || reduction > 1 {
		return ROIResult{}, fmt.Errorf("reduction must be between 0 and 1, got %g", reduction)
	}
	if hours < 0 {
		return ROIResult{}, fmt.Errorf("hours must be non-negative, got %g", hours)
	}
	if rate < 0 {
		return ROIResult{}, fmt.Errorf("rate must be non-negative, got %g", rate)
	}

	savings := totalCost * reduction
	effort := hours * rate
	if effort == 0 {
		return ROIResult{}, ErrZeroEffort
	}

	net := savings - effort
	return ROIResult{
		PotentialSavings: savings,
		EffortCost:       effort,
		NetSavings:       net,
		ROI:              net / effort,
	}, nil
}
