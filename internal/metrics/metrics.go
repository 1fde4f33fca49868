package metrics

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/target-analyzer-mcp/internal/detection"
)

// ShootingMetrics is the result of one analysis.
type ShootingMetrics struct {
	Shots int             `json:"shots"`
	STP   detection.Point `json:"stp"`

	// Precision is the mean distance to STP in pixels.
	Precision float64 `json:"precision"`
	// GroupRadius is the largest distance to STP in pixels.
	GroupRadius float64 `json:"group_radius"`

	PrecisionCM        float64 `json:"precision_cm"`
	GroupRadiusCM      float64 `json:"group_radius_cm"`
	DistanceToCenterCM float64 `json:"distance_to_center_cm"`

	TargetCenter   detection.Point `json:"target_center"`
	CenterFallback bool            `json:"center_fallback"`
}

var errBadScale = errors.New("pixels per cm must be positive")

// Calculate measures the dispersion of points around stp.
func Calculate(points []detection.Point, stp detection.Point, pixelsPerCM float64) (*ShootingMetrics, error) {
	if len(points) == 0 {
		return nil, ErrNoData
	}
	if !(pixelsPerCM > 0) {
		return nil, fmt.Errorf("%w: %v", errBadScale, pixelsPerCM)
	}

	distances := make([]float64, len(points))
	for i, p := range points {
		distances[i] = p.Distance(stp)
	}

	m := &ShootingMetrics{
		Shots:       len(points),
		STP:         stp,
		Precision:   stat.Mean(distances, nil),
		GroupRadius: floats.Max(distances),
	}
	m.PrecisionCM = round2(m.Precision / pixelsPerCM)
	m.GroupRadiusCM = round2(m.GroupRadius / pixelsPerCM)
	return m, nil
}

// DistanceToCenterCM converts the STP offset from center to centimetres.
func DistanceToCenterCM(stp, center detection.Point, pixelsPerCM float64) (float64, error) {
	if !(pixelsPerCM > 0) {
		return 0, fmt.Errorf("%w: %v", errBadScale, pixelsPerCM)
	}
	return round2(stp.Distance(center) / pixelsPerCM), nil
}

// Compute runs STP, Calculate and DistanceToCenterCM in one go.
func Compute(points []detection.Point, pixelsPerCM float64, center detection.Point) (*ShootingMetrics, error) {
	stp, err := STP(points)
	if err != nil {
		return nil, err
	}
	m, err := Calculate(points, stp, pixelsPerCM)
	if err != nil {
		return nil, err
	}
	m.TargetCenter = center
	m.DistanceToCenterCM, err = DistanceToCenterCM(stp, center, pixelsPerCM)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// round2 rounds to two decimals, halves away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
