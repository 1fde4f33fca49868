package analysis

import (
	"fmt"
	"image"
	"strings"

	"github.com/ironsheep/target-analyzer-mcp/internal/detection"
	"github.com/ironsheep/target-analyzer-mcp/internal/metrics"
)

// Report is everything one analysis produced.
type Report struct {
	Profile     string  `json:"profile"`
	Source      string  `json:"source,omitempty"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	PixelsPerCM float64 `json:"pixels_per_cm"`

	Detection *detection.Result        `json:"detection"`
	Holes     []detection.Hole         `json:"holes"`
	Metrics   *metrics.ShootingMetrics `json:"metrics"`
	// Construction is set when exactly four holes were counted.
	Construction *metrics.Construction `json:"stp_construction,omitempty"`
}

// Analyze detects holes in img with profile p and measures the group.
//
// When no hole is found the error wraps detection.ErrNoHoles and the
// returned report still carries the detection stages.
func Analyze(img image.Image, p Profile) (*Report, error) {
	b := img.Bounds()
	report := &Report{
		Profile: p.Name(),
		Width:   b.Dx(),
		Height:  b.Dy(),
	}

	res, holes, err := p.DetectHoles(img)
	if res != nil {
		report.Detection = res
		report.PixelsPerCM = res.PixelsPerCM
	}
	if err != nil {
		return report, fmt.Errorf("analysis failed: %w", err)
	}
	report.Holes = holes

	m, err := p.ComputeMetrics(holes, report.PixelsPerCM, img)
	if err != nil {
		return report, fmt.Errorf("analysis failed: %w", err)
	}
	report.Metrics = m

	if len(holes) == 4 {
		c, err := metrics.STPConstruction(detection.Centers(holes))
		if err == nil {
			report.Construction = c
		}
	}

	return report, nil
}

// Summary formats the report as a few lines of text.
func (r *Report) Summary() string {
	var sb strings.Builder
	if r.Source != "" {
		fmt.Fprintf(&sb, "%s\n", r.Source)
	}
	fmt.Fprintf(&sb, "  Profile:            %s\n", r.Profile)
	fmt.Fprintf(&sb, "  Image:              %dx%d px (%.2f px/cm)\n", r.Width, r.Height, r.PixelsPerCM)
	if r.Metrics == nil {
		sb.WriteString("  No holes detected\n")
		return sb.String()
	}

	m := r.Metrics
	fmt.Fprintf(&sb, "  Shots:              %d\n", m.Shots)
	fmt.Fprintf(&sb, "  STP:                (%.1f, %.1f)\n", m.STP.X, m.STP.Y)
	fmt.Fprintf(&sb, "  Group radius:       %.2f cm\n", m.GroupRadiusCM)
	fmt.Fprintf(&sb, "  Precision:          %.2f cm\n", m.PrecisionCM)
	center := "found"
	if m.CenterFallback {
		center = "estimated"
	}
	fmt.Fprintf(&sb, "  Target center:      (%.1f, %.1f) %s\n", m.TargetCenter.X, m.TargetCenter.Y, center)
	fmt.Fprintf(&sb, "  Distance to center: %.2f cm\n", m.DistanceToCenterCM)
	return sb.String()
}
