package detection

import (
	"errors"
	"image"
	"io"
	"log"

	"github.com/ironsheep/target-analyzer-mcp/internal/config"
	"github.com/ironsheep/target-analyzer-mcp/internal/imaging"
)

// ErrNoHoles is returned by callers of Detector when the final list is empty.
var ErrNoHoles = errors.New("no holes detected")

// Result holds the output of every stage of the hole pipeline.
type Result struct {
	PixelsPerCM   float64 `json:"pixels_per_cm"`
	MergeRadiusPx float64 `json:"merge_radius_px"`
	HookCutoffPx  float64 `json:"hook_cutoff_px"`

	// Raw are the area-filtered clusters, largest first.
	Raw []Hole `json:"raw"`
	// Merged are the clusters after merging, largest first.
	Merged []Hole `json:"merged"`
	Lower  []Hole `json:"lower"`
	Upper  []Hole `json:"upper"`
	// Final is the selected list, in lower-then-upper order.
	Final []Hole `json:"final"`
}

// Empty reports whether no holes were selected.
func (r *Result) Empty() bool {
	return len(r.Final) == 0
}

// Detector runs the hole pipeline with a fixed configuration.
//
// A Detector holds no per-image state; one instance may be used for any
// number of images, sequentially or concurrently.
type Detector struct {
	cfg    *config.Config
	logger *log.Logger
}

// NewDetector creates a detector. cfg must already be validated. A nil
// logger discards progress messages.
func NewDetector(cfg *config.Config, logger *log.Logger) *Detector {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Detector{cfg: cfg, logger: logger}
}

// Config returns the detector's configuration.
func (d *Detector) Config() *config.Config {
	return d.cfg
}

// DetectHoles runs scale, mask, clusters, merge, hook split and selection.
//
// An image with no matching color, or whose blobs are all filtered out,
// produces a Result with empty lists rather than an error.
func (d *Detector) DetectHoles(img image.Image) *Result {
	cfg := d.cfg
	scale := imaging.ImagePixelsPerCM(img, cfg.SheetWidthMM, cfg.SheetHeightMM)
	d.logger.Printf("Pixels per cm: %.3f", scale)

	result := &Result{
		PixelsPerCM:   scale,
		MergeRadiusPx: cfg.MergeRadiusCM * scale,
		HookCutoffPx:  cfg.HookZoneCM * scale,
		Raw:           []Hole{},
		Merged:        []Hole{},
		Lower:         []Hole{},
		Upper:         []Hole{},
		Final:         []Hole{},
	}

	mask := imaging.ColorMask(img, cfg.HoleColorLow, cfg.HoleColorHigh)
	d.logger.Printf("Hole color pixels: %d", mask.Count())
	if cfg.DebugMaskPath != "" {
		if err := imaging.SaveMask(mask, cfg.DebugMaskPath); err != nil {
			d.logger.Printf("debug mask not written: %v", err)
		}
	}

	result.Raw = ExtractClusters(mask, cfg.MinClusterAreaPx, cfg.MaxClusterAreaPx)
	d.logger.Printf("Found %d red clusters", len(result.Raw))
	if len(result.Raw) == 0 {
		return result
	}

	// strategy is validated with the config; an unknown value falls back to seed
	merged, err := Merge(cfg.MergeStrategy, result.Raw, result.MergeRadiusPx)
	if err != nil {
		d.logger.Printf("%v, using %s", err, config.MergeSeed)
		merged = MergeCloseHoles(result.Raw, result.MergeRadiusPx)
	}
	result.Merged = merged
	d.logger.Printf("After merging: %d candidates", len(result.Merged))

	result.Lower, result.Upper = SplitByHookZone(result.Merged, cfg.HookZoneCM, scale)
	d.logger.Printf("Lower: %d, Upper: %d", len(result.Lower), len(result.Upper))

	result.Final = SelectCandidates(result.Lower, result.Upper, cfg.MinShots, cfg.MaxShots, cfg.RerankBeforeTruncate)
	d.logger.Printf("Final: %d holes", len(result.Final))

	return result
}
