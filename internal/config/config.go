// Package config holds the tunable parameters of the target analysis pipeline.
//
// A Config is an immutable value once validated: every stage receives it by
// pointer and reads from it, nothing writes back. Default returns the
// documented baseline; Load overlays a YAML file on top of it. Both paths
// end in Validate so a misconfigured sheet size or inverted area bound is
// rejected before any image is touched.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"os"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// Merge strategies accepted by MergeStrategy.
const (
	MergeSeed       = "seed"
	MergeTransitive = "transitive"
)

// Analysis profiles accepted by Profile.
const (
	ProfileGeneric = "generic"
	ProfilePM      = "pm"
)

// Profiles lists every accepted profile name in alphabetical order.
var Profiles = []string{ProfileGeneric, ProfilePM}

// Environment variables read by FromEnv.
const (
	EnvConfigPath = "TARGET_MCP_CONFIG"
	EnvLogLevel   = "TARGET_MCP_LOG_LEVEL"
)

// HSVRange is an inclusive color band.
//
// Hue is in degrees (0-360), saturation and value are fractions (0-1), the
// same units go-colorful reports.
type HSVRange struct {
	HueMin float64 `yaml:"hue_min" json:"hue_min"`
	HueMax float64 `yaml:"hue_max" json:"hue_max"`
	SatMin float64 `yaml:"sat_min" json:"sat_min"`
	SatMax float64 `yaml:"sat_max" json:"sat_max"`
	ValMin float64 `yaml:"val_min" json:"val_min"`
	ValMax float64 `yaml:"val_max" json:"val_max"`
}

// Contains reports whether the given hue/saturation/value lies in the band.
func (r HSVRange) Contains(h, s, v float64) bool {
	return h >= r.HueMin && h <= r.HueMax &&
		s >= r.SatMin && s <= r.SatMax &&
		v >= r.ValMin && v <= r.ValMax
}

// OverlayColors are the hex colors ("#rrggbb" or "#rgb") of the annotated
// result image.
type OverlayColors struct {
	// Detection rings every merged detection, counted or not.
	Detection string `yaml:"detection" json:"detection"`
	// Center marks the target centre and labels the offset line.
	Center string `yaml:"center" json:"center"`
	// Group draws the group circle and the STP marker.
	Group string `yaml:"group" json:"group"`
	// Construction draws the four-shot STP construction lines.
	Construction string `yaml:"construction" json:"construction"`
}

// ParseColor parses a hex color as accepted in OverlayColors.
func ParseColor(hex string) (color.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	return c, nil
}

// Config is the full configuration surface of the analyzer.
type Config struct {
	// Cluster area bounds in pixels, inclusive.
	MinClusterAreaPx int `yaml:"min_cluster_area_px" json:"min_cluster_area_px"`
	MaxClusterAreaPx int `yaml:"max_cluster_area_px" json:"max_cluster_area_px"`

	MergeRadiusCM float64 `yaml:"merge_radius_cm" json:"merge_radius_cm"`
	// MergeStrategy is "seed" (greedy, distance to the seed hole only) or
	// "transitive" (union-find over the merge-radius graph).
	MergeStrategy string `yaml:"merge_strategy" json:"merge_strategy"`

	HookZoneCM float64 `yaml:"hook_zone_cm" json:"hook_zone_cm"`
	MinShots   int     `yaml:"min_shots" json:"min_shots"`
	MaxShots   int     `yaml:"max_shots" json:"max_shots"`
	// RerankBeforeTruncate sorts the zone-concatenated candidates by pixel
	// count before cutting them down to MaxShots.
	RerankBeforeTruncate bool `yaml:"rerank_before_truncate" json:"rerank_before_truncate"`

	SheetWidthMM  float64 `yaml:"physical_sheet_width_mm" json:"physical_sheet_width_mm"`
	SheetHeightMM float64 `yaml:"physical_sheet_height_mm" json:"physical_sheet_height_mm"`

	DarkThreshold       int     `yaml:"dark_threshold_luminance" json:"dark_threshold_luminance"`
	MinCenterAreaPx     float64 `yaml:"min_center_contour_area_px2" json:"min_center_contour_area_px2"`
	CloseKernelPx       int     `yaml:"close_kernel_px" json:"close_kernel_px"`
	CenterFallbackRatio float64 `yaml:"center_fallback_ratio" json:"center_fallback_ratio"`

	HoleColorLow  HSVRange `yaml:"hole_color_low" json:"hole_color_low"`
	HoleColorHigh HSVRange `yaml:"hole_color_high" json:"hole_color_high"`

	Overlay OverlayColors `yaml:"overlay_colors" json:"overlay_colors"`

	// Profile names the default analysis profile, one of Profiles.
	Profile string `yaml:"profile" json:"profile"`
	// DebugMaskPath, when set, receives a PNG of the color mask.
	DebugMaskPath string `yaml:"debug_mask_path" json:"debug_mask_path,omitempty"`
	Debug         bool   `yaml:"debug" json:"debug"`
}

// Default returns the baseline configuration for an A3 sheet with red
// hole markers.
func Default() *Config {
	return &Config{
		MinClusterAreaPx:    15,
		MaxClusterAreaPx:    5000,
		MergeRadiusCM:       1.5,
		MergeStrategy:       MergeSeed,
		HookZoneCM:          7.0,
		MinShots:            4,
		MaxShots:            10,
		SheetWidthMM:        300,
		SheetHeightMM:       420,
		DarkThreshold:       80,
		MinCenterAreaPx:     1000,
		CloseKernelPx:       9,
		CenterFallbackRatio: 0.666,
		// OpenCV (0,100,50)-(10,255,255) and (170,100,50)-(180,255,255)
		HoleColorLow: HSVRange{
			HueMin: 0, HueMax: 20,
			SatMin: 100.0 / 255, SatMax: 1,
			ValMin: 50.0 / 255, ValMax: 1,
		},
		HoleColorHigh: HSVRange{
			HueMin: 340, HueMax: 360,
			SatMin: 100.0 / 255, SatMax: 1,
			ValMin: 50.0 / 255, ValMax: 1,
		},
		Overlay: OverlayColors{
			Detection:    "#b4b4b4",
			Center:       "#000000",
			Group:        "#ff0000",
			Construction: "#00ffff",
		},
		Profile: ProfileGeneric,
	}
}

// Clone returns a copy that can be modified without affecting c.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Load reads a YAML file and overlays it on Default. Unknown keys are an
// error. The result is validated before it is returned.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes over Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv loads the file named by TARGET_MCP_CONFIG, or Default when the
// variable is unset, and turns on Debug when TARGET_MCP_LOG_LEVEL=debug.
func FromEnv() (*Config, error) {
	cfg := Default()
	if path := os.Getenv(EnvConfigPath); path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if os.Getenv(EnvLogLevel) == "debug" {
		cfg.Debug = true
	}
	return cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.SheetWidthMM <= 0 || c.SheetHeightMM <= 0 {
		fail("sheet dimensions must be positive, got %gx%g mm", c.SheetWidthMM, c.SheetHeightMM)
	}
	if c.MinClusterAreaPx <= 0 {
		fail("min_cluster_area_px must be positive, got %d", c.MinClusterAreaPx)
	}
	if c.MaxClusterAreaPx < c.MinClusterAreaPx {
		fail("max_cluster_area_px (%d) is below min_cluster_area_px (%d)", c.MaxClusterAreaPx, c.MinClusterAreaPx)
	}
	if c.MergeRadiusCM <= 0 {
		fail("merge_radius_cm must be positive, got %g", c.MergeRadiusCM)
	}
	if c.MergeStrategy != MergeSeed && c.MergeStrategy != MergeTransitive {
		fail("unknown merge_strategy %q (want %q or %q)", c.MergeStrategy, MergeSeed, MergeTransitive)
	}
	if c.HookZoneCM < 0 {
		fail("hook_zone_cm must not be negative, got %g", c.HookZoneCM)
	}
	if c.MaxShots < 1 {
		fail("max_shots must be at least 1, got %d", c.MaxShots)
	}
	if c.MinShots < 0 || c.MinShots > c.MaxShots {
		fail("min_shots must be in [0, max_shots], got %d", c.MinShots)
	}
	if c.DarkThreshold < 0 || c.DarkThreshold > 255 {
		fail("dark_threshold_luminance must be in [0, 255], got %d", c.DarkThreshold)
	}
	if c.MinCenterAreaPx < 0 {
		fail("min_center_contour_area_px2 must not be negative, got %g", c.MinCenterAreaPx)
	}
	if c.CloseKernelPx < 1 || c.CloseKernelPx%2 == 0 {
		fail("close_kernel_px must be a positive odd number, got %d", c.CloseKernelPx)
	}
	if c.CenterFallbackRatio < 0 || c.CenterFallbackRatio > 1 {
		fail("center_fallback_ratio must be in [0, 1], got %g", c.CenterFallbackRatio)
	}
	for _, r := range []struct {
		name string
		hsv  HSVRange
	}{
		{"hole_color_low", c.HoleColorLow},
		{"hole_color_high", c.HoleColorHigh},
	} {
		if err := validateRange(r.hsv); err != nil {
			fail("%s: %v", r.name, err)
		}
	}
	for _, oc := range []struct{ name, hex string }{
		{"detection", c.Overlay.Detection},
		{"center", c.Overlay.Center},
		{"group", c.Overlay.Group},
		{"construction", c.Overlay.Construction},
	} {
		if _, err := ParseColor(oc.hex); err != nil {
			fail("overlay_colors.%s: %v", oc.name, err)
		}
	}
	if !slices.Contains(Profiles, c.Profile) {
		fail("unknown profile %q (available: %v)", c.Profile, Profiles)
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func validateRange(r HSVRange) error {
	if r.HueMin < 0 || r.HueMax > 360 || r.HueMin > r.HueMax {
		return fmt.Errorf("hue range [%g, %g] outside [0, 360] or inverted", r.HueMin, r.HueMax)
	}
	if r.SatMin < 0 || r.SatMax > 1 || r.SatMin > r.SatMax {
		return fmt.Errorf("saturation range [%g, %g] outside [0, 1] or inverted", r.SatMin, r.SatMax)
	}
	if r.ValMin < 0 || r.ValMax > 1 || r.ValMin > r.ValMax {
		return fmt.Errorf("value range [%g, %g] outside [0, 1] or inverted", r.ValMin, r.ValMax)
	}
	return nil
}
