package analysis

import (
	"fmt"
	"image"
	"sort"
	"strings"

	"github.com/ironsheep/target-analyzer-mcp/internal/config"
	"github.com/ironsheep/target-analyzer-mcp/internal/detection"
	"github.com/ironsheep/target-analyzer-mcp/internal/metrics"
)

// Profile is a shooting exercise: how holes are counted and measured.
type Profile interface {
	Name() string
	Description() string
	// DetectHoles runs the detector and returns its full result together
	// with the holes this profile counts. It returns detection.ErrNoHoles
	// when nothing was found.
	DetectHoles(img image.Image) (*detection.Result, []detection.Hole, error)
	// ComputeMetrics measures the counted holes and their offset from the
	// target centre found in img.
	ComputeMetrics(holes []detection.Hole, pixelsPerCM float64, img image.Image) (*metrics.ShootingMetrics, error)
}

// Names of the built-in profiles.
const (
	ProfileGeneric = config.ProfileGeneric
	ProfilePM      = config.ProfilePM
)

const (
	genericDescription = "Counts every selected hole (up to max_shots)"
	pmDescription      = "Pistol exercise: 10 shots when at least 10 holes are found, otherwise 4"
)

type profileFactory struct {
	description string
	build       func(d *detection.Detector) Profile
}

var profiles = map[string]profileFactory{
	ProfileGeneric: {
		description: genericDescription,
		build:       func(d *detection.Detector) Profile { return &genericProfile{base{d}} },
	},
	ProfilePM: {
		description: pmDescription,
		build:       func(d *detection.Detector) Profile { return &pmProfile{base{d}} },
	},
}

// Lookup returns the named profile bound to detector d.
func Lookup(name string, d *detection.Detector) (Profile, error) {
	f, ok := profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return f.build(d), nil
}

// Names lists the built-in profiles in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProfileInfo describes a profile for listings.
type ProfileInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// List describes every built-in profile, sorted by name.
func List() []ProfileInfo {
	out := make([]ProfileInfo, 0, len(profiles))
	for _, name := range Names() {
		out = append(out, ProfileInfo{Name: name, Description: profiles[name].description})
	}
	return out
}

type base struct {
	detector *detection.Detector
}

func (b base) detect(img image.Image) (*detection.Result, error) {
	res := b.detector.DetectHoles(img)
	if res.Empty() {
		return res, detection.ErrNoHoles
	}
	return res, nil
}

func (b base) ComputeMetrics(holes []detection.Hole, pixelsPerCM float64, img image.Image) (*metrics.ShootingMetrics, error) {
	center := detection.FindTargetCenter(img, b.detector.Config())
	m, err := metrics.Compute(detection.Centers(holes), pixelsPerCM, center.Center)
	if err != nil {
		return nil, err
	}
	m.CenterFallback = center.Fallback
	return m, nil
}

type genericProfile struct{ base }

func (p *genericProfile) Name() string        { return ProfileGeneric }
func (p *genericProfile) Description() string { return genericDescription }

func (p *genericProfile) DetectHoles(img image.Image) (*detection.Result, []detection.Hole, error) {
	res, err := p.detect(img)
	if err != nil {
		return res, nil, err
	}
	return res, res.Final, nil
}

type pmProfile struct{ base }

func (p *pmProfile) Name() string        { return ProfilePM }
func (p *pmProfile) Description() string { return pmDescription }

func (p *pmProfile) DetectHoles(img image.Image) (*detection.Result, []detection.Hole, error) {
	res, err := p.detect(img)
	if err != nil {
		return res, nil, err
	}
	return res, res.Final[:pmShotCount(len(res.Final))], nil
}

// pmShotCount is 10 when at least 10 holes were found, else 4, never more
// than found.
func pmShotCount(found int) int {
	n := 4
	if found >= 10 {
		n = 10
	}
	return min(n, found)
}
