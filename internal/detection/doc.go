// Package detection locates bullet holes and the target centre in a photograph.
//
// This package implements the hole-detection chain that turns a color mask
// into a short, ordered list of shot positions, plus an independent locator
// for the printed target's centre.
//
// # Hole Pipeline
//
// Detector.DetectHoles runs the stages in order:
//
//  1. Scale: pixels per centimetre from the image size and sheet size
//  2. Color mask: pixels in the configured hue bands (imaging.ColorMask)
//  3. Clusters: 8-connected components, filtered by pixel area and sorted
//     by size (largest first, stable on label order)
//  4. Merge: fragments within the merge radius collapse into one hole
//  5. Hook zone: holes above the hook-zone cutoff are set aside, since
//     hanging hardware at the top of the sheet often shows up as red blobs
//  6. Selection: lower-zone holes first, upper-zone holes only to reach the
//     minimum shot count, then a cap at the maximum shot count
//
// Every intermediate list is kept in the Result so overlays can show what
// was discarded. An empty Final list means no holes were found; callers
// report that as ErrNoHoles.
//
// # Ordering
//
// Size order is the tie-break for every later choice. All sorts are stable,
// so holes of equal size keep the raster order of their first pixel.
//
// # Merge Behaviour
//
// MergeCloseHoles compares each candidate to the seed hole's original
// centre only, not to the running group centroid. Two fragments can end up
// in the same group while being farther apart than the radius. This
// reproduces the reference output. MergeTransitive is the alternative:
// union-find over all pairs within the radius, with area-weighted centres.
//
// # Target Centre
//
// FindTargetCenter thresholds dark pixels, closes small gaps with an
// elliptical kernel, and returns the centroid of the largest dark region.
// When no region is large enough it returns a fixed fallback position and
// never fails.
//
// # Coordinate System
//
// All positions are sub-pixel image coordinates: origin at top-left, X
// rightward, Y downward.
package detection
