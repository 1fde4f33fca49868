// Package imaging provides the pixel-level building blocks of target analysis.
//
// This package turns a decoded photograph into the primitive structures the
// detection stages consume: a binary color mask, a pixels-per-centimetre
// scale, and a drawing canvas for result overlays. It also owns image
// loading, including the on-disk cache used by the MCP server.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with origin at the top-left corner:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel, increasing downward)
//
// Masks are indexed relative to the source image's Bounds().Min; Mask.Origin
// records that offset so callers can map back to image coordinates.
//
// # Color Matching
//
// ColorMask converts each pixel to HSV with go-colorful and tests it against
// two inclusive bands. Two bands are needed because red straddles the hue
// origin: one band sits just above 0°, the other just below 360°.
//
// # Scale
//
// PixelsPerCM averages the horizontal and vertical pixel density of a
// photographed sheet of known physical size. It assumes the sheet fills the
// frame.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Mask, Canvas and the free functions
// are not synchronized; each call owns the values it creates.
package imaging
