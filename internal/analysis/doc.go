// Package analysis ties hole detection, target centre and group metrics
// together for one image.
//
// A Profile decides which detected holes are counted. The generic profile
// counts every selected hole; the pm profile counts ten holes when at least
// ten were found and four otherwise. Analyze runs a profile and returns a
// Report, and RenderOverlay draws a report on a copy of the image.
package analysis
