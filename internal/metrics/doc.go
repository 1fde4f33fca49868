// Package metrics computes shot-group statistics from hole positions.
//
// The statistical point of impact (STP) is the mean of the counted holes.
// Exactly four holes use an incremental construction (closest pair, then the
// nearest third, then the last) whose intermediate points are exposed for
// overlays; the result is the same mean.
//
// Precision is the mean distance from the STP and group radius the maximum.
// Physical values are pixels divided by pixels per centimetre, rounded to two
// decimals half away from zero.
package metrics
