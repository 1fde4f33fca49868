package detection

// SplitByHookZone separates holes near the top edge from the rest.
//
// The cutoff is hookZoneCM*pixelsPerCM pixels from the top. A hole whose
// centre Y is strictly less than the cutoff goes to upper, otherwise to
// lower. Both lists keep the input order.
func SplitByHookZone(holes []Hole, hookZoneCM, pixelsPerCM float64) (lower, upper []Hole) {
	cutoff := hookZoneCM * pixelsPerCM
	lower = make([]Hole, 0, len(holes))
	upper = make([]Hole, 0)

	for _, h := range holes {
		if h.Center.Y < cutoff {
			upper = append(upper, h)
		} else {
			lower = append(lower, h)
		}
	}

	return lower, upper
}

// SelectCandidates builds the final hole list from the two zones.
//
// All lower-zone holes are taken first. If there are fewer than minShots,
// upper-zone holes are appended in their existing order until minShots is
// reached or the upper zone runs out. The list is then cut to maxShots.
//
// With rerank false the cut keeps the first maxShots in lower-then-upper
// order, which always favours lower-zone holes over larger upper-zone ones.
// With rerank true the combined list is stable-sorted by PixelCount first.
func SelectCandidates(lower, upper []Hole, minShots, maxShots int, rerank bool) []Hole {
	final := make([]Hole, 0, len(lower)+minShots)
	final = append(final, lower...)

	for i := 0; i < len(upper) && len(final) < minShots; i++ {
		final = append(final, upper[i])
	}

	if rerank {
		sortByPixelCount(final)
	}
	if maxShots >= 0 && len(final) > maxShots {
		final = final[:maxShots]
	}

	return final
}
