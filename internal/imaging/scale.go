package imaging

import "image"

// PixelsPerCM estimates image resolution from the physical sheet size.
//
// The horizontal and vertical densities (px/mm) are averaged to absorb
// slightly non-uniform framing, then multiplied by 10 to get px/cm. Sheet
// dimensions must be positive; config.Validate guarantees that for loaded
// configurations.
func PixelsPerCM(widthPx, heightPx int, sheetWidthMM, sheetHeightMM float64) float64 {
	pxPerMMWidth := float64(widthPx) / sheetWidthMM
	pxPerMMHeight := float64(heightPx) / sheetHeightMM
	return (pxPerMMWidth + pxPerMMHeight) / 2.0 * 10.0
}

// ImagePixelsPerCM is PixelsPerCM applied to an image's bounds.
func ImagePixelsPerCM(img image.Image, sheetWidthMM, sheetHeightMM float64) float64 {
	b := img.Bounds()
	return PixelsPerCM(b.Dx(), b.Dy(), sheetWidthMM, sheetHeightMM)
}
