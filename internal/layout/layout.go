// Package layout computes where an image lands on a page.
//
// All dimensions are millimeters. Pixel sizes convert at the fixed 96 DPI
// assumption browsers use for CSS pixels.
package layout

import (
	"fmt"

	"github.com/RavinduThilinaka/pdf-conventor/internal/domain"
)

const (
	pixelsPerInch = 96
	mmPerInch     = 25.4
)

// PxToMm converts a pixel length to millimeters at 96 DPI.
func PxToMm(px int) float64 {
	return float64(px) * mmPerInch / pixelsPerInch
}

// pageDims holds portrait reference dimensions per page size.
var pageDims = map[domain.PageSize][2]float64{
	domain.PageA4:     {210, 297},
	domain.PageLetter: {215.9, 279.4},
	domain.PageLegal:  {215.9, 355.6},
	domain.PageA3:     {297, 420},
}

// PageDims returns the page width and height in mm, orientation applied.
func PageDims(size domain.PageSize, orientation domain.Orientation) (w, h float64) {
	d, ok := pageDims[size]
	if !ok {
		d = pageDims[domain.PageA4]
	}
	w, h = d[0], d[1]
	if orientation == domain.Landscape {
		w, h = h, w
	}
	return w, h
}

// Placement is the rectangle an image occupies on its page, in mm.
type Placement struct {
	X, Y, W, H float64
}

// Place computes the placement of an image with the given pixel dimensions
// under the layout configuration. The image is always centered on the page;
// with the fill policy the result may exceed the printable area and is
// clipped by the page edge at render time.
func Place(pxW, pxH int, cfg domain.LayoutConfig) (Placement, error) {
	if pxW <= 0 || pxH <= 0 {
		return Placement{}, fmt.Errorf("invalid image dimensions %dx%d", pxW, pxH)
	}

	pageW, pageH := PageDims(cfg.PageSize, cfg.Orientation)
	maxW := pageW - 2*cfg.MarginMm
	maxH := pageH - 2*cfg.MarginMm
	if maxW <= 0 || maxH <= 0 {
		return Placement{}, fmt.Errorf("margin %.1fmm leaves no printable area on %s", cfg.MarginMm, cfg.PageSize)
	}

	imgW := PxToMm(pxW)
	imgH := PxToMm(pxH)

	var scale float64
	switch cfg.Policy {
	case domain.PolicyFill:
		scale = max(maxW/imgW, maxH/imgH)
	case domain.PolicyOriginal:
		scale = 1
		if imgW > maxW || imgH > maxH {
			scale = shrinkToFit(imgW, imgH, maxW, maxH)
		}
	default: // fit
		scale = shrinkToFit(imgW, imgH, maxW, maxH)
	}

	w := imgW * scale
	h := imgH * scale
	return Placement{
		X: (pageW - w) / 2,
		Y: (pageH - h) / 2,
		W: w,
		H: h,
	}, nil
}

// shrinkToFit is the fit formula: scale down to the printable area, never up.
func shrinkToFit(imgW, imgH, maxW, maxH float64) float64 {
	return min(maxW/imgW, maxH/imgH, 1)
}
