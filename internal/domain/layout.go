package domain

import "fmt"

// PageSize names one of the supported page formats.
type PageSize string

const (
	PageA4     PageSize = "A4"
	PageLetter PageSize = "Letter"
	PageLegal  PageSize = "Legal"
	PageA3     PageSize = "A3"
)

// Orientation of the output pages.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// SizingPolicy governs how an image is scaled into the printable area.
type SizingPolicy string

const (
	// PolicyFit shrinks (never enlarges) the image to fit the printable
	// area, preserving aspect ratio.
	PolicyFit SizingPolicy = "fit"
	// PolicyFill scales the image to cover the printable area; overflow is
	// clipped by the page edge.
	PolicyFill SizingPolicy = "fill"
	// PolicyOriginal keeps the native size unless it exceeds the printable
	// area, in which case it shrinks like PolicyFit.
	PolicyOriginal SizingPolicy = "original"
)

const (
	MinMarginMm = 0
	MaxMarginMm = 50
)

// LayoutConfig applies uniformly to the whole document at generation time.
type LayoutConfig struct {
	PageSize    PageSize     `json:"page_size"`
	Orientation Orientation  `json:"orientation"`
	Policy      SizingPolicy `json:"sizing_policy"`
	MarginMm    float64      `json:"margin_mm"`
	BaseName    string       `json:"output_name"`
}

// DefaultLayout returns the configuration a fresh workspace starts with.
func DefaultLayout() LayoutConfig {
	return LayoutConfig{
		PageSize:    PageA4,
		Orientation: Portrait,
		Policy:      PolicyFit,
		MarginMm:    10,
		BaseName:    "images",
	}
}

// Validate checks every field against its allowed values.
func (c LayoutConfig) Validate() error {
	switch c.PageSize {
	case PageA4, PageLetter, PageLegal, PageA3:
	default:
		return fmt.Errorf("unknown page size %q", c.PageSize)
	}
	switch c.Orientation {
	case Portrait, Landscape:
	default:
		return fmt.Errorf("unknown orientation %q", c.Orientation)
	}
	switch c.Policy {
	case PolicyFit, PolicyFill, PolicyOriginal:
	default:
		return fmt.Errorf("unknown sizing policy %q", c.Policy)
	}
	if c.MarginMm < MinMarginMm || c.MarginMm > MaxMarginMm {
		return fmt.Errorf("margin %.1fmm outside [%d, %d]", c.MarginMm, MinMarginMm, MaxMarginMm)
	}
	if c.BaseName == "" {
		return fmt.Errorf("output name must not be empty")
	}
	return nil
}

// Filename returns the download name for the generated document.
func (c LayoutConfig) Filename() string {
	return c.BaseName + ".pdf"
}
