// Package pdf turns an ordered entry collection into a single document.
//
// The binary PDF structure is owned entirely by the gofpdf encoder; this
// package decodes image dimensions, computes placements, and drives the
// encoder one page per entry.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/phpdave11/gofpdf"
	"golang.org/x/image/webp"

	"github.com/RavinduThilinaka/pdf-conventor/internal/domain"
	"github.com/RavinduThilinaka/pdf-conventor/internal/layout"
)

// Generator assembles PDF documents. The zero value is not usable; use New.
type Generator struct {
	clock clockwork.Clock

	// finalizePause holds the finished document briefly so progress UIs can
	// settle at 100% before the download starts.
	// Zero means no pause.
	finalizePause time.Duration
}

func New(clock clockwork.Clock, finalizePause time.Duration) *Generator {
	return &Generator{clock: clock, finalizePause: finalizePause}
}

func orientationStr(o domain.Orientation) string {
	if o == domain.Landscape {
		return "L"
	}
	return "P"
}

// Generate converts entries, in order, into one document with one image per
// page. It returns domain.ErrNoImages on an empty collection and aborts the
// whole run on the first decode failure; no partial document is ever
// returned. onProgress, if non-nil, receives the rounded percentage after
// each completed page.
func (g *Generator) Generate(ctx context.Context, entries []domain.ImageEntry, cfg domain.LayoutConfig, onProgress domain.ProgressFunc) (*domain.PDFResult, error) {
	if len(entries) == 0 {
		return nil, domain.ErrNoImages
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}

	doc := gofpdf.New(orientationStr(cfg.Orientation), "mm", string(cfg.PageSize), "")
	doc.SetTitle(cfg.BaseName, true)
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)

	total := len(entries)
	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, tag, pxW, pxH, err := decodeEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrDecode, err)
		}

		place, err := layout.Place(pxW, pxH, cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", domain.ErrDecode, entry.DisplayName, err)
		}

		doc.AddPage()
		name := fmt.Sprintf("entry-%d", i)
		opts := gofpdf.ImageOptions{ImageType: tag}
		doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
		doc.ImageOptions(name, place.X, place.Y, place.W, place.H, false, opts, 0, "")
		if doc.Err() {
			return nil, fmt.Errorf("%w: %v", domain.ErrDecode, doc.Error())
		}

		if onProgress != nil {
			onProgress(int(math.Round(float64(i+1) / float64(total) * 100)))
		}
	}

	if g.finalizePause > 0 {
		g.clock.Sleep(g.finalizePause)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}

	return &domain.PDFResult{
		Data:     buf.Bytes(),
		Filename: cfg.Filename(),
		Pages:    total,
	}, nil
}

// decodeEntry yields the bytes, encoder tag, and pixel dimensions for one
// entry. WEBP is transcoded to PNG because the encoder cannot read it; the
// other kinds pass through untouched.
func decodeEntry(entry domain.ImageEntry) (data []byte, tag string, pxW, pxH int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(entry.Data))
	if err != nil {
		return nil, "", 0, 0, fmt.Errorf("%q: %w", entry.DisplayName, err)
	}

	if entry.Kind == domain.KindWEBP {
		img, err := webp.Decode(bytes.NewReader(entry.Data))
		if err != nil {
			return nil, "", 0, 0, fmt.Errorf("%q: %w", entry.DisplayName, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", 0, 0, fmt.Errorf("%q: transcode: %w", entry.DisplayName, err)
		}
		return buf.Bytes(), domain.KindWEBP.EncoderTag(), cfg.Width, cfg.Height, nil
	}

	return entry.Data, entry.Kind.EncoderTag(), cfg.Width, cfg.Height, nil
}
