package domain

import (
	"strings"

	"github.com/google/uuid"
)

// ImageKind identifies one of the four accepted image formats.
type ImageKind string

const (
	KindJPEG ImageKind = "jpeg"
	KindPNG  ImageKind = "png"
	KindWEBP ImageKind = "webp"
	KindGIF  ImageKind = "gif"
)

// KindFromContentType maps a MIME type onto an ImageKind.
// Anything outside the four accepted types reports ok=false; callers
// drop those files without raising an error.
func KindFromContentType(contentType string) (ImageKind, bool) {
	// Strip parameters like "; charset=..."
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/jpeg", "image/jpg":
		return KindJPEG, true
	case "image/png":
		return KindPNG, true
	case "image/webp":
		return KindWEBP, true
	case "image/gif":
		return KindGIF, true
	default:
		return "", false
	}
}

// EncoderTag returns the image-type tag the PDF encoder expects.
// WEBP has no tag because the pipeline transcodes WEBP to PNG before
// handing it to the encoder.
func (k ImageKind) EncoderTag() string {
	switch k {
	case KindJPEG:
		return "JPEG"
	case KindPNG, KindWEBP:
		return "PNG"
	case KindGIF:
		return "GIF"
	default:
		return ""
	}
}

// ContentType returns the canonical MIME type for the kind.
func (k ImageKind) ContentType() string {
	return "image/" + string(k)
}

// ImageEntry is one accepted image held in display/page order. The entry
// sequence determines PDF page order 1:1; adding the same file twice yields
// two entries and two pages.
type ImageEntry struct {
	ID            uuid.UUID
	DisplayName   string
	Kind          ImageKind
	Data          []byte
	SizeBytes     int64
	PreviewHandle uuid.UUID
}

// Upload is a candidate file handed to Add before filtering.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// EntryInfo is the client-facing projection of an ImageEntry; the raw bytes
// stay server-side.
type EntryInfo struct {
	Index         int       `json:"index"`
	Name          string    `json:"name"`
	Kind          ImageKind `json:"kind"`
	SizeBytes     int64     `json:"size_bytes"`
	PreviewHandle string    `json:"preview_handle"`
}
