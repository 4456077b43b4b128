// Package vision sends shelf photos to a vision-capable LLM and parses the
// phase-typed interpretations the phase controller acts on.
package vision

import (
	"context"
	"fmt"
	"os"

	"github.com/julie-labs/shelf-assistant/internal/catalog"
	"github.com/julie-labs/shelf-assistant/internal/guidance"
	"github.com/julie-labs/shelf-assistant/internal/photo"
)

// Image is a photo ready to send to a vision model.
type Image struct {
	Data []byte
	MIME string
}

// LoadImage reads a photo from disk.
func LoadImage(path string) (Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("failed to read image: %w", err)
	}
	return Image{Data: data, MIME: photo.MIMEType(path)}, nil
}

// Framing is the positioning-phase verdict: whether the full shelf is in
// frame, and if not, how to adjust.
type Framing struct {
	Framed bool   `json:"framed"`
	Advice string `json:"advice"`
}

// Analyzer interprets shelf photos. Each method matches one phase of the
// guidance session; any conforming implementation may be substituted.
type Analyzer interface {
	// AnalyzeFraming checks whether the whole shelf is visible.
	AnalyzeFraming(ctx context.Context, img Image) (Framing, error)
	// IdentifyProducts lists every product visible on the shelf.
	IdentifyProducts(ctx context.Context, img Image) (catalog.Catalog, error)
	// LocateHand reports where the target item is relative to the user's hand.
	LocateHand(ctx context.Context, img Image, target catalog.Record) (guidance.Offset, error)
}

// UnavailableError is a transport failure or timeout talking to the vision
// capability. The caller may retry with backoff.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("vision capability unavailable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// ParseError means the model answered but the answer cannot be interpreted.
// Retrying the same image will not fix it; the session should request a fresh
// photo instead.
type ParseError struct {
	Phase  string
	Output string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unusable %s response from vision model: %v", e.Phase, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
