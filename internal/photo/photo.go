// Package photo classifies captured shelf photos by their filename convention.
//
// The capture device embeds the intent of every shot in the filename:
// "_low" marks a positioning or hand-tracking photo, "_high" marks a full
// shelf identification photo.
package photo

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Flag is the capture intent embedded in a photo filename.
type Flag string

const (
	// FlagPositioning marks camera-positioning and hand-tracking photos.
	FlagPositioning Flag = "low"
	// FlagIdentification marks full-shelf identification photos.
	FlagIdentification Flag = "high"
)

// Event is a single photo arrival. Events are immutable and consumed exactly
// once by the phase controller; they are never persisted.
type Event struct {
	ID         uuid.UUID
	Path       string
	Flag       Flag
	ObservedAt time.Time
}

// ClassificationError reports a filename that does not follow the capture
// naming convention. Events with such names are dropped, not fatal.
type ClassificationError struct {
	Filename string
	Reason   string
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("cannot classify %q: %s", e.Filename, e.Reason)
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Classify parses a photo path into an Event. The flag decision is
// deterministic: a name must contain exactly one of the "_low." or "_high."
// markers, case-insensitive.
func Classify(path string) (Event, error) {
	name := filepath.Base(path)
	lower := strings.ToLower(name)

	if !imageExtensions[filepath.Ext(lower)] {
		return Event{}, &ClassificationError{Filename: name, Reason: "not an image file"}
	}

	low := strings.Contains(lower, "_low.")
	high := strings.Contains(lower, "_high.")

	var flag Flag
	switch {
	case low && high:
		return Event{}, &ClassificationError{Filename: name, Reason: "both intent markers present"}
	case low:
		flag = FlagPositioning
	case high:
		flag = FlagIdentification
	default:
		return Event{}, &ClassificationError{Filename: name, Reason: "no intent marker"}
	}

	return Event{
		ID:         uuid.New(),
		Path:       path,
		Flag:       flag,
		ObservedAt: time.Now(),
	}, nil
}

// MIMEType returns the MIME type for an image filename.
func MIMEType(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".png") {
		return "image/png"
	}
	return "image/jpeg"
}
