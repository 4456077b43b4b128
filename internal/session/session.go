// Package session drives the multi-phase guidance state machine: positioning
// the camera, identifying shelf products, waiting for the user's choice, and
// guiding their hand to the selected item.
package session

import (
	"context"
	"time"

	"github.com/julie-labs/shelf-assistant/internal/catalog"
	"github.com/julie-labs/shelf-assistant/internal/guidance"
	"github.com/julie-labs/shelf-assistant/internal/retry"
	"github.com/julie-labs/shelf-assistant/internal/store"
)

// Phase is the current stage of a guidance session.
type Phase int

const (
	// PhasePositioning: guiding the camera until the full shelf is framed.
	PhasePositioning Phase = iota
	// PhaseIdentifying: waiting for the identification photo.
	PhaseIdentifying
	// PhaseAwaitingSelection: catalog published, polling for the user's choice.
	PhaseAwaitingSelection
	// PhaseGuiding: steering the user's hand to the selected item.
	PhaseGuiding
	// PhaseCompleted: item reached. Transient; the session immediately
	// re-initializes to PhasePositioning for the next item.
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhasePositioning:
		return "positioning"
	case PhaseIdentifying:
		return "identifying"
	case PhaseAwaitingSelection:
		return "awaiting-selection"
	case PhaseGuiding:
		return "guiding"
	case PhaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// State is the mutable session state, owned exclusively by the Controller
// and mutated only through phase transitions.
type State struct {
	Phase      Phase
	Catalog    catalog.Catalog
	Selected   *catalog.Record
	ChoiceID   string
	LastOffset *guidance.Offset

	nearStreak    int
	storeFailures int
}

// Store is the slice of the backend client the controller needs.
// *store.Client satisfies it; tests substitute fakes.
type Store interface {
	PublishCatalog(ctx context.Context, cat catalog.Catalog) (string, error)
	LatestChoice(ctx context.Context) (*store.Choice, error)
	MarkProcessed(ctx context.Context, id string) error
}

// Config holds the controller's tunables. Zero values fall back to defaults.
type Config struct {
	// PollInterval is the choice-poll cadence while awaiting selection.
	PollInterval time.Duration
	// ReachedToleranceDegrees is how far off straight-ahead still counts
	// as on target.
	ReachedToleranceDegrees float64
	// ReachedConsecutive is how many consecutive on-target cycles complete
	// the session.
	ReachedConsecutive int
	// StoreFailureCeiling is how many consecutive backend failures are
	// tolerated before the session resets.
	StoreFailureCeiling int
	// VisionRetry wraps every vision call.
	VisionRetry retry.Policy
	// StoreRetry wraps catalog publishes and choice acknowledgments.
	StoreRetry retry.Policy
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = 2 * time.Second
	}
	if c.ReachedToleranceDegrees <= 0 {
		c.ReachedToleranceDegrees = 30
	}
	if c.ReachedConsecutive <= 0 {
		c.ReachedConsecutive = 2
	}
	if c.StoreFailureCeiling <= 0 {
		c.StoreFailureCeiling = 5
	}
	if c.VisionRetry.MaxAttempts <= 0 {
		c.VisionRetry = retry.Policy{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond, Jitter: true}
	}
	if c.StoreRetry.MaxAttempts <= 0 {
		c.StoreRetry = retry.Policy{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond, Jitter: true}
	}
	return c
}
