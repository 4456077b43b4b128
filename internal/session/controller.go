package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/julie-labs/shelf-assistant/internal/catalog"
	"github.com/julie-labs/shelf-assistant/internal/guidance"
	"github.com/julie-labs/shelf-assistant/internal/photo"
	"github.com/julie-labs/shelf-assistant/internal/retry"
	"github.com/julie-labs/shelf-assistant/internal/speech"
	"github.com/julie-labs/shelf-assistant/internal/store"
	"github.com/julie-labs/shelf-assistant/internal/vision"
)

// Controller is the hub of the assistant. It consumes classified photo
// events and poll ticks one at a time, so at most one vision call is ever
// in flight and session state never races.
type Controller struct {
	analyzer vision.Analyzer
	backend  Store
	speaker  speech.Speaker
	cfg      Config

	state State
}

// NewController wires a controller from its collaborators.
func NewController(analyzer vision.Analyzer, backend Store, speaker speech.Speaker, cfg Config) *Controller {
	return &Controller{
		analyzer: analyzer,
		backend:  backend,
		speaker:  speaker,
		cfg:      cfg.withDefaults(),
		state:    State{Phase: PhasePositioning},
	}
}

// Run processes events until ctx is cancelled or the event channel closes.
// The choice-poll ticker exists only while the session is awaiting a
// selection; leaving that phase stops it before the next select, so no stray
// tick can fire against a stale session.
func (c *Controller) Run(ctx context.Context, events <-chan photo.Event) error {
	var (
		poll  *time.Ticker
		pollC <-chan time.Time
	)
	stopPoll := func() {
		if poll != nil {
			poll.Stop()
			poll = nil
			pollC = nil
		}
	}
	defer stopPoll()

	for {
		if c.state.Phase == PhaseAwaitingSelection && poll == nil {
			poll = time.NewTicker(c.cfg.PollInterval)
			pollC = poll.C
		} else if c.state.Phase != PhaseAwaitingSelection {
			stopPoll()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			c.handlePhoto(ctx, ev)
		case <-pollC:
			c.handlePollTick(ctx)
		}
	}
}

func (c *Controller) handlePhoto(ctx context.Context, ev photo.Event) {
	name := filepath.Base(ev.Path)
	slog.Info("processing photo", "phase", c.state.Phase, "file", name, "flag", ev.Flag)

	img, err := vision.LoadImage(ev.Path)
	if err != nil {
		slog.Warn("failed to load photo", "file", name, "err", err)
		return
	}

	switch ev.Flag {
	case photo.FlagPositioning:
		switch c.state.Phase {
		case PhaseGuiding:
			c.handleTrackingPhoto(ctx, img)
		case PhaseAwaitingSelection:
			slog.Debug("no selection yet, ignoring tracking photo", "file", name)
		default:
			c.handlePositioningPhoto(ctx, img)
		}
	case photo.FlagIdentification:
		if c.state.Phase != PhaseIdentifying {
			slog.Warn("identification photo out of turn, ignoring", "phase", c.state.Phase, "file", name)
			return
		}
		c.handleIdentificationPhoto(ctx, img)
	}
}

// handlePositioningPhoto checks shelf framing. Only a fully framed view
// advances the session; anything else keeps the phase and speaks advice.
func (c *Controller) handlePositioningPhoto(ctx context.Context, img vision.Image) {
	var framing vision.Framing
	err := c.visionCall(ctx, func() error {
		f, err := c.analyzer.AnalyzeFraming(ctx, img)
		if err != nil {
			return err
		}
		framing = f
		return nil
	})
	if err != nil {
		c.reportVisionFailure(ctx, err)
		return
	}

	if !framing.Framed {
		advice := framing.Advice
		if advice == "" {
			advice = "Adjust the camera so the whole shelf is visible."
		}
		c.say(ctx, advice)
		return
	}

	if c.state.Phase == PhasePositioning {
		c.say(ctx, "View looks good. Hold still and take the shelf photo.")
		c.transition(PhaseIdentifying)
	}
}

// handleIdentificationPhoto lists the shelf, publishes the catalog, and only
// then announces the result: the announcement promises the catalog is
// available to the dialogue agent.
func (c *Controller) handleIdentificationPhoto(ctx context.Context, img vision.Image) {
	var cat catalog.Catalog
	err := c.visionCall(ctx, func() error {
		got, err := c.analyzer.IdentifyProducts(ctx, img)
		if err != nil {
			return err
		}
		cat = got
		return nil
	})
	if err != nil {
		c.reportVisionFailure(ctx, err)
		return
	}

	if len(cat) == 0 {
		c.say(ctx, "I couldn't find any products in that photo. Let's line up the shelf again.")
		c.transition(PhasePositioning)
		return
	}

	err = c.cfg.StoreRetry.Do(ctx, func() error {
		_, err := c.backend.PublishCatalog(ctx, cat)
		var re *store.RejectedError
		if errors.As(err, &re) {
			return retry.Permanent(err)
		}
		return err
	})
	if err != nil {
		var re *store.RejectedError
		if errors.As(err, &re) {
			slog.Error("catalog publish rejected", "err", err)
			c.say(ctx, "Something went wrong saving the shelf. Let's start over.")
			c.transition(PhasePositioning)
			return
		}
		slog.Warn("catalog publish failed, keeping phase for a fresh attempt", "err", err)
		c.say(ctx, "I can see the shelf but can't reach the store right now. Please take the shelf photo again in a moment.")
		return
	}

	c.state.Catalog = cat
	c.transition(PhaseAwaitingSelection)
	c.say(ctx, fmt.Sprintf("I found %d products on the shelf. Tell your assistant which one you'd like.", len(cat)))
}

// handlePollTick asks the backend for the latest unprocessed choice and
// matches it against the published catalog.
func (c *Controller) handlePollTick(ctx context.Context) {
	choice, err := c.backend.LatestChoice(ctx)
	if err != nil {
		var re *store.RejectedError
		if errors.As(err, &re) {
			slog.Error("choice poll rejected", "err", err)
			return
		}
		c.state.storeFailures++
		slog.Warn("store unavailable", "consecutive", c.state.storeFailures, "err", err)
		if c.state.storeFailures >= c.cfg.StoreFailureCeiling {
			c.say(ctx, "I can't reach the store right now. Please try again later.")
			c.reset()
		}
		return
	}
	c.state.storeFailures = 0

	if choice == nil {
		return
	}

	rec, ok := c.state.Catalog.FindByName(choice.ItemName)
	if !ok {
		slog.Info("choice not in catalog", "item", choice.ItemName)
		c.say(ctx, fmt.Sprintf("I didn't recognize %s on this shelf. Please repeat your choice.", choice.ItemName))
		// Consume the choice so the next poll doesn't re-match it.
		if err := c.acknowledge(ctx, choice.ID); err != nil {
			slog.Warn("failed to consume unmatched choice", "err", err)
		}
		return
	}

	c.state.Selected = &rec
	c.state.ChoiceID = choice.ID
	c.state.nearStreak = 0
	c.transition(PhaseGuiding)
	c.say(ctx, fmt.Sprintf("Got it, %s. Reach toward the shelf and I'll guide your hand.", rec.Name))
}

// handleTrackingPhoto locates the selected item relative to the hand and
// speaks a clock direction. Enough consecutive on-target cycles complete the
// session.
func (c *Controller) handleTrackingPhoto(ctx context.Context, img vision.Image) {
	var off guidance.Offset
	err := c.visionCall(ctx, func() error {
		o, err := c.analyzer.LocateHand(ctx, img, *c.state.Selected)
		if err != nil {
			return err
		}
		off = o
		return nil
	})
	if err != nil {
		c.reportVisionFailure(ctx, err)
		return
	}

	c.state.LastOffset = &off

	if guidance.Reached(off, c.cfg.ReachedToleranceDegrees) {
		c.state.nearStreak++
		if c.state.nearStreak >= c.cfg.ReachedConsecutive {
			c.complete(ctx)
			return
		}
	} else {
		c.state.nearStreak = 0
	}

	c.say(ctx, guidance.Phrase(off))
}

func (c *Controller) complete(ctx context.Context) {
	c.transition(PhaseCompleted)
	c.say(ctx, "You've got it. The item is right at your hand.")
	if err := c.acknowledge(ctx, c.state.ChoiceID); err != nil {
		slog.Warn("failed to mark choice processed", "err", err)
	}
	slog.Info("session completed", "item", c.state.Selected.Name)
	c.reset()
}

// reset re-initializes the session for the next item.
func (c *Controller) reset() {
	c.state = State{Phase: PhasePositioning}
}

func (c *Controller) transition(next Phase) {
	slog.Info("phase transition", "from", c.state.Phase, "to", next)
	c.state.Phase = next
}

// visionCall wraps a vision operation with the retry policy. Parse failures
// are permanent: the same image will not parse better on a second try.
func (c *Controller) visionCall(ctx context.Context, op func() error) error {
	return c.cfg.VisionRetry.Do(ctx, func() error {
		err := op()
		var pe *vision.ParseError
		if errors.As(err, &pe) {
			return retry.Permanent(err)
		}
		return err
	})
}

// reportVisionFailure speaks the appropriate recovery prompt. The phase never
// changes: the user simply takes a fresh photo.
func (c *Controller) reportVisionFailure(ctx context.Context, err error) {
	var pe *vision.ParseError
	if errors.As(err, &pe) {
		slog.Warn("vision output unusable", "phase", c.state.Phase, "err", err)
		c.say(ctx, "I couldn't make that out. Please take another photo.")
		return
	}
	slog.Error("vision unavailable", "phase", c.state.Phase, "err", err)
	c.say(ctx, "Sorry, I'm having trouble seeing right now. Please take another photo.")
}

// acknowledge marks a choice processed, retrying transient failures.
func (c *Controller) acknowledge(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return c.cfg.StoreRetry.Do(ctx, func() error {
		err := c.backend.MarkProcessed(ctx, id)
		var re *store.RejectedError
		if errors.As(err, &re) {
			return retry.Permanent(err)
		}
		return err
	})
}

func (c *Controller) say(ctx context.Context, text string) {
	if err := c.speaker.Speak(ctx, text); err != nil {
		slog.Warn("failed to speak", "err", err)
	}
}
