package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/julie-labs/shelf-assistant/internal/config"
	"github.com/julie-labs/shelf-assistant/internal/retry"
	"github.com/julie-labs/shelf-assistant/internal/session"
	"github.com/julie-labs/shelf-assistant/internal/speech"
	"github.com/julie-labs/shelf-assistant/internal/store"
	"github.com/julie-labs/shelf-assistant/internal/vision"
	"github.com/julie-labs/shelf-assistant/internal/watcher"
)

func newRunCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the shelf assistant",
		Long: `Starts the assistant loop: watches the photo directory, analyzes incoming
photos with Gemini, publishes identified products to the backend, and speaks
guidance until the user's hand reaches the chosen item.`,
		Example: `  # Start with defaults (~/Documents/ShelfPhotos, backend on localhost:8000)
  shelf-assistant run

  # Start with a config file
  shelf-assistant run --config config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if vision.APIKey() == "" {
				return errors.New("GEMINI_API_KEY environment variable not set")
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

			if err := os.MkdirAll(cfg.PhotosDir, 0755); err != nil {
				return fmt.Errorf("failed to create photo directory: %w", err)
			}

			analyzer := vision.NewGemini(cfg.Vision.Model, cfg.Vision.Timeout.Std())
			backend := store.NewClient(cfg.APIBaseURL, cfg.StoreTimeout.Std())
			speaker, err := newSpeaker(cfg.Speech)
			if err != nil {
				return err
			}

			w := watcher.New(cfg.PhotosDir, cfg.QueueCapacity, cfg.SettleDelay.Std())
			controller := session.NewController(analyzer, backend, speaker, session.Config{
				PollInterval:            cfg.PollInterval.Std(),
				ReachedToleranceDegrees: cfg.Guidance.ReachedToleranceDegrees,
				ReachedConsecutive:      cfg.Guidance.ReachedConsecutive,
				StoreFailureCeiling:     cfg.StoreFailureCeiling,
				VisionRetry: retry.Policy{
					MaxAttempts: cfg.Vision.MaxAttempts,
					BaseDelay:   cfg.Vision.RetryBaseDelay.Std(),
					Jitter:      true,
				},
				StoreRetry: retry.Policy{
					MaxAttempts: cfg.StoreMaxAttempts,
					BaseDelay:   cfg.StoreRetryBaseDelay.Std(),
					Jitter:      true,
				},
			})

			ctx := cmd.Context()

			// The watcher restarts with backoff if the directory becomes
			// unobservable, e.g. a network mount dropping.
			watchErr := make(chan error, 1)
			go func() {
				policy := retry.Policy{MaxAttempts: 5, BaseDelay: time.Second, MaxDelay: 30 * time.Second, Jitter: true}
				watchErr <- policy.Do(ctx, func() error {
					return w.Run(ctx)
				})
			}()

			ctrlErr := make(chan error, 1)
			go func() {
				ctrlErr <- controller.Run(ctx, w.Events())
			}()

			slog.Info("shelf assistant started", "photos", cfg.PhotosDir, "backend", cfg.APIBaseURL, "model", cfg.Vision.Model)

			select {
			case <-ctx.Done():
				slog.Info("shutting down")
				return nil
			case err := <-watchErr:
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return fmt.Errorf("photo watcher stopped: %w", err)
			case err := <-ctrlErr:
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")

	return cmd
}

func newSpeaker(cfg config.Speech) (speech.Speaker, error) {
	switch cfg.Provider {
	case "", "console":
		return speech.Console{}, nil
	case "elevenlabs":
		if cfg.VoiceID == "" {
			return nil, errors.New("speech.voice_id is required for the elevenlabs provider")
		}
		return speech.NewElevenLabs(cfg.VoiceID, cfg.AudioDir), nil
	default:
		return nil, fmt.Errorf("unknown speech provider %q", cfg.Provider)
	}
}
