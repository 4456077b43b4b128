// Package speech voices feedback to the user.
package speech

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// Speaker converts a phrase to audible feedback. Any conforming
// implementation may be substituted.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Console prints utterances instead of synthesizing audio. Used when no TTS
// provider is configured and as a development fallback.
type Console struct{}

// Speak writes the utterance to stdout.
func (Console) Speak(ctx context.Context, text string) error {
	if _, err := fmt.Fprintln(os.Stdout, "[voice] "+text); err != nil {
		return fmt.Errorf("failed to print utterance: %w", err)
	}
	slog.Debug("spoke", "text", text)
	return nil
}
