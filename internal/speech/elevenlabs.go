package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const elevenLabsBaseURL = "https://api.elevenlabs.io"

// ElevenLabs synthesizes speech through the ElevenLabs API and writes the
// returned audio to a directory the playback device watches.
type ElevenLabs struct {
	BaseURL    string
	VoiceID    string
	OutDir     string
	httpClient *http.Client
}

// NewElevenLabs creates an ElevenLabs speaker.
func NewElevenLabs(voiceID, outDir string) *ElevenLabs {
	return &ElevenLabs{
		BaseURL: elevenLabsBaseURL,
		VoiceID: voiceID,
		OutDir:  outDir,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Speak synthesizes text and saves the audio as an mp3 in OutDir.
func (e *ElevenLabs) Speak(ctx context.Context, text string) error {
	apiKey := os.Getenv("ELEVENLABS_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("ELEVENLABS_API_KEY environment variable not set")
	}

	requestBody := map[string]any{
		"text":     text,
		"model_id": "eleven_turbo_v2",
	}
	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return fmt.Errorf("failed to marshal TTS request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", e.BaseURL, e.VoiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create TTS request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call ElevenLabs API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("elevenLabs API returned status %d: %s", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read audio response: %w", err)
	}

	if err := os.MkdirAll(e.OutDir, 0755); err != nil {
		return fmt.Errorf("failed to create audio directory: %w", err)
	}
	path := filepath.Join(e.OutDir, fmt.Sprintf("utterance_%d.mp3", time.Now().UnixNano()))
	if err := os.WriteFile(path, audio, 0644); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}

	slog.Info("synthesized speech", "path", path, "bytes", len(audio))
	return nil
}
