package vision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/julie-labs/shelf-assistant/internal/catalog"
	"github.com/julie-labs/shelf-assistant/internal/guidance"
)

// Gemini is an Analyzer backed by Google Gemini vision models.
type Gemini struct {
	model   string
	timeout time.Duration
}

// NewGemini returns a Gemini analyzer. The API key is read from the
// environment on each call so a key rotation does not need a restart.
func NewGemini(model string, timeout time.Duration) *Gemini {
	return &Gemini{model: model, timeout: timeout}
}

// APIKey returns the configured Gemini API key, or empty if unset.
func APIKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("GOOGLE_API_KEY")
}

func (g *Gemini) generate(ctx context.Context, systemPrompt, userPrompt string, img Image) (string, error) {
	apiKey := APIKey()
	if apiKey == "" {
		return "", errors.New("GEMINI_API_KEY environment variable not set")
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", &UnavailableError{Err: fmt.Errorf("failed to create gemini client: %w", err)}
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	model.SetTemperature(0.1)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	format := strings.TrimPrefix(img.MIME, "image/")
	resp, err := model.GenerateContent(ctx, genai.Text(userPrompt), genai.ImageData(format, img.Data))
	if err != nil {
		return "", &UnavailableError{Err: fmt.Errorf("failed to generate content: %w", err)}
	}

	if len(resp.Candidates) == 0 {
		return "", &UnavailableError{Err: errors.New("no candidates returned from Gemini")}
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", &UnavailableError{Err: errors.New("empty content returned from Gemini")}
	}

	if txt, ok := candidate.Content.Parts[0].(genai.Text); ok {
		return string(txt), nil
	}

	return "", &UnavailableError{Err: errors.New("unexpected response format from Gemini")}
}

// AnalyzeFraming checks whether the whole shelf is visible in the frame.
func (g *Gemini) AnalyzeFraming(ctx context.Context, img Image) (Framing, error) {
	raw, err := g.generate(ctx, framingPrompt,
		"Analyze this camera view and report whether the full shelf is visible.", img)
	if err != nil {
		return Framing{}, err
	}
	f, err := parseFraming(raw)
	if err != nil {
		return Framing{}, err
	}
	slog.Debug("framing verdict", "framed", f.Framed, "advice", f.Advice)
	return f, nil
}

// IdentifyProducts lists every product visible on the shelf.
func (g *Gemini) IdentifyProducts(ctx context.Context, img Image) (catalog.Catalog, error) {
	raw, err := g.generate(ctx, identificationPrompt,
		"Identify all products on this shelf and output them as CSV.", img)
	if err != nil {
		return nil, err
	}
	cat, err := parseProducts(raw)
	if err != nil {
		return nil, err
	}
	slog.Info("identified products", "count", len(cat))
	return cat, nil
}

// LocateHand reports where the target item is relative to the user's hand.
func (g *Gemini) LocateHand(ctx context.Context, img Image, target catalog.Record) (guidance.Offset, error) {
	raw, err := g.generate(ctx, trackingPrompt(target.Name, target.Location),
		fmt.Sprintf("Where is %s relative to my hand right now?", target.Name), img)
	if err != nil {
		return guidance.Offset{}, err
	}
	off, err := parseOffset(raw)
	if err != nil {
		return guidance.Offset{}, err
	}
	slog.Debug("hand offset", "angle", off.AngleDegrees, "distance", off.Distance)
	return off, nil
}
