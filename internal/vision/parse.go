package vision

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/julie-labs/shelf-assistant/internal/catalog"
	"github.com/julie-labs/shelf-assistant/internal/guidance"
)

// stripFences removes a markdown code fence wrapped around model output.
// Models add them despite being told not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	lines = lines[1:]
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func parseFraming(raw string) (Framing, error) {
	cleaned := stripFences(raw)

	var f Framing
	if err := json.Unmarshal([]byte(cleaned), &f); err != nil {
		return Framing{}, &ParseError{Phase: "framing", Output: raw, Err: err}
	}
	return f, nil
}

func parseProducts(raw string) (catalog.Catalog, error) {
	cat, err := catalog.Decode(stripFences(raw))
	if err != nil {
		return nil, &ParseError{Phase: "identification", Output: raw, Err: err}
	}
	return cat, nil
}

func parseOffset(raw string) (guidance.Offset, error) {
	cleaned := stripFences(raw)

	var o guidance.Offset
	if err := json.Unmarshal([]byte(cleaned), &o); err != nil {
		return guidance.Offset{}, &ParseError{Phase: "tracking", Output: raw, Err: err}
	}
	if o.Distance != guidance.DistanceNear && o.Distance != guidance.DistanceFar {
		return guidance.Offset{}, &ParseError{
			Phase:  "tracking",
			Output: raw,
			Err:    fmt.Errorf("unknown distance hint %q", o.Distance),
		}
	}
	// The prompt allows both 0 and 360 for straight up.
	if o.AngleDegrees < 0 || o.AngleDegrees > 360 {
		return guidance.Offset{}, &ParseError{
			Phase:  "tracking",
			Output: raw,
			Err:    errors.New("angle_degrees out of range [0, 360]"),
		}
	}
	return o, nil
}
