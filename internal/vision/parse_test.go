package vision

import (
	"errors"
	"testing"

	"github.com/julie-labs/shelf-assistant/internal/guidance"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"no fence", `{"framed": true}`, `{"framed": true}`},
		{"plain fence", "```\n{\"framed\": true}\n```", `{"framed": true}`},
		{"json fence", "```json\n{\"framed\": true}\n```", `{"framed": true}`},
		{"csv fence", "```csv\na,b\n1,2\n```", "a,b\n1,2"},
		{"surrounding whitespace", "  \n```\nhello\n```\n  ", "hello"},
		{"unclosed fence", "```\nhello", "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripFences(tt.in); got != tt.expected {
				t.Errorf("stripFences(%q) = %q, expected %q", tt.in, got, tt.expected)
			}
		})
	}
}

func TestParseFraming(t *testing.T) {
	f, err := parseFraming("```json\n{\"framed\": false, \"advice\": \"Move right\"}\n```")
	if err != nil {
		t.Fatalf("parseFraming failed: %v", err)
	}
	if f.Framed {
		t.Error("Expected framed=false")
	}
	if f.Advice != "Move right" {
		t.Errorf("Expected advice 'Move right', got %q", f.Advice)
	}

	_, err = parseFraming("the shelf looks fine to me")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Expected ParseError for prose output, got %v", err)
	}
	if pe.Phase != "framing" {
		t.Errorf("Expected framing phase, got %q", pe.Phase)
	}
}

func TestParseProducts(t *testing.T) {
	raw := "```csv\nitem_number,product_name,brand,location,price\n1,Cola 330ml,Coca-Cola,top shelf left,$1.99\n```"
	cat, err := parseProducts(raw)
	if err != nil {
		t.Fatalf("parseProducts failed: %v", err)
	}
	if len(cat) != 1 || cat[0].Name != "Cola 330ml" {
		t.Errorf("Unexpected catalog: %+v", cat)
	}

	_, err = parseProducts("I can see a few sodas and some juice.")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Expected ParseError for prose output, got %v", err)
	}
}

func TestParseOffset(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    guidance.Offset
		wantErr bool
	}{
		{
			name: "valid far",
			raw:  `{"angle_degrees": 120, "distance": "far"}`,
			want: guidance.Offset{AngleDegrees: 120, Distance: guidance.DistanceFar},
		},
		{
			name: "valid near with fence",
			raw:  "```json\n{\"angle_degrees\": 360, \"distance\": \"near\"}\n```",
			want: guidance.Offset{AngleDegrees: 360, Distance: guidance.DistanceNear},
		},
		{
			name:    "unknown distance",
			raw:     `{"angle_degrees": 90, "distance": "kinda close"}`,
			wantErr: true,
		},
		{
			name:    "angle out of range",
			raw:     `{"angle_degrees": 400, "distance": "far"}`,
			wantErr: true,
		},
		{
			name: "zero angle means straight up",
			raw:  `{"angle_degrees": 0, "distance": "near"}`,
			want: guidance.Offset{AngleDegrees: 0, Distance: guidance.DistanceNear},
		},
		{
			name:    "negative angle",
			raw:     `{"angle_degrees": -30, "distance": "far"}`,
			wantErr: true,
		},
		{
			name:    "prose",
			raw:     "move your hand up a bit",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseOffset(tt.raw)
			if tt.wantErr {
				var pe *ParseError
				if !errors.As(err, &pe) {
					t.Fatalf("Expected ParseError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseOffset failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("parseOffset = %+v, expected %+v", got, tt.want)
			}
		})
	}
}
