// Package metrics scores identified product lists against ground-truth
// shelf annotations.
package metrics

import (
	"strings"

	"github.com/julie-labs/shelf-assistant/internal/catalog"
)

// Comparison is the outcome of matching an identified catalog against the
// labeled ground truth for one photo.
type Comparison struct {
	// Matched product names present in both lists.
	Matched []string
	// Missing products the annotator saw but the model did not.
	Missing []string
	// Spurious products the model reported that are not on the shelf.
	Spurious []string
	// LocationMatched counts matched products whose shelf location also agrees.
	LocationMatched int

	Precision float64
	Recall    float64
	F1        float64
}

// EvaluationResult is the outcome of one dataset record's evaluation.
type EvaluationResult struct {
	PhotoPath  string
	Expected   int
	Identified int
	Comparison Comparison
	Error      string
}

// normalizeName canonicalizes a product name for matching: lowercase,
// trimmed, inner whitespace collapsed.
func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// normalizeLocation canonicalizes a shelf location description.
func normalizeLocation(loc string) string {
	return strings.Join(strings.Fields(strings.ToLower(loc)), " ")
}

// Compare matches identified products against the ground truth by normalized
// name and computes precision, recall, and F1.
func Compare(expected, identified catalog.Catalog) Comparison {
	expectedByName := make(map[string]catalog.Record, len(expected))
	for _, rec := range expected {
		expectedByName[normalizeName(rec.Name)] = rec
	}

	var cmp Comparison
	seen := make(map[string]bool)
	for _, rec := range identified {
		key := normalizeName(rec.Name)
		if seen[key] {
			continue
		}
		seen[key] = true

		want, ok := expectedByName[key]
		if !ok {
			cmp.Spurious = append(cmp.Spurious, rec.Name)
			continue
		}
		cmp.Matched = append(cmp.Matched, want.Name)
		if normalizeLocation(rec.Location) == normalizeLocation(want.Location) {
			cmp.LocationMatched++
		}
	}

	for _, rec := range expected {
		if !seen[normalizeName(rec.Name)] {
			cmp.Missing = append(cmp.Missing, rec.Name)
		}
	}

	matched := float64(len(cmp.Matched))
	if reported := matched + float64(len(cmp.Spurious)); reported > 0 {
		cmp.Precision = matched / reported
	}
	if labeled := matched + float64(len(cmp.Missing)); labeled > 0 {
		cmp.Recall = matched / labeled
	}
	if cmp.Precision+cmp.Recall > 0 {
		cmp.F1 = 2 * cmp.Precision * cmp.Recall / (cmp.Precision + cmp.Recall)
	}

	return cmp
}

// Aggregate averages precision, recall, and F1 across results, skipping
// records that errored.
func Aggregate(results []EvaluationResult) (precision, recall, f1 float64) {
	var n float64
	for _, r := range results {
		if r.Error != "" {
			continue
		}
		precision += r.Comparison.Precision
		recall += r.Comparison.Recall
		f1 += r.Comparison.F1
		n++
	}
	if n == 0 {
		return 0, 0, 0
	}
	return precision / n, recall / n, f1 / n
}
