// Package results persists evaluation runs as YAML reports.
package results

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julie-labs/shelf-assistant/internal/eval/metrics"
)

// EvalConfig is the configuration section of the eval YAML.
type EvalConfig struct {
	Model       string `yaml:"model"`
	DatasetPath string `yaml:"datasetpath"`
	SampleSize  int    `yaml:"samplesize"`
	Timestamp   string `yaml:"timestamp"`
}

// EvalResult is one record's scores in the report.
type EvalResult struct {
	PhotoPath       string   `yaml:"photopath"`
	Expected        int      `yaml:"expected"`
	Identified      int      `yaml:"identified"`
	Matched         []string `yaml:"matched,omitempty"`
	Missing         []string `yaml:"missing,omitempty"`
	Spurious        []string `yaml:"spurious,omitempty"`
	LocationMatched int      `yaml:"locationmatched"`
	Precision       float64  `yaml:"precision"`
	Recall          float64  `yaml:"recall"`
	F1              float64  `yaml:"f1"`
	Error           string   `yaml:"error,omitempty"`
}

// EvalSummary holds the dataset-wide averages.
type EvalSummary struct {
	Precision float64 `yaml:"precision"`
	Recall    float64 `yaml:"recall"`
	F1        float64 `yaml:"f1"`
}

// EvalSpec is the complete report written to disk.
type EvalSpec struct {
	Config  EvalConfig   `yaml:"config"`
	Summary EvalSummary  `yaml:"summary"`
	Results []EvalResult `yaml:"results"`
}

// SaveToYAML writes an evaluation run to evals/<model>-<timestamp>.yaml.
func SaveToYAML(model, datasetPath string, sampleSize int, results []metrics.EvaluationResult) error {
	if err := os.MkdirAll("evals", 0755); err != nil {
		return fmt.Errorf("failed to create evals directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")

	precision, recall, f1 := metrics.Aggregate(results)
	spec := EvalSpec{
		Config: EvalConfig{
			Model:       model,
			DatasetPath: datasetPath,
			SampleSize:  sampleSize,
			Timestamp:   timestamp,
		},
		Summary: EvalSummary{Precision: precision, Recall: recall, F1: f1},
		Results: make([]EvalResult, 0, len(results)),
	}

	for _, r := range results {
		spec.Results = append(spec.Results, EvalResult{
			PhotoPath:       r.PhotoPath,
			Expected:        r.Expected,
			Identified:      r.Identified,
			Matched:         r.Comparison.Matched,
			Missing:         r.Comparison.Missing,
			Spurious:        r.Comparison.Spurious,
			LocationMatched: r.Comparison.LocationMatched,
			Precision:       r.Comparison.Precision,
			Recall:          r.Comparison.Recall,
			F1:              r.Comparison.F1,
			Error:           r.Error,
		})
	}

	filename := fmt.Sprintf("evals/%s-%s.yaml", model, timestamp)

	data, err := yaml.Marshal(&spec)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write YAML file: %w", err)
	}

	absPath, _ := filepath.Abs(filename)
	fmt.Printf("\nEvaluation results saved to: %s\n", absPath)

	return nil
}
