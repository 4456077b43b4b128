package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/julie-labs/shelf-assistant/internal/eval/dataset"
	"github.com/julie-labs/shelf-assistant/internal/eval/metrics"
	"github.com/julie-labs/shelf-assistant/internal/eval/results"
	"github.com/julie-labs/shelf-assistant/internal/vision"
)

func newEvalCmd() *cobra.Command {
	var (
		datasetPath string
		model       string
		sampleSize  int
	)

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate product identification against a labeled dataset",
		Long: `Runs the product identification prompt over a labeled shelf photo dataset
and scores the output against the ground-truth annotations.

Datasets are JSONL or Parquet files of records holding a photo path and the
products a human annotator recorded for that photo. Results are written as a
YAML report under evals/.`,
		Example: `  # Evaluate the full dataset
  shelf-assistant eval --dataset shelves.jsonl

  # Quick run over 10 records with a specific model
  shelf-assistant eval --dataset shelves.parquet --model gemini-1.5-pro --sample 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if vision.APIKey() == "" {
				return errors.New("GEMINI_API_KEY environment variable not set")
			}
			return executeEval(cmd.Context(), datasetPath, model, sampleSize)
		},
	}

	cmd.Flags().StringVarP(&datasetPath, "dataset", "d", "", "Path to labeled dataset (.jsonl or .parquet)")
	cmd.Flags().StringVarP(&model, "model", "m", "gemini-2.0-flash-exp", "Gemini model to evaluate")
	cmd.Flags().IntVarP(&sampleSize, "sample", "s", 0, "Evaluate only the first N records (0 = all)")
	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

func executeEval(ctx context.Context, datasetPath, model string, sampleSize int) error {
	slog.Info("starting evaluation run", "dataset", datasetPath, "model", model, "sample", sampleSize)

	loader := dataset.NewLoader(datasetPath)
	var (
		records []dataset.ShelfRecord
		err     error
	)
	if sampleSize > 0 {
		records, err = loader.LoadSample(sampleSize)
	} else {
		records, err = loader.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	slog.Info("dataset loaded", "records", len(records))

	analyzer := vision.NewGemini(model, 0)
	baseDir := filepath.Dir(datasetPath)

	evalResults := make([]metrics.EvaluationResult, 0, len(records))
	for i, record := range records {
		slog.Info("evaluating photo", "photo", record.PhotoPath, "progress", fmt.Sprintf("%d/%d", i+1, len(records)))
		evalResults = append(evalResults, evaluateRecord(ctx, analyzer, baseDir, record))
	}

	if err := results.SaveToYAML(model, datasetPath, sampleSize, evalResults); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	precision, recall, f1 := metrics.Aggregate(evalResults)
	fmt.Printf("\nEvaluated %d photos\n", len(evalResults))
	fmt.Printf("Precision: %.3f  Recall: %.3f  F1: %.3f\n", precision, recall, f1)

	return nil
}

func evaluateRecord(ctx context.Context, analyzer vision.Analyzer, baseDir string, record dataset.ShelfRecord) metrics.EvaluationResult {
	result := metrics.EvaluationResult{PhotoPath: record.PhotoPath}

	expected, err := record.Catalog()
	if err != nil {
		result.Error = fmt.Sprintf("bad ground truth: %v", err)
		return result
	}
	result.Expected = len(expected)

	photoPath := record.PhotoPath
	if !filepath.IsAbs(photoPath) {
		photoPath = filepath.Join(baseDir, photoPath)
	}

	img, err := vision.LoadImage(photoPath)
	if err != nil {
		result.Error = fmt.Sprintf("failed to load photo: %v", err)
		return result
	}

	identified, err := analyzer.IdentifyProducts(ctx, img)
	if err != nil {
		result.Error = fmt.Sprintf("failed to identify products: %v", err)
		return result
	}
	result.Identified = len(identified)

	result.Comparison = metrics.Compare(expected, identified)
	return result
}
