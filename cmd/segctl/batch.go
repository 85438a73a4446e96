package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/seglytics/segment-api/internal/segment"
)

// batchCmd scores a CSV of customers. The input needs recency, frequency,
// and monetary columns (any order, extra columns pass through untouched);
// the output appends segment and display_name columns.
func batchCmd() *cobra.Command {
	var modelDir, input, output string
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Classify a CSV of customers",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, clf, err := loadClassifier(modelDir)
			if err != nil {
				return err
			}
			start := time.Now()
			rows, err := runBatch(clf, input, output)
			if err != nil {
				return err
			}
			logger.Info("Batch classification finished",
				"rows", rows,
				"output", output,
				"duration", time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().StringVar(&modelDir, "model-dir", "", "model artifact directory (default: MODEL_DIR env)")
	cmd.Flags().StringVar(&input, "input", "", "input CSV with recency, frequency, monetary columns")
	cmd.Flags().StringVar(&output, "output", "", "output CSV path")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func runBatch(clf *segment.Classifier, input, output string) (int, error) {
	in, err := os.Open(input)
	if err != nil {
		return 0, fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	records, err := csv.NewReader(in).ReadAll()
	if err != nil {
		return 0, fmt.Errorf("read input: %w", err)
	}
	if len(records) < 2 {
		return 0, fmt.Errorf("input has no data rows")
	}

	header := records[0]
	cols, err := rfmColumns(header)
	if err != nil {
		return 0, err
	}

	out, err := os.Create(output)
	if err != nil {
		return 0, fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write(append(append([]string{}, header...), "segment", "display_name")); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	bar := progressbar.Default(int64(len(records) - 1))
	for i, row := range records[1:] {
		obs, err := parseRow(row, cols)
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", i+2, err)
		}
		res, err := clf.Classify(obs)
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", i+2, err)
		}
		if err := w.Write(append(append([]string{}, row...), string(res.Segment), res.Display)); err != nil {
			return 0, fmt.Errorf("write row %d: %w", i+2, err)
		}
		_ = bar.Add(1)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("flush output: %w", err)
	}
	return len(records) - 1, nil
}

// rfmColumns locates the three RFM columns in the header.
func rfmColumns(header []string) (map[string]int, error) {
	cols := map[string]int{"recency": -1, "frequency": -1, "monetary": -1}
	for i, name := range header {
		if _, ok := cols[name]; ok {
			cols[name] = i
		}
	}
	for name, idx := range cols {
		if idx < 0 {
			return nil, fmt.Errorf("input is missing a %q column", name)
		}
	}
	return cols, nil
}

func parseRow(row []string, cols map[string]int) (segment.Input, error) {
	vals := make(map[string]float64, 3)
	for name, idx := range cols {
		if idx >= len(row) {
			return segment.Input{}, fmt.Errorf("short row, no %s value", name)
		}
		v, err := strconv.ParseFloat(row[idx], 64)
		if err != nil {
			return segment.Input{}, fmt.Errorf("%s %q is not numeric", name, row[idx])
		}
		vals[name] = v
	}
	return segment.Input{
		Recency:   vals["recency"],
		Frequency: vals["frequency"],
		Monetary:  vals["monetary"],
	}, nil
}
