// Command segctl is the segmentation operator CLI. It loads the same
// model artifacts as the API server and classifies offline.
//
// Usage:
//
//	segctl classify --recency 45 --frequency 8 --monetary 1200
//	segctl batch --input customers.csv --output segments.csv
//	segctl rules
package main

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/seglytics/segment-api/internal/config"
	"github.com/seglytics/segment-api/internal/model"
	"github.com/seglytics/segment-api/internal/segment"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "segctl",
		Short: "Customer segmentation CLI",
	}

	root.AddCommand(classifyCmd())
	root.AddCommand(batchCmd())
	root.AddCommand(rulesCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadClassifier loads artifacts from MODEL_DIR (or --model-dir).
func loadClassifier(modelDir string) (*model.Artifacts, *segment.Classifier, error) {
	if modelDir == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, nil, err
		}
		modelDir = cfg.ModelDir
	}
	arts, err := model.Load(modelDir)
	if err != nil {
		return nil, nil, err
	}
	clf, err := arts.Classifier()
	if err != nil {
		return nil, nil, err
	}
	return arts, clf, nil
}

// --------------------------------------------------------------------------
// classify command
// --------------------------------------------------------------------------

func classifyCmd() *cobra.Command {
	var modelDir string
	var recency, frequency, monetary float64
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a single customer from RFM signals",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, clf, err := loadClassifier(modelDir)
			if err != nil {
				return err
			}
			res, err := clf.Classify(segment.Input{
				Recency:   recency,
				Frequency: frequency,
				Monetary:  monetary,
			})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringVar(&modelDir, "model-dir", "", "model artifact directory (default: MODEL_DIR env)")
	cmd.Flags().Float64Var(&recency, "recency", 0, "days since last purchase")
	cmd.Flags().Float64Var(&frequency, "frequency", 0, "purchase count")
	cmd.Flags().Float64Var(&monetary, "monetary", 0, "total spend")
	_ = cmd.MarkFlagRequired("recency")
	_ = cmd.MarkFlagRequired("frequency")
	_ = cmd.MarkFlagRequired("monetary")
	return cmd
}

// --------------------------------------------------------------------------
// rules command
// --------------------------------------------------------------------------

func rulesCmd() *cobra.Command {
	var modelDir string
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the active thresholds and segment catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, clf, err := loadClassifier(modelDir)
			if err != nil {
				return err
			}
			rules := clf.Rules()
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]interface{}{
				"thresholds": map[string]float64{
					"monetary":  rules.MonetaryThreshold,
					"frequency": rules.FrequencyThreshold,
				},
				"segments": rules.Segments(),
			})
		},
	}
	cmd.Flags().StringVar(&modelDir, "model-dir", "", "model artifact directory (default: MODEL_DIR env)")
	return cmd
}
