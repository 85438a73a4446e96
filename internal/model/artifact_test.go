package model

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/seglytics/segment-api/internal/segment"
)

const testScalerJSON = `{"mean": [92.5, 4.1, 1021.7], "scale": [100.2, 3.7, 1352.8]}`

const testKMeansJSON = `{"centroids": [
	[-0.4, 0.2, 0.0],
	[1.4, -0.5, -0.3],
	[0.1, -0.6, -0.5],
	[-0.7, 1.3, 1.2]
]}`

const testRulesJSON = `{
	"outlier_thresholds": {"monetary": 3799.39, "frequency": 11},
	"cluster_mapping": {"0": "Regular", "1": "Lapsed", "2": "Occasional", "3": "Premium"},
	"display_mapping": {
		"Regular": "Regular", "Lapsed": "Lapsed", "Occasional": "Occasional",
		"Premium": "Premium", "High_Spender": "High Spender",
		"Power_Shopper": "Power Shopper", "Elite": "Elite"
	},
	"response_template": "This customer belongs to the {segment} segment."
}`

// writeModelDir lays out a full artifact directory, with overrides.
func writeModelDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	defaults := map[string]string{
		ScalerFile: testScalerJSON,
		KMeansFile: testKMeansJSON,
		RulesFile:  testRulesJSON,
	}
	for name, content := range files {
		defaults[name] = content
	}
	for name, content := range defaults {
		if content == "" {
			continue // simulate a missing file
		}
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestLoad(t *testing.T) {
	dir := writeModelDir(t, nil)

	arts, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if arts.KMeans.NumClusters() != 4 {
		t.Errorf("clusters: got %d, want 4", arts.KMeans.NumClusters())
	}
	if arts.Rules.MonetaryThreshold != 3799.39 {
		t.Errorf("monetary threshold: got %v", arts.Rules.MonetaryThreshold)
	}

	clf, err := arts.Classifier()
	if err != nil {
		t.Fatalf("classifier: %v", err)
	}
	res, err := clf.Classify(segment.Input{Recency: 10, Frequency: 25, Monetary: 15000})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if res.Segment != "Elite" {
		t.Errorf("segment: got %q, want Elite", res.Segment)
	}
}

func TestLoad_Failures(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		errNeed string
	}{
		{
			"missing-scaler",
			map[string]string{ScalerFile: ""},
			"read artifact",
		},
		{
			"malformed-kmeans",
			map[string]string{KMeansFile: `{"centroids": "nope"}`},
			"decode",
		},
		{
			"zero-scale",
			map[string]string{ScalerFile: `{"mean": [0, 0, 0], "scale": [1, 0, 1]}`},
			"scale[1] is zero",
		},
		{
			"scaler-wrong-features",
			map[string]string{ScalerFile: `{"mean": [0, 0], "scale": [1, 1]}`},
			"want 3",
		},
		{
			"ragged-centroids",
			map[string]string{KMeansFile: `{"centroids": [[0, 0, 0], [1, 1]]}`},
			"centroid 1",
		},
		{
			"empty-centroids",
			map[string]string{KMeansFile: `{"centroids": []}`},
			"empty",
		},
		{
			"missing-rules",
			map[string]string{RulesFile: ""},
			"read business rules",
		},
		{
			// Five centroids but rules only name four clusters: the
			// refit/config mismatch must fail at load, not per request.
			"more-centroids-than-names",
			map[string]string{KMeansFile: `{"centroids": [
				[0,0,0], [1,1,1], [2,2,2], [3,3,3], [4,4,4]
			]}`},
			"mismatch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeModelDir(t, tt.files)
			_, err := Load(dir)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.errNeed) {
				t.Errorf("error %q does not mention %q", err, tt.errNeed)
			}
		})
	}
}
