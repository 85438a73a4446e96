package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/seglytics/segment-api/internal/segment"
)

// Features is the RFM feature count every artifact must match.
const Features = 3

// Default artifact file names under the model directory.
const (
	ScalerFile = "scaler.json"
	KMeansFile = "kmeans.json"
	RulesFile  = "business_rules.json"
)

// Artifacts bundles everything loaded from the model directory. Loading
// is all-or-nothing: any missing file, malformed document, or
// model/rules mismatch fails before serving begins.
type Artifacts struct {
	Scaler *StandardScaler
	KMeans *KMeans
	Rules  *segment.Rules
	Dir    string
}

// Load reads the scaler, k-means, and business-rules artifacts from dir
// and cross-validates them: every cluster index the model can produce
// must be named by the rules, so a refit with a different cluster count
// is caught at startup instead of surfacing per request.
func Load(dir string) (*Artifacts, error) {
	scaler, err := LoadScaler(filepath.Join(dir, ScalerFile))
	if err != nil {
		return nil, err
	}
	km, err := LoadKMeans(filepath.Join(dir, KMeansFile))
	if err != nil {
		return nil, err
	}
	rules, err := segment.LoadRules(filepath.Join(dir, RulesFile))
	if err != nil {
		return nil, err
	}

	for i := 0; i < km.NumClusters(); i++ {
		if !rules.HasIndex(i) {
			return nil, fmt.Errorf("model/rules mismatch: kmeans produces cluster %d but business rules name only %d clusters", i, rules.ClusterCount())
		}
	}

	return &Artifacts{Scaler: scaler, KMeans: km, Rules: rules, Dir: dir}, nil
}

// Classifier builds the segment classifier over the loaded artifacts.
func (a *Artifacts) Classifier() (*segment.Classifier, error) {
	return segment.NewClassifier(a.Rules, a.Scaler, a.KMeans)
}

// LoadScaler reads and validates a scaler export.
func LoadScaler(path string) (*StandardScaler, error) {
	var s StandardScaler
	if err := readJSON(path, &s); err != nil {
		return nil, err
	}
	if err := s.validate(Features); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &s, nil
}

// LoadKMeans reads and validates a k-means export.
func LoadKMeans(path string) (*KMeans, error) {
	var k KMeans
	if err := readJSON(path, &k); err != nil {
		return nil, err
	}
	if err := k.validate(Features); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &k, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
