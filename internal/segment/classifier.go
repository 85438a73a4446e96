package segment

import (
	"fmt"
	"math"
)

// Scaler normalizes a raw feature vector into the space the clusterer was
// fit on. Implementations must be safe for concurrent use.
type Scaler interface {
	Transform(v []float64) ([]float64, error)
}

// Clusterer assigns a normalized feature vector to one of a small fixed
// set of cluster indices. Implementations must be safe for concurrent use.
type Clusterer interface {
	Predict(v []float64) (int, error)
}

// Classifier combines the outlier threshold rules with the clustering
// fallback. It holds no mutable state; one instance serves any number of
// concurrent Classify calls.
type Classifier struct {
	rules     *Rules
	scaler    Scaler
	clusterer Clusterer
}

// NewClassifier wires validated rules to the pre-fitted collaborators.
func NewClassifier(rules *Rules, scaler Scaler, clusterer Clusterer) (*Classifier, error) {
	if rules == nil {
		return nil, fmt.Errorf("classifier: rules are required")
	}
	if scaler == nil {
		return nil, fmt.Errorf("classifier: scaler is required")
	}
	if clusterer == nil {
		return nil, fmt.Errorf("classifier: clusterer is required")
	}
	return &Classifier{rules: rules, scaler: scaler, clusterer: clusterer}, nil
}

// Rules exposes the active business rules (read-only by convention).
func (c *Classifier) Rules() *Rules {
	return c.rules
}

// Classify assigns a customer to a segment from its RFM signals.
//
// Rule precedence is a behavioral contract: both thresholds exceeded wins
// Elite before either single-threshold rule can fire, and comparisons are
// strict — a value exactly at a threshold falls through. The clusterer is
// only consulted when no rule fires.
func (c *Classifier) Classify(in Input) (Result, error) {
	if err := validate(in); err != nil {
		return Result{}, err
	}

	var name Name
	switch {
	case in.Monetary > c.rules.MonetaryThreshold && in.Frequency > c.rules.FrequencyThreshold:
		name = Elite
	case in.Monetary > c.rules.MonetaryThreshold:
		name = HighSpender
	case in.Frequency > c.rules.FrequencyThreshold:
		name = PowerShopper
	default:
		var err error
		name, err = c.assignCluster(in)
		if err != nil {
			return Result{}, err
		}
	}

	display, err := c.rules.DisplayFor(name)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Response: c.rules.Render(display),
		Display:  display,
		Segment:  name,
	}, nil
}

// assignCluster runs the clustering fallback: scale the feature vector,
// ask the clusterer for an index, name the index via the rules table.
func (c *Classifier) assignCluster(in Input) (Name, error) {
	scaled, err := c.scaler.Transform(in.Vector())
	if err != nil {
		return "", &InferenceError{Stage: "scale", Err: err}
	}
	idx, err := c.clusterer.Predict(scaled)
	if err != nil {
		return "", &InferenceError{Stage: "predict", Err: err}
	}
	return c.rules.NameForIndex(idx)
}

func validate(in Input) error {
	for _, f := range []struct {
		name string
		val  float64
	}{
		{"recency", in.Recency},
		{"frequency", in.Frequency},
		{"monetary", in.Monetary},
	} {
		switch {
		case math.IsNaN(f.val):
			return &InputError{Field: f.name, Reason: "not a number"}
		case math.IsInf(f.val, 0):
			return &InputError{Field: f.name, Reason: "must be finite"}
		case f.val < 0:
			return &InputError{Field: f.name, Reason: "must be non-negative"}
		}
	}
	return nil
}
