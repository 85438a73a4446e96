// Package segment implements the two-tier customer segmentation core:
// deterministic outlier threshold rules first, k-means cluster assignment
// as the fallback. All configuration is immutable after load; Classify is
// a pure function and safe for concurrent use.
package segment

// Name is the canonical segment identifier. Display text and descriptions
// hang off the rules configuration, never off the Name itself.
type Name string

const (
	// Clustered segments — produced by the fallback model.
	Regular    Name = "Regular"
	Lapsed     Name = "Lapsed"
	Occasional Name = "Occasional"
	Premium    Name = "Premium"

	// Outlier segments — produced by threshold rules, never by the model.
	HighSpender  Name = "High_Spender"
	PowerShopper Name = "Power_Shopper"
	Elite        Name = "Elite"
)

// ruleSegments are the segments reachable through the outlier rules alone.
var ruleSegments = []Name{HighSpender, PowerShopper, Elite}

// knownSegments is the full canonical vocabulary.
var knownSegments = map[Name]bool{
	Regular:      true,
	Lapsed:       true,
	Occasional:   true,
	Premium:      true,
	HighSpender:  true,
	PowerShopper: true,
	Elite:        true,
}

// IsKnown reports whether n is part of the canonical segment vocabulary.
func (n Name) IsKnown() bool {
	return knownSegments[n]
}

// Result is the outcome of a classification: the templated response text,
// the human-readable label, and the canonical segment key.
type Result struct {
	Response string `json:"prediction"`
	Display  string `json:"segment"`
	Segment  Name   `json:"cluster_code"`
}

// Input is one RFM observation. Recency is days since last purchase,
// Frequency is the purchase count, Monetary is total spend.
type Input struct {
	Recency   float64 `json:"recency"`
	Frequency float64 `json:"frequency"`
	Monetary  float64 `json:"monetary"`
}

// Vector returns the observation in model feature order. The order is
// load-bearing: the scaler and clusterer were fit on
// [recency, frequency, monetary] and silently misclassify on any other.
func (in Input) Vector() []float64 {
	return []float64{in.Recency, in.Frequency, in.Monetary}
}
