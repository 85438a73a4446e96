package model

import (
	"fmt"
)

// KMeans assigns a normalized feature vector to its nearest centroid.
// Centroids come from the fitted estimator's export; row order defines
// the cluster indices the business rules name.
type KMeans struct {
	Centroids [][]float64 `json:"centroids"`
}

// Predict returns the index of the centroid nearest to v by squared
// Euclidean distance. Ties resolve to the lowest index, matching the
// argmin behavior of the training library.
func (k *KMeans) Predict(v []float64) (int, error) {
	if len(k.Centroids) == 0 {
		return 0, fmt.Errorf("kmeans has no centroids")
	}
	if len(v) != len(k.Centroids[0]) {
		return 0, fmt.Errorf("kmeans expects %d features, got %d", len(k.Centroids[0]), len(v))
	}

	best := 0
	bestDist := sqDist(v, k.Centroids[0])
	for i := 1; i < len(k.Centroids); i++ {
		if d := sqDist(v, k.Centroids[i]); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, nil
}

// NumClusters returns the number of cluster indices the model can produce.
func (k *KMeans) NumClusters() int {
	return len(k.Centroids)
}

func sqDist(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// validate rejects centroid tables with missing rows or ragged dimensions.
func (k *KMeans) validate(features int) error {
	if len(k.Centroids) == 0 {
		return fmt.Errorf("kmeans centroid table is empty")
	}
	for i, c := range k.Centroids {
		if len(c) != features {
			return fmt.Errorf("kmeans centroid %d has %d features, want %d", i, len(c), features)
		}
	}
	return nil
}
