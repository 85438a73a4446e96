package handler

import (
	"encoding/json"
	"net/http"

	"github.com/seglytics/segment-api/internal/api/respond"
	"github.com/seglytics/segment-api/internal/cache"
)

const segmentsCacheKey = "segments:catalog"

// GetSegments returns the segment catalog with the active thresholds.
// @Summary Segment catalog
// @Description Returns every reachable segment with its display name and description, plus the outlier thresholds in effect.
// @Tags segments
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /segments [get]
func (h *Handler) GetSegments(w http.ResponseWriter, r *http.Request) {
	if data, etag, ok := h.cache.Get(segmentsCacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLCatalog, true)
		return
	}

	rules := h.classifier.Rules()
	payload := map[string]interface{}{
		"segments": rules.Segments(),
		"thresholds": map[string]float64{
			"monetary":  rules.MonetaryThreshold,
			"frequency": rules.FrequencyThreshold,
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to build segment catalog")
		return
	}

	etag := h.cache.Set(segmentsCacheKey, data, cache.TTLCatalog)
	respond.WriteJSON(w, data, etag, cache.TTLCatalog, false)
}
