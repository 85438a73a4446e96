package handler

import (
	"net/http"
	"strconv"

	"github.com/seglytics/segment-api/internal/api/respond"
	"github.com/seglytics/segment-api/internal/history"
)

// GetRecentPredictions returns the latest recorded classifications.
// @Summary Recent predictions
// @Description Returns the most recent recorded classifications, newest first. Requires the prediction history store.
// @Tags predictions
// @Produce json
// @Param limit query int false "Max rows (1-500, default 50)"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /predictions/recent [get]
func (h *Handler) GetRecentPredictions(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respond.WriteError(w, http.StatusNotFound, "HISTORY_DISABLED",
			"Prediction history is not configured")
		return
	}

	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 500 {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be an integer between 1 and 500")
			return
		}
		limit = n
	}

	records, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to query prediction history")
		return
	}
	if records == nil {
		records = []history.Record{}
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"predictions": records,
		"count":       len(records),
	})
}
