package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/seglytics/segment-api/internal/api/respond"
	"github.com/seglytics/segment-api/internal/segment"
)

// predictRequest uses pointers so a missing field is distinguishable
// from a legitimate zero.
type predictRequest struct {
	Recency   *float64 `json:"recency"`
	Frequency *float64 `json:"frequency"`
	Monetary  *float64 `json:"monetary"`
}

// predictResponse mirrors the public API contract.
type predictResponse struct {
	Prediction  string        `json:"prediction"`
	Segment     string        `json:"segment"`
	ClusterCode segment.Name  `json:"cluster_code"`
	Inputs      segment.Input `json:"inputs"`
}

// Predict classifies a customer from its RFM signals.
// @Summary Classify a customer
// @Description Assigns a behavioral segment from recency (days since last purchase), frequency (purchase count), and monetary (total spend). Threshold rules decide outlier segments; everything else goes through the clustering model.
// @Tags classification
// @Accept json
// @Produce json
// @Param request body predictRequest true "RFM signals"
// @Success 200 {object} predictResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /predict [post]
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_BODY",
			"Request body must be a JSON object with numeric recency, frequency, and monetary", err.Error())
		return
	}
	for name, v := range map[string]*float64{
		"recency":   req.Recency,
		"frequency": req.Frequency,
		"monetary":  req.Monetary,
	} {
		if v == nil {
			respond.WriteError(w, http.StatusBadRequest, "MISSING_FIELD",
				fmt.Sprintf("%s is required", name))
			return
		}
	}

	in := segment.Input{Recency: *req.Recency, Frequency: *req.Frequency, Monetary: *req.Monetary}
	res, err := h.classifier.Classify(in)
	if err != nil {
		writeClassifyError(w, err)
		return
	}

	if h.history != nil {
		h.history.Enqueue(in, res)
	}

	respond.WriteJSONObject(w, http.StatusOK, predictResponse{
		Prediction:  res.Response,
		Segment:     res.Display,
		ClusterCode: res.Segment,
		Inputs:      in,
	})
}

// writeClassifyError maps the core's error taxonomy onto status codes.
// The kinds stay distinct in the payload so operators can tell bad input
// from a broken deployment from a model failure.
func writeClassifyError(w http.ResponseWriter, err error) {
	var inputErr *segment.InputError
	var clusterErr *segment.UnknownClusterError
	var configErr *segment.ConfigError
	var inferErr *segment.InferenceError

	switch {
	case errors.As(err, &inputErr):
		respond.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", inputErr.Error())
	case errors.As(err, &clusterErr):
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "MODEL_MISMATCH",
			"Clustering model produced an unmapped cluster index", clusterErr.Error())
	case errors.As(err, &configErr):
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "CONFIG_ERROR",
			"Business rules configuration is incomplete", configErr.Error())
	case errors.As(err, &inferErr):
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "MODEL_ERROR",
			"Model inference failed", inferErr.Error())
	default:
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Classification failed")
	}
}
