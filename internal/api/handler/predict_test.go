package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/seglytics/segment-api/internal/api/respond"
	"github.com/seglytics/segment-api/internal/cache"
	"github.com/seglytics/segment-api/internal/config"
	"github.com/seglytics/segment-api/internal/model"
	"github.com/seglytics/segment-api/internal/segment"
)

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

// testHandler builds a handler over in-memory artifacts: identity scaler,
// one centroid at the origin so the fallback always lands on Regular.
func testHandler(t *testing.T) *Handler {
	t.Helper()
	return handlerWithKMeans(t, &model.KMeans{Centroids: [][]float64{{0, 0, 0}}})
}

func handlerWithKMeans(t *testing.T, km *model.KMeans) *Handler {
	t.Helper()
	rules, err := segment.ParseRules([]byte(testRulesJSON))
	if err != nil {
		t.Fatalf("parse rules: %v", err)
	}
	arts := &model.Artifacts{
		Scaler: &model.StandardScaler{Mean: []float64{0, 0, 0}, Scale: []float64{1, 1, 1}},
		KMeans: km,
		Rules:  rules,
		Dir:    "testdata",
	}
	h, err := New(arts, nil, cache.New(false), &config.Config{})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return h
}

func postPredict(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Predict(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp respond.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp.Error.Code
}

func TestPredict_Outlier(t *testing.T) {
	h := testHandler(t)
	rec := postPredict(t, h, `{"recency": 10, "frequency": 25, "monetary": 15000}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rec.Code, rec.Body)
	}
	var resp predictResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ClusterCode != segment.Elite {
		t.Errorf("cluster_code: got %q, want Elite", resp.ClusterCode)
	}
	if resp.Segment != "Elite" {
		t.Errorf("segment: got %q, want Elite", resp.Segment)
	}
	if !strings.Contains(resp.Prediction, "Elite") {
		t.Errorf("prediction %q does not mention the segment", resp.Prediction)
	}
	if resp.Inputs.Monetary != 15000 {
		t.Errorf("inputs not echoed: %+v", resp.Inputs)
	}
}

func TestPredict_Fallback(t *testing.T) {
	h := testHandler(t)
	rec := postPredict(t, h, `{"recency": 45, "frequency": 8, "monetary": 1200}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rec.Code, rec.Body)
	}
	var resp predictResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ClusterCode != segment.Regular {
		t.Errorf("cluster_code: got %q, want Regular", resp.ClusterCode)
	}
}

func TestPredict_BadRequests(t *testing.T) {
	h := testHandler(t)

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"missing-field", `{"recency": 1, "frequency": 2}`, "MISSING_FIELD"},
		{"non-numeric", `{"recency": "ten", "frequency": 2, "monetary": 3}`, "INVALID_BODY"},
		{"not-json", `recency=10`, "INVALID_BODY"},
		{"unknown-field", `{"recency": 1, "frequency": 2, "monetary": 3, "tenure": 4}`, "INVALID_BODY"},
		{"negative", `{"recency": -1, "frequency": 2, "monetary": 3}`, "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postPredict(t, h, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want 400 (%s)", rec.Code, rec.Body)
			}
			if code := errorCode(t, rec); code != tt.wantCode {
				t.Errorf("code: got %q, want %q", code, tt.wantCode)
			}
		})
	}
}

func TestPredict_UnmappedClusterIs500(t *testing.T) {
	// Five centroids while the rules name only indices 0..3: an input
	// nearest the fifth centroid yields an unmapped index.
	km := &model.KMeans{Centroids: [][]float64{
		{0, 0, 0},
		{20, 20, 20},
		{40, 40, 40},
		{60, 60, 60},
		{100, 5, 100},
	}}
	h := handlerWithKMeans(t, km)

	rec := postPredict(t, h, `{"recency": 100, "frequency": 5, "monetary": 100}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500 (%s)", rec.Code, rec.Body)
	}
	if code := errorCode(t, rec); code != "MODEL_MISMATCH" {
		t.Errorf("code: got %q, want MODEL_MISMATCH", code)
	}
}

func TestGetSegments(t *testing.T) {
	h := testHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/segments", nil)
	rec := httptest.NewRecorder()
	h.GetSegments(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	var resp struct {
		Segments   []segment.SegmentInfo `json:"segments"`
		Thresholds map[string]float64    `json:"thresholds"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Segments) != 7 {
		t.Errorf("segments: got %d, want 7", len(resp.Segments))
	}
	if resp.Thresholds["monetary"] != 3799.39 {
		t.Errorf("monetary threshold: got %v", resp.Thresholds["monetary"])
	}
}

func TestGetRecentPredictions_Disabled(t *testing.T) {
	h := testHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/predictions/recent", nil)
	rec := httptest.NewRecorder()
	h.GetRecentPredictions(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404", rec.Code)
	}
	if code := errorCode(t, rec); code != "HISTORY_DISABLED" {
		t.Errorf("code: got %q, want HISTORY_DISABLED", code)
	}
}
