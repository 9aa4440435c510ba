package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"astromon/db"
	"astromon/survival"
)

type predictRequest struct {
	Data survival.Reading `json:"data"`
}

// handlePredictJSON classifies a reading supplied as a JSON body
// {"data": {...}}. Unknown fields are accepted, never rejected.
func handlePredictJSON(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.Data == nil {
		respondError(w, http.StatusBadRequest, "'data' field is required")
		return
	}
	servePrediction(w, req.Data)
}

// handlePredict is the multipart variant: form field "file" holds a
// single reading as a JSON object.
func handlePredict(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "multipart form field 'file' is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to read upload: %v", err))
		return
	}

	var data survival.Reading
	if err := json.Unmarshal(content, &data); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid reading: %v", err))
		return
	}
	servePrediction(w, data)
}

func servePrediction(w http.ResponseWriter, data survival.Reading) {
	m := activeModel()
	if m == nil {
		respondError(w, http.StatusBadRequest, "Model not trained yet. Please call /train first")
		return
	}

	key := readingFingerprint(data)
	if key != "" {
		if verdict, ok := verdictCache.Get(key); ok {
			respondJSON(w, verdict)
			return
		}
	}

	status, confidence, probs, err := m.Predict(data)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Prediction failed: %v", err))
		return
	}

	verdict := survival.Verdict{
		Status:     status,
		Confidence: confidence,
		RiskLevel:  survival.CalculateRiskLevel(data, status),
		Feedback:   survival.GenerateFeedback(data, status, confidence),
		Metrics: survival.VerdictMetrics{
			ProvidedFields: data.FieldNames(),
			FieldCount:     len(data),
			Probabilities:  probs,
		},
	}

	if err := db.SavePrediction(verdict, strings.Join(verdict.Metrics.ProvidedFields, ",")); err != nil {
		zap.S().Warnw("failed to record prediction", "error", err)
	}
	if key != "" {
		verdictCache.Add(key, verdict)
	}

	respondJSON(w, verdict)
}

// readingFingerprint canonicalizes a reading for cache lookups;
// encoding/json emits map keys in sorted order.
func readingFingerprint(data survival.Reading) string {
	payload, err := json.Marshal(data)
	if err != nil {
		return ""
	}
	return string(payload)
}
