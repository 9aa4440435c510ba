package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"astromon/survival"
)

func multipartFile(t *testing.T, payload string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "training_data.json")
	if err != nil {
		t.Fatalf("failed to build multipart body: %v", err)
	}
	part.Write([]byte(payload))
	w.Close()
	return &body, w.FormDataContentType()
}

func trainingPayload(t *testing.T) string {
	t.Helper()
	samples := make([]survival.TrainingSample, 0, 16)
	for i := 0; i < 8; i++ {
		samples = append(samples, survival.TrainingSample{
			Fields: survival.Reading{
				"oxygen_level": 20.0 + float64(i)*0.2,
				"co2_level":    0.2,
				"temperature":  22.0,
				"humidity":     50.0,
			},
			Status: survival.StatusAlive,
		}, survival.TrainingSample{
			Fields: survival.Reading{
				"oxygen_level": 10.0 + float64(i)*0.2,
				"co2_level":    2.4,
				"temperature":  42.0,
				"humidity":     85.0,
			},
			Status: survival.StatusDead,
		})
	}
	raw, err := json.Marshal(samples)
	if err != nil {
		t.Fatalf("failed to marshal samples: %v", err)
	}
	return string(raw)
}

func predictJSON(t *testing.T, mux *http.ServeMux, reading survival.Reading) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{"data": reading})
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/predict-json", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestPredictBeforeTraining(t *testing.T) {
	resetState()
	mux := newTestMux()

	w := predictJSON(t, mux, survival.Reading{"oxygen_level": 19.5})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !strings.Contains(body["detail"], "Model not trained yet") {
		t.Fatalf("unexpected detail: %q", body["detail"])
	}
}

func TestPredictJSONMissingData(t *testing.T) {
	resetState()
	SetModel(trainedModel(t))
	mux := newTestMux()

	req := httptest.NewRequest(http.MethodPost, "/predict-json", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "'data' field is required") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestTrainThenPredict(t *testing.T) {
	resetState()
	mux := newTestMux()

	body, contentType := multipartFile(t, trainingPayload(t))
	req := httptest.NewRequest(http.MethodPost, "/train", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var outcome survival.TrainingOutcome
	if err := json.Unmarshal(w.Body.Bytes(), &outcome); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if outcome.Message != "Training completed successfully" {
		t.Fatalf("unexpected message: %q", outcome.Message)
	}
	if outcome.Stats.Samples != 16 || outcome.Stats.AliveCount != 8 || outcome.Stats.DeadCount != 8 {
		t.Fatalf("unexpected stats: %+v", outcome.Stats)
	}
	if !strings.HasSuffix(outcome.ModelAccuracy, "%") {
		t.Fatalf("accuracy not formatted as percentage: %q", outcome.ModelAccuracy)
	}

	w = predictJSON(t, mux, survival.Reading{
		"oxygen_level": 19.5,
		"co2_level":    0.4,
		"temperature":  22.0,
		"humidity":     50.0,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var verdict survival.Verdict
	if err := json.Unmarshal(w.Body.Bytes(), &verdict); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if verdict.Status != survival.StatusAlive && verdict.Status != survival.StatusDead {
		t.Fatalf("unexpected status: %q", verdict.Status)
	}
	if verdict.Confidence < 0 || verdict.Confidence > 1 {
		t.Fatalf("confidence out of range: %v", verdict.Confidence)
	}
	if verdict.Metrics.FieldCount != 4 {
		t.Fatalf("expected field_count 4, got %d", verdict.Metrics.FieldCount)
	}
	if len(verdict.Metrics.ProvidedFields) != 4 {
		t.Fatalf("unexpected provided_fields: %v", verdict.Metrics.ProvidedFields)
	}
	if len(verdict.Feedback) == 0 {
		t.Fatal("expected feedback lines")
	}
}

func TestPredictAcceptsUnknownFields(t *testing.T) {
	resetState()
	SetModel(trainedModel(t))
	mux := newTestMux()

	w := predictJSON(t, mux, survival.Reading{
		"oxygen_level": 20.5,
		"co2_level":    0.2,
		"suit_id":      "EVA-2",
		"reactor_flux": 13.7,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var verdict survival.Verdict
	if err := json.Unmarshal(w.Body.Bytes(), &verdict); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if verdict.Metrics.FieldCount != 4 {
		t.Fatalf("expected field_count 4, got %d", verdict.Metrics.FieldCount)
	}
}

func TestPredictMultipart(t *testing.T) {
	resetState()
	SetModel(trainedModel(t))
	mux := newTestMux()

	body, contentType := multipartFile(t, `{"oxygen_level": 20.8, "co2_level": 0.3, "temperature": 21.5, "humidity": 45}`)
	req := httptest.NewRequest(http.MethodPost, "/predict", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var verdict survival.Verdict
	if err := json.Unmarshal(w.Body.Bytes(), &verdict); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if verdict.Status != survival.StatusAlive && verdict.Status != survival.StatusDead {
		t.Fatalf("unexpected status: %q", verdict.Status)
	}
}

func TestPredictCacheStability(t *testing.T) {
	resetState()
	SetModel(trainedModel(t))
	mux := newTestMux()

	reading := survival.Reading{"oxygen_level": 19.0, "co2_level": 0.5}
	first := predictJSON(t, mux, reading)
	second := predictJSON(t, mux, reading)
	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d / %d", first.Code, second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("identical readings produced different verdicts:\n%s\n%s", first.Body.String(), second.Body.String())
	}
}

func TestTrainRejectsInvalidDataset(t *testing.T) {
	resetState()
	mux := newTestMux()

	cases := []struct {
		name    string
		payload string
		want    string
	}{
		{"missing status", `[{"oxygen_level": 20.0}]`, "status"},
		{"single class", `[{"oxygen_level": 20.0, "status": "alive"}, {"oxygen_level": 19.0, "status": "alive"}]`, "at least one"},
		{"invalid status", `[{"oxygen_level": 20.0, "status": "zombie"}, {"oxygen_level": 9.0, "status": "dead"}]`, "invalid status"},
		{"garbage", `not json at all {{{`, ""},
	}
	for _, tc := range cases {
		body, contentType := multipartFile(t, tc.payload)
		req := httptest.NewRequest(http.MethodPost, "/train", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d: %s", tc.name, w.Code, w.Body.String())
			continue
		}
		if tc.want != "" && !strings.Contains(strings.ToLower(w.Body.String()), tc.want) {
			t.Errorf("%s: detail %q does not mention %q", tc.name, w.Body.String(), tc.want)
		}
	}
	if CurrentModel() != nil {
		t.Fatal("invalid dataset must not install a model")
	}
}

func TestTrainRequiresFile(t *testing.T) {
	resetState()
	mux := newTestMux()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	w.WriteField("note", "no file here")
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/train", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
