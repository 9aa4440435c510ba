package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"astromon/survival"
)

func TestCheckHealthSetsTrained(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(survival.Health{Status: "healthy", ModelTrained: true, TrainingSamples: 42})
	}))
	defer srv.Close()

	m := New(Config{BaseURL: srv.URL})
	if m.Trained() {
		t.Fatal("monitor should start untrained")
	}
	m.CheckHealth()
	m.Wait()
	if !m.Trained() {
		t.Fatal("trained flag not set from health response")
	}
}

func TestCheckHealthFailureLeavesReadiness(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := New(Config{BaseURL: srv.URL})
	m.CheckHealth()
	m.Wait()
	if m.Trained() {
		t.Fatal("trained flag must stay false on failed health check")
	}
	if m.LastError() == "" {
		t.Fatal("expected error to be recorded")
	}
}

func TestCheckStatusSkippedWhenUntrained(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
	}))
	defer srv.Close()

	m := New(Config{BaseURL: srv.URL})
	m.CheckStatus(survival.Reading{"oxygen_level": 20.0})
	m.Wait()

	if atomic.LoadInt32(&requests) != 0 {
		t.Fatal("untrained monitor must not hit the network")
	}
	if m.LastVerdict() != nil {
		t.Fatal("no verdict should be stored")
	}
}

func TestTrainFromDataset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/train" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("expected multipart 'file' field: %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		defer file.Close()
		var samples []survival.TrainingSample
		if err := json.NewDecoder(file).Decode(&samples); err != nil {
			t.Errorf("uploaded dataset not decodable: %v", err)
		}
		json.NewEncoder(w).Encode(survival.TrainingOutcome{
			Message:       "Training completed successfully",
			Stats:         survival.TrainingStats{Samples: len(samples)},
			ModelAccuracy: "94.44%",
		})
	}))
	defer srv.Close()

	m := New(Config{BaseURL: srv.URL})
	var got survival.TrainingOutcome
	m.OnTrainingComplete(func(outcome survival.TrainingOutcome) { got = outcome })

	m.TrainFromDataset([]survival.TrainingSample{
		{Fields: survival.Reading{"oxygen_level": 20.0}, Status: survival.StatusAlive},
		{Fields: survival.Reading{"oxygen_level": 9.0}, Status: survival.StatusDead},
	})
	m.Wait()

	if !m.Trained() {
		t.Fatal("trained flag not set after successful training")
	}
	if got.ModelAccuracy != "94.44%" || got.Stats.Samples != 2 {
		t.Fatalf("unexpected outcome: %+v", got)
	}
}

func TestTrainFailureRecordsResponseBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail": "training data must include 'status' field"}`))
	}))
	defer srv.Close()

	m := New(Config{BaseURL: srv.URL})
	trainingCalled := false
	m.OnTrainingComplete(func(survival.TrainingOutcome) { trainingCalled = true })

	m.TrainFromDataset([]survival.TrainingSample{{Fields: survival.Reading{"oxygen_level": 20.0}}})
	m.Wait()

	if m.Trained() {
		t.Fatal("failed training must not mark the monitor trained")
	}
	if trainingCalled {
		t.Fatal("training callback fired on failure")
	}
	if !strings.Contains(m.LastError(), "status 400") || !strings.Contains(m.LastError(), "'status' field") {
		t.Fatalf("error should carry status and body, got %q", m.LastError())
	}
}

func TestTrainFromBundledFileMissing(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
	}))
	defer srv.Close()

	m := New(Config{BaseURL: srv.URL, DatasetPath: filepath.Join(t.TempDir(), "missing.json")})
	m.TrainFromBundledFile()
	m.Wait()

	if atomic.LoadInt32(&requests) != 0 {
		t.Fatal("missing dataset must not trigger a request")
	}
	if !strings.Contains(m.LastError(), "bundled dataset unavailable") {
		t.Fatalf("unexpected error: %q", m.LastError())
	}
}

func TestCheckStatusDeliversVerdict(t *testing.T) {
	verdict := survival.Verdict{
		Status:     survival.StatusAlive,
		Confidence: 0.92,
		RiskLevel:  survival.RiskLow,
		Feedback:   []string{"OK: Oxygen level is good"},
		Metrics: survival.VerdictMetrics{
			ProvidedFields: []string{"oxygen_level"},
			FieldCount:     1,
			Probabilities:  survival.Probabilities{Alive: 0.92, Dead: 0.08},
		},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict-json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req struct {
			Data survival.Reading `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Data == nil {
			t.Errorf("request body missing 'data': %v", err)
		}
		json.NewEncoder(w).Encode(verdict)
	}))
	defer srv.Close()

	m := New(Config{BaseURL: srv.URL})
	m.mu.Lock()
	m.trained = true
	m.mu.Unlock()

	statusCalls := 0
	criticalCalls := 0
	m.OnStatusUpdated(func(survival.Verdict) { statusCalls++ })
	m.OnCriticalAlert(func(survival.Verdict) { criticalCalls++ })

	m.CheckStatus(survival.Reading{"oxygen_level": 20.5})
	m.Wait()

	if statusCalls != 1 {
		t.Fatalf("expected 1 status callback, got %d", statusCalls)
	}
	if criticalCalls != 0 {
		t.Fatalf("low risk verdict must not raise critical alerts, got %d", criticalCalls)
	}
	got := m.LastVerdict()
	if got == nil || got.Status != survival.StatusAlive || got.Confidence != 0.92 {
		t.Fatalf("unexpected stored verdict: %+v", got)
	}
}

func TestCheckStatusFailureKeepsLastVerdict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Prediction failed"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := New(Config{BaseURL: srv.URL})
	m.mu.Lock()
	m.trained = true
	m.mu.Unlock()

	m.CheckStatus(survival.Reading{"oxygen_level": 20.0})
	m.Wait()

	if m.LastVerdict() != nil {
		t.Fatal("failed check must not store a verdict")
	}
	if !strings.Contains(m.LastError(), "status 500") {
		t.Fatalf("unexpected error: %q", m.LastError())
	}
}

func TestCriticalAlertRaisedOncePerVerdict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(survival.Verdict{
			Status:    survival.StatusDead,
			RiskLevel: survival.RiskCritical,
			Feedback:  []string{},
		})
	}))
	defer srv.Close()

	m := New(Config{BaseURL: srv.URL})
	m.mu.Lock()
	m.trained = true
	m.mu.Unlock()

	var criticalCalls int32
	m.OnCriticalAlert(func(survival.Verdict) { atomic.AddInt32(&criticalCalls, 1) })

	m.CheckStatus(survival.Reading{"oxygen_level": 4.0})
	m.Wait()

	// dead + CRITICAL satisfies both alert conditions, still one alert
	if n := atomic.LoadInt32(&criticalCalls); n != 1 {
		t.Fatalf("expected exactly 1 critical alert, got %d", n)
	}
}

func TestUpdateSensorFieldAliases(t *testing.T) {
	m := New(Config{})

	m.UpdateSensorField("oxygen", 5.0)
	m.UpdateSensorField("OXYGEN_LEVEL", 20.5) // same field, overwrites
	m.UpdateSensorField("CO2_Level", 0.3)
	m.UpdateSensorField(" temp ", 21.0)
	m.UpdateSensorField("rad", 0.1)
	m.UpdateSensorField("warp_core", 9000) // unknown, ignored

	reading := m.Reading()
	want := map[string]interface{}{
		"oxygen_level": 20.5,
		"co2_level":    0.3,
		"temperature":  21.0,
		"radiation":    0.1,
	}
	if len(reading) != len(want) {
		t.Fatalf("unexpected reading: %v", reading)
	}
	for name, value := range want {
		if reading[name] != value {
			t.Errorf("field %q = %v, want %v", name, reading[name], value)
		}
	}
}

func TestSetCustomField(t *testing.T) {
	m := New(Config{})
	m.SetCustomField("suit_id", "EVA-2")

	reading := m.Reading()
	if reading["suit_id"] != "EVA-2" {
		t.Fatalf("custom field missing: %v", reading)
	}

	// Reading returns a copy, mutating it must not leak back
	reading["suit_id"] = "tampered"
	if m.Reading()["suit_id"] != "EVA-2" {
		t.Fatal("Reading must return a copy")
	}
}
