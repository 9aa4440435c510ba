// Package client implements the monitor-side view of the survival
// prediction service: it owns the current sensor reading, issues
// asynchronous health/train/predict calls and notifies subscribers of
// the results.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"astromon/survival"
)

// Config carries the client construction parameters. The trained flag
// is client-owned state, not ambient globals.
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	DatasetPath string
}

// Monitor drives status checks against the prediction service. All
// network operations run on their own goroutine and report through the
// registered callbacks; none of them retries.
type Monitor struct {
	cfg    Config
	client *http.Client

	mu          sync.Mutex
	reading     survival.Reading
	trained     bool
	lastVerdict *survival.Verdict
	lastError   string

	onStatus   []func(survival.Verdict)
	onCritical []func(survival.Verdict)
	onTraining []func(survival.TrainingOutcome)

	wg sync.WaitGroup
}

func New(cfg Config) *Monitor {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8000"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.DatasetPath == "" {
		cfg.DatasetPath = "data/training_data.json"
	}
	return &Monitor{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		reading: make(survival.Reading),
	}
}

// OnStatusUpdated subscribes to every successfully received verdict.
func (m *Monitor) OnStatusUpdated(fn func(survival.Verdict)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onStatus = append(m.onStatus, fn)
}

// OnCriticalAlert subscribes to verdicts whose risk level is CRITICAL
// or whose status is dead. Raised at most once per completed check.
func (m *Monitor) OnCriticalAlert(fn func(survival.Verdict)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onCritical = append(m.onCritical, fn)
}

// OnTrainingComplete subscribes to successful training outcomes.
func (m *Monitor) OnTrainingComplete(fn func(survival.TrainingOutcome)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onTraining = append(m.onTraining, fn)
}

// Trained reports whether the service is known to hold a trained model.
func (m *Monitor) Trained() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trained
}

// LastVerdict returns the most recently received verdict, nil before
// the first successful check.
func (m *Monitor) LastVerdict() *survival.Verdict {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastVerdict == nil {
		return nil
	}
	verdict := *m.lastVerdict
	return &verdict
}

// LastError returns the most recently recorded error message.
func (m *Monitor) LastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastError
}

// Reading returns a copy of the current sensor reading.
func (m *Monitor) Reading() survival.Reading {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reading.Clone()
}

// Wait blocks until all in-flight calls have completed. Hosts call it
// at frame boundaries or on shutdown.
func (m *Monitor) Wait() {
	m.wg.Wait()
}

// CheckHealth asynchronously probes GET /health and updates the
// trained flag from the response. Failures leave readiness unchanged.
func (m *Monitor) CheckHealth() {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.doCheckHealth()
	}()
}

func (m *Monitor) doCheckHealth() {
	resp, err := m.client.Get(m.cfg.BaseURL + "/health")
	if err != nil {
		m.setError(fmt.Sprintf("health check failed: %v", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		m.setError(fmt.Sprintf("health check returned status %d", resp.StatusCode))
		return
	}

	var health survival.Health
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		m.setError(fmt.Sprintf("health check: invalid response: %v", err))
		return
	}

	m.mu.Lock()
	m.trained = health.ModelTrained
	m.mu.Unlock()
	zap.S().Debugw("health check ok", "model_trained", health.ModelTrained, "samples", health.TrainingSamples)
}

// TrainFromDataset asynchronously uploads the given samples as a JSON
// file to POST /train.
func (m *Monitor) TrainFromDataset(samples []survival.TrainingSample) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		payload, err := json.Marshal(samples)
		if err != nil {
			m.setError(fmt.Sprintf("training data serialization failed: %v", err))
			return
		}
		m.doTrain(payload)
	}()
}

// TrainFromBundledFile trains from the dataset file configured at
// construction. The file is checked before any network action.
func (m *Monitor) TrainFromBundledFile() {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		payload, err := os.ReadFile(m.cfg.DatasetPath)
		if err != nil {
			m.setError(fmt.Sprintf("bundled dataset unavailable: %v", err))
			return
		}
		m.doTrain(payload)
	}()
}

func (m *Monitor) doTrain(dataset []byte) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "training_data.json")
	if err != nil {
		m.setError(fmt.Sprintf("training upload failed: %v", err))
		return
	}
	if _, err := part.Write(dataset); err != nil {
		m.setError(fmt.Sprintf("training upload failed: %v", err))
		return
	}
	if err := writer.Close(); err != nil {
		m.setError(fmt.Sprintf("training upload failed: %v", err))
		return
	}

	resp, err := m.client.Post(m.cfg.BaseURL+"/train", writer.FormDataContentType(), &body)
	if err != nil {
		m.setError(fmt.Sprintf("training request failed: %v", err))
		return
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		m.setError(fmt.Sprintf("training returned status %d: %s", resp.StatusCode, bytes.TrimSpace(raw)))
		return
	}

	var outcome survival.TrainingOutcome
	if err := json.Unmarshal(raw, &outcome); err != nil {
		m.setError(fmt.Sprintf("training response invalid: %v", err))
		return
	}

	m.mu.Lock()
	m.trained = true
	subscribers := append(([]func(survival.TrainingOutcome))(nil), m.onTraining...)
	m.mu.Unlock()

	zap.S().Infow("training complete",
		"samples", outcome.Stats.Samples,
		"accuracy", outcome.ModelAccuracy,
	)
	for _, fn := range subscribers {
		fn(outcome)
	}
}

// CheckStatus asynchronously submits a reading to POST /predict-json.
// Before a successful training call it is a no-op apart from a warning
// log; concurrent checks are permitted and the last response to arrive
// wins.
func (m *Monitor) CheckStatus(reading survival.Reading) {
	if !m.Trained() {
		zap.S().Warn("status check skipped: model not trained, call TrainFromDataset first")
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.doCheckStatus(reading)
	}()
}

func (m *Monitor) doCheckStatus(reading survival.Reading) {
	payload, err := json.Marshal(map[string]survival.Reading{"data": reading})
	if err != nil {
		m.setError(fmt.Sprintf("reading serialization failed: %v", err))
		return
	}

	resp, err := m.client.Post(m.cfg.BaseURL+"/predict-json", "application/json", bytes.NewReader(payload))
	if err != nil {
		m.setError(fmt.Sprintf("status check failed: %v", err))
		return
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		m.setError(fmt.Sprintf("status check returned status %d: %s", resp.StatusCode, bytes.TrimSpace(raw)))
		return
	}

	var verdict survival.Verdict
	if err := json.Unmarshal(raw, &verdict); err != nil {
		m.setError(fmt.Sprintf("status response invalid: %v", err))
		return
	}

	m.mu.Lock()
	m.lastVerdict = &verdict
	statusSubs := append(([]func(survival.Verdict))(nil), m.onStatus...)
	criticalSubs := append(([]func(survival.Verdict))(nil), m.onCritical...)
	m.mu.Unlock()

	for _, fn := range statusSubs {
		fn(verdict)
	}
	if verdict.RiskLevel == survival.RiskCritical || verdict.Status == survival.StatusDead {
		for _, fn := range criticalSubs {
			fn(verdict)
		}
	}
}

func (m *Monitor) setError(msg string) {
	m.mu.Lock()
	m.lastError = msg
	m.mu.Unlock()
	zap.S().Error(msg)
}
