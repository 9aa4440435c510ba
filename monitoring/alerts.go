// Package monitoring forwards habitat alerts to operator channels.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"astromon/survival"
)

// AlertLevel 告警级别
type AlertLevel string

const (
	Info     AlertLevel = "info"
	Warning  AlertLevel = "warning"
	Critical AlertLevel = "critical"
)

// Alert 告警结构
type Alert struct {
	Level     AlertLevel             `json:"level"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Source    string                 `json:"source"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// AlertSystem delivers alerts to an optional webhook, with a cooldown
// so a flapping sensor cannot flood the channel.
type AlertSystem struct {
	mu         sync.Mutex
	webhookURL string
	cooldown   time.Duration
	lastSent   map[string]time.Time
	httpClient *http.Client

	history []Alert
}

// NewAlertSystem creates an alert sink. An empty webhook URL keeps
// alerts log-only.
func NewAlertSystem(webhookURL string, cooldown time.Duration) *AlertSystem {
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	return &AlertSystem{
		webhookURL: webhookURL,
		cooldown:   cooldown,
		lastSent:   make(map[string]time.Time),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Raise records an alert and pushes it to the webhook when the
// per-title cooldown allows.
func (a *AlertSystem) Raise(level AlertLevel, title, message string, metadata map[string]interface{}) {
	alert := Alert{
		Level:     level,
		Title:     title,
		Message:   message,
		Source:    "astromon",
		Timestamp: time.Now().UTC(),
		Metadata:  metadata,
	}

	a.mu.Lock()
	a.history = append(a.history, alert)
	if len(a.history) > 100 {
		a.history = a.history[len(a.history)-100:]
	}
	last, seen := a.lastSent[title]
	throttled := seen && time.Since(last) < a.cooldown
	if !throttled {
		a.lastSent[title] = time.Now()
	}
	url := a.webhookURL
	a.mu.Unlock()

	zap.S().Warnw("alert raised", "level", level, "title", title, "message", message)

	if url == "" || throttled {
		return
	}
	a.deliver(url, alert)
}

// RaiseVerdict maps a critical verdict onto an alert.
func (a *AlertSystem) RaiseVerdict(verdict survival.Verdict) {
	title := "Astronaut at risk"
	if verdict.Status == survival.StatusDead {
		title = "Astronaut status: DEAD"
	}
	a.Raise(Critical, title,
		fmt.Sprintf("status=%s risk=%s confidence=%.2f", verdict.Status, verdict.RiskLevel, verdict.Confidence),
		map[string]interface{}{
			"risk_level": verdict.RiskLevel,
			"feedback":   verdict.Feedback,
		})
}

// History returns a copy of the retained alerts, oldest first.
func (a *AlertSystem) History() []Alert {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Alert, len(a.history))
	copy(out, a.history)
	return out
}

func (a *AlertSystem) deliver(url string, alert Alert) {
	payload, err := json.Marshal(alert)
	if err != nil {
		zap.S().Errorw("alert serialization failed", "error", err)
		return
	}
	resp, err := a.httpClient.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		zap.S().Errorw("alert delivery failed", "error", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		zap.S().Errorw("alert delivery rejected", "status", resp.StatusCode)
	}
}
