package survival

import (
	"encoding/json"
	"errors"
	"sort"
)

const (
	StatusAlive = "alive"
	StatusDead  = "dead"
)

// RiskLevel 风险等级
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// Reading is the open-ended set of sensor measurements describing the
// astronaut and habitat. Callers may populate any fields; the service
// accepts all of them.
type Reading map[string]interface{}

// Float returns the named field coerced to float64.
func (r Reading) Float(key string) (float64, bool) {
	v, ok := r[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// FieldNames returns the populated field names in sorted order.
func (r Reading) FieldNames() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a shallow copy of the reading.
func (r Reading) Clone() Reading {
	out := make(Reading, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// TrainingSample is a reading labelled with a survival status. On the
// wire it is a single flat object: the sensor fields plus "status".
type TrainingSample struct {
	Fields Reading
	Status string
}

func (s TrainingSample) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(s.Fields)+1)
	for k, v := range s.Fields {
		flat[k] = v
	}
	flat["status"] = s.Status
	return json.Marshal(flat)
}

func (s *TrainingSample) UnmarshalJSON(data []byte) error {
	var flat map[string]interface{}
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	status, _ := flat["status"].(string)
	delete(flat, "status")
	s.Fields = Reading(flat)
	s.Status = status
	return nil
}

// Validate checks the labelled status.
func (s TrainingSample) Validate() error {
	if s.Status == "" {
		return errors.New("training sample missing status field")
	}
	if s.Status != StatusAlive && s.Status != StatusDead {
		return errors.New("status must be 'alive' or 'dead'")
	}
	return nil
}

// Probabilities 存活/死亡预测概率
type Probabilities struct {
	Alive float64 `json:"alive"`
	Dead  float64 `json:"dead"`
}

// VerdictMetrics describes which fields the service actually consumed.
type VerdictMetrics struct {
	ProvidedFields []string      `json:"provided_fields"`
	FieldCount     int           `json:"field_count"`
	Probabilities  Probabilities `json:"prediction_probabilities"`
}

// Verdict is the service's classification of a reading. Immutable once
// produced.
type Verdict struct {
	Status     string         `json:"astronomer_status"`
	Confidence float64        `json:"confidence"`
	RiskLevel  RiskLevel      `json:"risk_level"`
	Feedback   []string       `json:"feedback"`
	Metrics    VerdictMetrics `json:"metrics"`
}

// TrainingStats 训练统计
type TrainingStats struct {
	Samples      int      `json:"samples"`
	Features     int      `json:"features"`
	FeatureNames []string `json:"feature_names"`
	AliveCount   int      `json:"alive_count"`
	DeadCount    int      `json:"dead_count"`
}

// TrainingOutcome is returned once per training call.
type TrainingOutcome struct {
	Message       string        `json:"message"`
	Stats         TrainingStats `json:"stats"`
	ModelAccuracy string        `json:"model_accuracy"`
}

// Health is the payload of GET /health.
type Health struct {
	Status          string `json:"status"`
	ModelTrained    bool   `json:"model_trained"`
	FeaturesCount   int    `json:"features_count"`
	TrainingSamples int    `json:"training_samples"`
}

// ServiceInfo is the payload of GET /.
type ServiceInfo struct {
	Status      string   `json:"status"`
	Message     string   `json:"message"`
	Version     string   `json:"version"`
	ModelLoaded bool     `json:"model_loaded"`
	Endpoints   []string `json:"endpoints"`
}
