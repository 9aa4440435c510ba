package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"astromon/survival"
)

// TrainConfig mirrors the forest hyperparameters.
type TrainConfig struct {
	NumTrees        int
	MaxDepth        int
	MinSamplesSplit int
	Seed            int64
}

// Model bundles the full prediction pipeline: vectorizer, scaler and
// forest, plus the stats recorded at training time. The whole bundle
// persists as a single JSON file.
type Model struct {
	Vectorizer *Vectorizer           `json:"vectorizer"`
	Scaler     *Scaler               `json:"scaler"`
	Forest     *RandomForest         `json:"forest"`
	Stats      survival.TrainingStats `json:"training_stats"`
	Accuracy   float64               `json:"accuracy"`
}

// TrainModel fits the pipeline on a validated dataset. Accuracy is
// measured on the training set, matching how the service reports it.
func TrainModel(samples []survival.TrainingSample, cfg TrainConfig) (*Model, error) {
	if err := ValidateDataset(samples); err != nil {
		return nil, err
	}

	records := make([]survival.Reading, len(samples))
	for i, sample := range samples {
		records[i] = sample.Fields
	}
	labels := DatasetLabels(samples)

	vectorizer := &Vectorizer{}
	if err := vectorizer.Fit(records); err != nil {
		return nil, fmt.Errorf("vectorize: %w", err)
	}
	vectors := make([][]float64, len(records))
	for i, record := range records {
		vector, err := vectorizer.Transform(record)
		if err != nil {
			return nil, err
		}
		vectors[i] = vector
	}

	scaler := &Scaler{}
	scaled, err := scaler.FitTransform(vectors)
	if err != nil {
		return nil, fmt.Errorf("scale: %w", err)
	}

	forest := &RandomForest{
		NumTrees:        cfg.NumTrees,
		MaxDepth:        cfg.MaxDepth,
		MinSamplesSplit: cfg.MinSamplesSplit,
		Seed:            cfg.Seed,
	}
	if err := forest.Train(scaled, labels); err != nil {
		return nil, fmt.Errorf("train forest: %w", err)
	}

	accuracy, err := forest.Score(scaled, labels)
	if err != nil {
		return nil, err
	}

	alive := 0
	for _, label := range labels {
		if label == LabelAlive {
			alive++
		}
	}

	return &Model{
		Vectorizer: vectorizer,
		Scaler:     scaler,
		Forest:     forest,
		Accuracy:   accuracy,
		Stats: survival.TrainingStats{
			Samples:      len(samples),
			Features:     vectorizer.FeatureCount(),
			FeatureNames: vectorizer.Names,
			AliveCount:   alive,
			DeadCount:    len(samples) - alive,
		},
	}, nil
}

// Predict classifies a single reading.
func (m *Model) Predict(data survival.Reading) (status string, confidence float64, probs survival.Probabilities, err error) {
	if m == nil || m.Vectorizer == nil || m.Scaler == nil || m.Forest == nil {
		return "", 0, survival.Probabilities{}, errors.New("model not trained")
	}

	vector, err := m.Vectorizer.Transform(data)
	if err != nil {
		return "", 0, survival.Probabilities{}, err
	}
	scaled, err := m.Scaler.Transform(vector)
	if err != nil {
		return "", 0, survival.Probabilities{}, err
	}
	label, dist, err := m.Forest.Predict(scaled)
	if err != nil {
		return "", 0, survival.Probabilities{}, err
	}

	probs = survival.Probabilities{Dead: dist[LabelDead], Alive: dist[LabelAlive]}
	confidence = probs.Alive
	status = survival.StatusAlive
	if label == LabelDead {
		status = survival.StatusDead
		confidence = probs.Dead
	}
	return status, confidence, probs, nil
}

// AccuracyString formats accuracy as the percentage shown in training
// responses, e.g. "94.44%".
func (m *Model) AccuracyString() string {
	return fmt.Sprintf("%.2f%%", m.Accuracy*100)
}

func (m *Model) Save(path string) error {
	if m == nil || m.Forest == nil || len(m.Forest.Trees) == 0 {
		return errors.New("model not trained")
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func LoadModel(path string) (*Model, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var model Model
	if err := json.Unmarshal(payload, &model); err != nil {
		return nil, err
	}
	if model.Vectorizer == nil || model.Scaler == nil || model.Forest == nil {
		return nil, errors.New("model file incomplete")
	}
	return &model, nil
}
