package http

import (
	"errors"
	"os"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"astromon/ml"
	"astromon/survival"
)

var (
	modelMu   sync.RWMutex
	model     *ml.Model
	modelPath string

	trainCfg = ml.TrainConfig{NumTrees: 100, MaxDepth: 10, MinSamplesSplit: 5}

	// verdicts for identical readings are cached until the next training run
	verdictCache, _ = lru.New[string, survival.Verdict](256)
)

// SetModel installs a trained model and drops cached verdicts.
func SetModel(m *ml.Model) {
	modelMu.Lock()
	model = m
	modelMu.Unlock()
	verdictCache.Purge()
}

// CurrentModel returns the installed model, nil when untrained.
func CurrentModel() *ml.Model {
	modelMu.RLock()
	defer modelMu.RUnlock()
	return model
}

// SetModelPath configures where trained models persist and where a
// saved model is lazily loaded from.
func SetModelPath(path string) {
	modelMu.Lock()
	modelPath = path
	modelMu.Unlock()
}

// SetTrainConfig overrides forest hyperparameters for /train.
func SetTrainConfig(cfg ml.TrainConfig) {
	modelMu.Lock()
	trainCfg = cfg
	modelMu.Unlock()
}

// activeModel returns the in-memory model, falling back to the saved
// bundle on disk the first time prediction is requested.
func activeModel() *ml.Model {
	if m := CurrentModel(); m != nil {
		return m
	}

	modelMu.Lock()
	defer modelMu.Unlock()
	if model != nil {
		return model
	}
	if modelPath == "" {
		return nil
	}
	if _, err := os.Stat(modelPath); err != nil {
		return nil
	}
	loaded, err := ml.LoadModel(modelPath)
	if err != nil {
		zap.S().Warnw("failed to load saved model", "path", modelPath, "error", err)
		return nil
	}
	model = loaded
	return model
}

// ReloadModel re-reads the saved bundle, replacing the in-memory model.
func ReloadModel() error {
	modelMu.RLock()
	path := modelPath
	modelMu.RUnlock()
	if path == "" {
		return errors.New("model path not configured")
	}
	loaded, err := ml.LoadModel(path)
	if err != nil {
		return err
	}
	SetModel(loaded)
	return nil
}
