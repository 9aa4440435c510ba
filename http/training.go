package http

import (
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"astromon/db"
	"astromon/ml"
	"astromon/survival"
)

// handleTrain fits a fresh model from an uploaded dataset: multipart
// form field "file" containing a JSON array of labelled readings (or
// one object per line).
func handleTrain(w http.ResponseWriter, r *http.Request) {
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

	samples, err := ml.ParseDataset(content)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid training data: %v", err))
		return
	}
	if err := ml.ValidateDataset(samples); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	modelMu.RLock()
	cfg := trainCfg
	path := modelPath
	modelMu.RUnlock()

	trained, err := ml.TrainModel(samples, cfg)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Training failed: %v", err))
		return
	}

	if path != "" {
		if err := trained.Save(path); err != nil {
			zap.S().Warnw("failed to persist model", "path", path, "error", err)
		}
	}
	SetModel(trained)

	if err := db.SaveTrainingRun(trained.Stats, trained.Accuracy); err != nil {
		zap.S().Warnw("failed to record training run", "error", err)
	}

	zap.S().Infow("training completed",
		"samples", trained.Stats.Samples,
		"features", trained.Stats.Features,
		"accuracy", trained.Accuracy,
	)

	respondJSON(w, survival.TrainingOutcome{
		Message:       "Training completed successfully",
		Stats:         trained.Stats,
		ModelAccuracy: trained.AccuracyString(),
	})
}
