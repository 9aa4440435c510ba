package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"astromon/db"
	"astromon/survival"
)

const apiVersion = "1.0.0"

func RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", handleRoot)
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("POST /train", handleTrain)
	mux.HandleFunc("POST /predict", handlePredict)
	mux.HandleFunc("POST /predict-json", handlePredictJSON)
	mux.HandleFunc("GET /model-info", handleModelInfo)
	mux.HandleFunc("GET /history", handleHistory)
}

func handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, survival.ServiceInfo{
		Status:      "online",
		Message:     "Astronaut Survival AI API",
		Version:     apiVersion,
		ModelLoaded: CurrentModel() != nil,
		Endpoints:   []string{"/train", "/predict", "/predict-json", "/model-info", "/health"},
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	health := survival.Health{Status: "healthy"}
	if m := CurrentModel(); m != nil {
		health.ModelTrained = true
		health.FeaturesCount = m.Stats.Features
		health.TrainingSamples = m.Stats.Samples
	}
	respondJSON(w, health)
}

func handleModelInfo(w http.ResponseWriter, r *http.Request) {
	m := CurrentModel()
	if m == nil {
		respondJSON(w, map[string]string{"message": "No model trained yet"})
		return
	}

	respondJSON(w, map[string]interface{}{
		"model_type":     "RandomForestClassifier",
		"training_stats": m.Stats,
		"model_params": map[string]int{
			"n_estimators":      m.Forest.NumTrees,
			"max_depth":         m.Forest.MaxDepth,
			"min_samples_split": m.Forest.MinSamplesSplit,
		},
		"feature_names": m.Stats.FeatureNames,
	})
}

func handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	predictions, err := db.QueryPredictions(limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load prediction history")
		return
	}
	runs, err := db.LoadTrainingLog()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load training log")
		return
	}

	respondJSON(w, map[string]interface{}{
		"predictions":   predictions,
		"training_runs": runs,
	})
}

// respondJSON 统一JSON响应
func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

// respondError mirrors the {"detail": ...} error body clients expect.
func respondError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
