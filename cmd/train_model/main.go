package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"astromon/ml"
)

func main() {
	datasetPath := flag.String("dataset", "./data/training_data.json", "training dataset path")
	modelPath := flag.String("model_path", "./models/survival.model", "model output path")
	numTrees := flag.Int("num_trees", 100, "number of trees")
	maxDepth := flag.Int("max_depth", 10, "max tree depth")
	minSplit := flag.Int("min_samples_split", 5, "min samples to split a node")
	flag.Parse()

	content, err := os.ReadFile(*datasetPath)
	if err != nil {
		log.Fatalf("failed to read dataset: %v", err)
	}
	samples, err := ml.ParseDataset(content)
	if err != nil {
		log.Fatalf("failed to parse dataset: %v", err)
	}

	model, err := ml.TrainModel(samples, ml.TrainConfig{
		NumTrees:        *numTrees,
		MaxDepth:        *maxDepth,
		MinSamplesSplit: *minSplit,
	})
	if err != nil {
		log.Fatalf("failed to train model: %v", err)
	}

	log.Printf("samples=%d features=%d alive=%d dead=%d accuracy=%s",
		model.Stats.Samples, model.Stats.Features,
		model.Stats.AliveCount, model.Stats.DeadCount, model.AccuracyString())

	if err := os.MkdirAll(filepath.Dir(*modelPath), 0o755); err != nil {
		log.Fatalf("failed to create model dir: %v", err)
	}
	if err := model.Save(*modelPath); err != nil {
		log.Fatalf("failed to save model: %v", err)
	}

	fmt.Printf("model saved to %s\n", *modelPath)
}
