package ml

import (
	"errors"
	"math/rand"
)

// Survival labels. Dead is class 0 so that probability vectors read
// [dead, alive].
const (
	LabelDead  = 0
	LabelAlive = 1

	numClasses = 2
)

// RandomForest bags a set of decision trees trained on bootstrap
// resamples of the training set. Predictions average the per-tree
// class distributions.
type RandomForest struct {
	Trees []*DecisionTree `json:"trees"`

	NumTrees        int   `json:"num_trees"`
	MaxDepth        int   `json:"max_depth"`
	MinSamplesSplit int   `json:"min_samples_split"`
	Seed            int64 `json:"seed"`
}

func (rf *RandomForest) Train(features [][]float64, labels []int) error {
	if len(features) == 0 || len(labels) == 0 {
		return errors.New("features or labels empty")
	}
	if len(features) != len(labels) {
		return errors.New("features and labels size mismatch")
	}
	if rf.NumTrees <= 0 {
		rf.NumTrees = 100
	}
	if rf.MaxDepth <= 0 {
		rf.MaxDepth = 10
	}
	if rf.MinSamplesSplit <= 0 {
		rf.MinSamplesSplit = 5
	}

	rnd := rand.New(rand.NewSource(rf.Seed))
	rf.Trees = make([]*DecisionTree, 0, rf.NumTrees)
	for t := 0; t < rf.NumTrees; t++ {
		sampleFeatures := make([][]float64, len(features))
		sampleLabels := make([]int, len(labels))
		for i := range features {
			j := rnd.Intn(len(features))
			sampleFeatures[i] = features[j]
			sampleLabels[i] = labels[j]
		}

		tree := &DecisionTree{
			MaxDepth:        rf.MaxDepth,
			MinSamplesSplit: rf.MinSamplesSplit,
		}
		if err := tree.Train(sampleFeatures, sampleLabels); err != nil {
			return err
		}
		rf.Trees = append(rf.Trees, tree)
	}
	return nil
}

// Predict returns the majority class and the averaged class
// probability distribution across all trees.
func (rf *RandomForest) Predict(features []float64) (int, []float64, error) {
	if len(rf.Trees) == 0 {
		return 0, nil, errors.New("model not trained")
	}

	probs := make([]float64, numClasses)
	for _, tree := range rf.Trees {
		_, treeProbs, err := tree.Predict(features)
		if err != nil {
			return 0, nil, err
		}
		for i := range probs {
			if i < len(treeProbs) {
				probs[i] += treeProbs[i]
			}
		}
	}
	for i := range probs {
		probs[i] /= float64(len(rf.Trees))
	}

	best := 0
	for i := 1; i < len(probs); i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return best, probs, nil
}

// Score reports accuracy against a labelled set.
func (rf *RandomForest) Score(features [][]float64, labels []int) (float64, error) {
	if len(features) == 0 || len(features) != len(labels) {
		return 0, errors.New("invalid evaluation set")
	}
	correct := 0
	for i, vector := range features {
		label, _, err := rf.Predict(vector)
		if err != nil {
			return 0, err
		}
		if label == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(features)), nil
}
