package ml

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"astromon/survival"
)

// ParseDataset decodes a training dataset. The payload is either a JSON
// array of labelled readings or one JSON object per line.
func ParseDataset(content []byte) ([]survival.TrainingSample, error) {
	var samples []survival.TrainingSample
	if err := json.Unmarshal(content, &samples); err == nil {
		return samples, nil
	}

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var sample survival.TrainingSample
		if err := json.Unmarshal(line, &sample); err != nil {
			return nil, fmt.Errorf("invalid dataset line: %w", err)
		}
		samples = append(samples, sample)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, errors.New("dataset is empty")
	}
	return samples, nil
}

// ValidateDataset enforces the labelling contract: every sample carries
// a status of alive or dead, and both classes are represented.
func ValidateDataset(samples []survival.TrainingSample) error {
	if len(samples) == 0 {
		return errors.New("dataset is empty")
	}

	missing := 0
	invalid := 0
	alive := 0
	dead := 0
	for _, sample := range samples {
		switch sample.Status {
		case survival.StatusAlive:
			alive++
		case survival.StatusDead:
			dead++
		case "":
			missing++
		default:
			invalid++
		}
	}

	if missing > 0 {
		return errors.New("training data must include 'status' field with values 'alive' or 'dead'")
	}
	if invalid > 0 {
		return fmt.Errorf("found %d invalid status values. Must be 'alive' or 'dead'", invalid)
	}
	if alive == 0 || dead == 0 {
		return errors.New("training data must contain at least one 'alive' and one 'dead' example")
	}
	return nil
}

// DatasetLabels maps sample statuses to class indexes.
func DatasetLabels(samples []survival.TrainingSample) []int {
	labels := make([]int, len(samples))
	for i, sample := range samples {
		if sample.Status == survival.StatusAlive {
			labels[i] = LabelAlive
		} else {
			labels[i] = LabelDead
		}
	}
	return labels
}
