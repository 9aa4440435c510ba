package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"astromon/survival"
)

// Vectorizer turns open-ended sensor readings into fixed-width feature
// vectors. Numeric fields map to one feature each; textual fields are
// one-hot encoded as "field=value". Unknown fields seen at transform
// time are ignored, missing fields become zero.
type Vectorizer struct {
	Names []string `json:"feature_names"`

	index map[string]int
}

func (v *Vectorizer) Fit(records []survival.Reading) error {
	if len(records) == 0 {
		return errors.New("no records to fit")
	}
	seen := make(map[string]bool)
	for _, record := range records {
		for name, value := range record {
			if key, ok := featureKey(name, value); ok {
				seen[key] = true
			}
		}
	}
	if len(seen) == 0 {
		return errors.New("no usable features in records")
	}

	v.Names = make([]string, 0, len(seen))
	for key := range seen {
		v.Names = append(v.Names, key)
	}
	sort.Strings(v.Names)
	v.buildIndex()
	return nil
}

func (v *Vectorizer) Transform(record survival.Reading) ([]float64, error) {
	if len(v.Names) == 0 {
		return nil, errors.New("vectorizer not fitted")
	}
	if v.index == nil {
		v.buildIndex()
	}

	vector := make([]float64, len(v.Names))
	for name, value := range record {
		key, ok := featureKey(name, value)
		if !ok {
			continue
		}
		idx, ok := v.index[key]
		if !ok {
			continue
		}
		if f, isNum := record.Float(name); isNum {
			vector[idx] = f
		} else {
			vector[idx] = 1
		}
	}
	return vector, nil
}

func (v *Vectorizer) FeatureCount() int {
	return len(v.Names)
}

func (v *Vectorizer) buildIndex() {
	v.index = make(map[string]int, len(v.Names))
	for i, name := range v.Names {
		v.index[name] = i
	}
}

func featureKey(name string, value interface{}) (string, bool) {
	switch t := value.(type) {
	case float64, float32, int, int64, json.Number:
		return name, true
	case bool:
		if t {
			return name + "=true", true
		}
		return name + "=false", true
	case string:
		return fmt.Sprintf("%s=%s", name, t), true
	default:
		return "", false
	}
}
