package client

import (
	"strings"

	"go.uber.org/zap"
)

// sensorAliases maps accepted field spellings to the canonical wire
// names. Lookups are case-insensitive.
var sensorAliases = map[string]string{
	"oxygen":            "oxygen_level",
	"oxygen_level":      "oxygen_level",
	"o2":                "oxygen_level",
	"co2":               "co2_level",
	"co2_level":         "co2_level",
	"temperature":       "temperature",
	"temp":              "temperature",
	"heat":              "temperature",
	"humidity":          "humidity",
	"radiation":         "radiation",
	"rad":               "radiation",
	"food":              "food_supply_days",
	"food_supply":       "food_supply_days",
	"food_supply_days":  "food_supply_days",
	"water":             "water_supply_days",
	"water_supply":      "water_supply_days",
	"water_supply_days": "water_supply_days",
}

// UpdateSensorField sets a sensor measurement on the current reading.
// Unrecognized names log a warning and leave the reading unchanged.
func (m *Monitor) UpdateSensorField(name string, value interface{}) {
	canonical, ok := sensorAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		zap.S().Warnw("unknown sensor field ignored", "field", name)
		return
	}

	m.mu.Lock()
	m.reading[canonical] = value
	m.mu.Unlock()
}

// SetCustomField sets an arbitrary extra field on the reading without
// alias checking; the service accepts any field set.
func (m *Monitor) SetCustomField(name string, value interface{}) {
	m.mu.Lock()
	m.reading[name] = value
	m.mu.Unlock()
}
