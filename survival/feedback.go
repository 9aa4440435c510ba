package survival

import (
	"fmt"
	"strconv"
)

// GenerateFeedback builds the human-readable per-field assessment for a
// reading together with an overall status line.
func GenerateFeedback(data Reading, status string, confidence float64) []string {
	feedback := make([]string, 0, 8)

	if o2, ok := data.Float("oxygen_level"); ok {
		switch {
		case o2 < 18:
			feedback = append(feedback, fmt.Sprintf("CRITICAL: Oxygen at %s%% - Immediate action required!", num(o2)))
		case o2 < 19.5:
			feedback = append(feedback, fmt.Sprintf("WARNING: Oxygen at %s%% - Below safe minimum", num(o2)))
		case o2 > 23.5:
			feedback = append(feedback, fmt.Sprintf("WARNING: Oxygen at %s%% - Above safe maximum", num(o2)))
		default:
			feedback = append(feedback, fmt.Sprintf("OK: Oxygen at %s%% - Normal", num(o2)))
		}
	}

	if co2, ok := data.Float("co2_level"); ok {
		switch {
		case co2 > 1.0:
			feedback = append(feedback, fmt.Sprintf("CRITICAL: CO2 at %s%% - Scrubbers failing!", num(co2)))
		case co2 > 0.5:
			feedback = append(feedback, fmt.Sprintf("WARNING: CO2 at %s%% - Monitor closely", num(co2)))
		default:
			feedback = append(feedback, fmt.Sprintf("OK: CO2 at %s%% - Normal", num(co2)))
		}
	}

	// "heat" is an accepted legacy alias for temperature
	if temp, ok := data.Float("temperature"); ok {
		feedback = append(feedback, temperatureFeedback(temp))
	} else if temp, ok := data.Float("heat"); ok {
		feedback = append(feedback, temperatureFeedback(temp))
	}

	if humidity, ok := data.Float("humidity"); ok {
		switch {
		case humidity < 30:
			feedback = append(feedback, fmt.Sprintf("WARNING: Humidity %s%% - Too dry", num(humidity)))
		case humidity > 70:
			feedback = append(feedback, fmt.Sprintf("WARNING: Humidity %s%% - Too humid", num(humidity)))
		default:
			feedback = append(feedback, fmt.Sprintf("OK: Humidity %s%% - Normal", num(humidity)))
		}
	}

	if rad, ok := data.Float("radiation"); ok {
		switch {
		case rad > 0.5:
			feedback = append(feedback, fmt.Sprintf("CRITICAL: Radiation %s mSv - Seek shelter!", num(rad)))
		case rad > 0.1:
			feedback = append(feedback, fmt.Sprintf("WARNING: Radiation %s mSv - Elevated levels", num(rad)))
		default:
			feedback = append(feedback, fmt.Sprintf("OK: Radiation %s mSv - Safe", num(rad)))
		}
	}

	if food, ok := data.Float("food_supply_days"); ok {
		switch {
		case food < 7:
			feedback = append(feedback, fmt.Sprintf("CRITICAL: Food supply %s days - Emergency!", num(food)))
		case food < 30:
			feedback = append(feedback, fmt.Sprintf("WARNING: Food supply %s days - Ration required", num(food)))
		default:
			feedback = append(feedback, fmt.Sprintf("OK: Food supply %s days - Adequate", num(food)))
		}
	}

	if water, ok := data.Float("water_supply_days"); ok {
		switch {
		case water < 3:
			feedback = append(feedback, fmt.Sprintf("CRITICAL: Water supply %s days - Emergency!", num(water)))
		case water < 14:
			feedback = append(feedback, fmt.Sprintf("WARNING: Water supply %s days - Ration required", num(water)))
		default:
			feedback = append(feedback, fmt.Sprintf("OK: Water supply %s days - Adequate", num(water)))
		}
	}

	switch {
	case status == StatusAlive && confidence > 0.8:
		feedback = append(feedback, fmt.Sprintf("OK: Overall status: STABLE (confidence: %.1f%%)", confidence*100))
	case status == StatusAlive:
		feedback = append(feedback, fmt.Sprintf("WARNING: Overall status: MARGINAL (confidence: %.1f%%)", confidence*100))
	default:
		feedback = append(feedback, fmt.Sprintf("WARNING: Overall status: CRITICAL (confidence: %.1f%%)", confidence*100))
	}

	return feedback
}

func temperatureFeedback(temp float64) string {
	switch {
	case temp < 15:
		return fmt.Sprintf("WARNING: Temperature %s°C - Too cold", num(temp))
	case temp > 30:
		return fmt.Sprintf("WARNING: Temperature %s°C - Too hot", num(temp))
	default:
		return fmt.Sprintf("OK: Temperature %s°C - Comfortable", num(temp))
	}
}

// num formats a measurement the way it was supplied: no trailing zeros.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
