package survival

// CalculateRiskLevel scores a reading against habitat safety thresholds
// and maps the score to an ordinal risk level. A dead classification is
// always CRITICAL regardless of score.
func CalculateRiskLevel(data Reading, status string) RiskLevel {
	score := 0

	if o2, ok := data.Float("oxygen_level"); ok {
		switch {
		case o2 < 18 || o2 > 25:
			score += 3
		case o2 < 19.5 || o2 > 23.5:
			score++
		}
	}
	if co2, ok := data.Float("co2_level"); ok && co2 > 1.0 {
		score += 3
	}
	if rad, ok := data.Float("radiation"); ok && rad > 0.5 {
		score += 3
	}
	if food, ok := data.Float("food_supply_days"); ok && food < 7 {
		score += 2
	}
	if water, ok := data.Float("water_supply_days"); ok && water < 3 {
		score += 2
	}

	switch {
	case status == StatusDead:
		return RiskCritical
	case score >= 5:
		return RiskHigh
	case score >= 2:
		return RiskMedium
	default:
		return RiskLow
	}
}
