package domain

// Clamp01 bounds v to [0, 1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ReinforcedConfidence applies one reinforcement step:
//
//	c' = min(1, c + (1-c)*increment)
//
// Each step closes a fixed fraction of the remaining distance to 1, so
// repeated reinforcement has diminishing returns and never reaches 1.
func ReinforcedConfidence(confidence, increment float64) float64 {
	return Clamp01(confidence + (1-confidence)*increment)
}

// RaisedTension applies one tension step:
//
//	t' = min(1, t + delta)
//
// Deliberately linear: the same delta always adds the same amount, however
// high tension already is. The asymmetry against ReinforcedConfidence is the
// defining mechanic: doubt compounds faster than certainty.
func RaisedTension(tension, delta float64) float64 {
	return Clamp01(tension + delta)
}
