package models

import "math"

// SessionResult is produced once per completed play session
type SessionResult struct {
	Level int `json:"level"`
	// Score is the raw session score. For coloring it is the artistic score (0-100).
	Score int `json:"score"`
	// Accuracy is a percentage: answer accuracy for quizzes, canvas coverage for coloring.
	Accuracy         float64 `json:"accuracy"`
	RemainingSeconds int     `json:"remainingSeconds"`
	Correct          int     `json:"correct"`
	Total            int     `json:"total"`
	TimedOut         bool    `json:"timedOut"`
}

// Normalize clamps out-of-range values into the valid domain instead of rejecting them
func (r SessionResult) Normalize(maxLevel int) SessionResult {
	if maxLevel < 1 {
		maxLevel = 1
	}
	r.Level = clamp(r.Level, 1, maxLevel)
	r.Score = max(r.Score, 0)
	r.RemainingSeconds = max(r.RemainingSeconds, 0)
	r.Total = max(r.Total, 0)
	r.Correct = clamp(r.Correct, 0, r.Total)
	if r.Accuracy < 0 || math.IsNaN(r.Accuracy) {
		r.Accuracy = 0
	}
	if r.Accuracy > 100 {
		r.Accuracy = 100
	}
	return r
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
