// Package scoring computes quiz percentages and ranked point awards.
package scoring

import "math"

// Config holds the ranked point formula constants.
type Config struct {
	PointsPerCorrect int
	BonusPerChunk    int
	ChunkSize        int
}

// Default returns the production formula: 5 points per correct answer,
// plus 5 bonus points per block of 10 questions on a perfect score.
func Default() Config {
	return Config{
		PointsPerCorrect: 5,
		BonusPerChunk:    5,
		ChunkSize:        10,
	}
}

// PerfectBonus returns the bonus awarded only when every question was
// answered correctly. Integer division: a 15-question perfect run earns
// one chunk of bonus, not one and a half.
func (c Config) PerfectBonus(score, total int) int {
	if total == 0 || score != total {
		return 0
	}
	return total / c.ChunkSize * c.BonusPerChunk
}

// PointsEarned returns the rank points awarded for a completed attempt.
func (c Config) PointsEarned(score, total int) int {
	return score*c.PointsPerCorrect + c.PerfectBonus(score, total)
}

// Percentage returns round(100 * score / total), and 0 when total is 0.
func Percentage(score, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(score) / float64(total)))
}
