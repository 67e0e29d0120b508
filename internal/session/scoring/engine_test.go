package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPerfectBonus(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 10, cfg.PerfectBonus(20, 20))
	assert.Equal(t, 0, cfg.PerfectBonus(19, 20))
	assert.Equal(t, 5, cfg.PerfectBonus(10, 10))
	// integer division: 15 questions earn one bonus chunk, not 1.5
	assert.Equal(t, 5, cfg.PerfectBonus(15, 15))
	assert.Equal(t, 0, cfg.PerfectBonus(0, 0))
}

func TestPointsEarned(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 110, cfg.PointsEarned(20, 20))
	assert.Equal(t, 95, cfg.PointsEarned(19, 20))
	assert.Equal(t, 55, cfg.PointsEarned(10, 10))
	assert.Equal(t, 0, cfg.PointsEarned(0, 20))
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0, Percentage(0, 0))
	assert.Equal(t, 100, Percentage(20, 20))
	assert.Equal(t, 95, Percentage(19, 20))
	// 2/3 rounds to 67, not truncates to 66
	assert.Equal(t, 67, Percentage(2, 3))
	assert.Equal(t, 33, Percentage(1, 3))
}
