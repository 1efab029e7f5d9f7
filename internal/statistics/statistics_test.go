package statistics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func showdown(potBB float64, rank string) HandResult {
	return HandResult{
		PotChips:       int(potBB * 20),
		PotBB:          potBB,
		WentToShowdown: true,
		WinningRank:    rank,
		StreetReached:  "river",
		Actions:        8,
	}
}

func uncontested(potBB float64) HandResult {
	return HandResult{
		PotChips:      int(potBB * 20),
		PotBB:         potBB,
		StreetReached: "preflop",
		Actions:       2,
	}
}

func TestStatistics_Empty(t *testing.T) {
	stats := &Statistics{}

	assert.Zero(t, stats.Mean())
	assert.Zero(t, stats.Variance())
	assert.Zero(t, stats.StdDev())
	assert.Zero(t, stats.StdError())
	assert.Zero(t, stats.Median())
	assert.Zero(t, stats.Percentile(0.5))
	assert.Zero(t, stats.ShowdownRate())
	assert.Empty(t, stats.Ranks())
	assert.Error(t, stats.Validate())
}

func TestStatistics_MultipleValues(t *testing.T) {
	stats := &Statistics{}
	stats.Add(showdown(10, "Pair"))
	stats.Add(uncontested(1.5))
	stats.Add(showdown(20, "Pair"))
	stats.Add(showdown(4, "Flush"))

	assert.Equal(t, 4, stats.Hands)
	assert.InDelta(t, 8.875, stats.Mean(), 1e-9)
	assert.InDelta(t, 7, stats.Median(), 1e-9)
	assert.Equal(t, 3, stats.Showdowns)
	assert.Equal(t, 1, stats.Uncontested)
	assert.InDelta(t, 0.75, stats.ShowdownRate(), 1e-9)
	assert.Equal(t, 26, stats.Actions)
	assert.Equal(t, []string{"Pair", "Flush"}, stats.Ranks())
	assert.Equal(t, 3, stats.StreetCounts["river"])
	assert.Equal(t, 1, stats.StreetCounts["preflop"])
	require.NoError(t, stats.Validate())
}

func TestStatistics_Percentiles(t *testing.T) {
	stats := &Statistics{}
	for i := 1; i <= 5; i++ {
		stats.Add(uncontested(float64(i)))
	}

	assert.InDelta(t, 1, stats.Percentile(0), 1e-9)
	assert.InDelta(t, 3, stats.Percentile(0.5), 1e-9)
	assert.InDelta(t, 5, stats.Percentile(1), 1e-9)
	assert.InDelta(t, 2, stats.Percentile(0.25), 1e-9)
}

func TestStatistics_Variance(t *testing.T) {
	stats := &Statistics{}
	for _, v := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		stats.Add(uncontested(v))
	}

	assert.InDelta(t, 5, stats.Mean(), 1e-9)
	assert.InDelta(t, 32.0/7.0, stats.Variance(), 1e-9)
	assert.InDelta(t, math.Sqrt(32.0/7.0), stats.StdDev(), 1e-9)

	low, high := stats.ConfidenceInterval95()
	assert.Less(t, low, stats.Mean())
	assert.Greater(t, high, stats.Mean())
}

func TestStatistics_PotSizeTracking(t *testing.T) {
	stats := &Statistics{}
	stats.Add(showdown(12, "Straight"))
	stats.Add(showdown(60, "Full House"))
	stats.Add(uncontested(1.5))

	assert.Equal(t, 1200, stats.MaxPotChips)
	assert.InDelta(t, 60, stats.MaxPotBB, 1e-9)
	assert.Equal(t, 1, stats.BigPots)
}

func TestStatistics_SplitPots(t *testing.T) {
	stats := &Statistics{}
	split := showdown(10, "Straight")
	split.SplitPot = true
	stats.Add(split)
	stats.Add(showdown(10, "Pair"))

	assert.Equal(t, 1, stats.SplitPots)
	require.NoError(t, stats.Validate())
}

func TestStatistics_Merge(t *testing.T) {
	a, b := &Statistics{}, &Statistics{}
	a.Add(showdown(10, "Pair"))
	a.Add(uncontested(1.5))
	b.Add(showdown(80, "Four of a Kind"))

	var total Statistics
	total.Merge(a)
	total.Merge(b)

	assert.Equal(t, 3, total.Hands)
	assert.Equal(t, 2, total.Showdowns)
	assert.Equal(t, 1, total.RankCounts["Four of a Kind"])
	assert.Equal(t, 1600, total.MaxPotChips)
	assert.Equal(t, 1, total.BigPots)
	assert.InDelta(t, a.SumBB+b.SumBB, total.SumBB, 1e-9)
	require.NoError(t, total.Validate())
}

func TestStatistics_Validate(t *testing.T) {
	t.Run("values mismatch", func(t *testing.T) {
		stats := &Statistics{}
		stats.Add(showdown(10, "Pair"))
		stats.Values = append(stats.Values, 3)
		assert.ErrorContains(t, stats.Validate(), "values array length")
	})

	t.Run("outcome mismatch", func(t *testing.T) {
		stats := &Statistics{}
		stats.Add(showdown(10, "Pair"))
		stats.Uncontested++
		assert.ErrorContains(t, stats.Validate(), "does not match hands")
	})

	t.Run("too many split pots", func(t *testing.T) {
		stats := &Statistics{}
		stats.Add(uncontested(2))
		stats.SplitPots = 1
		assert.ErrorContains(t, stats.Validate(), "split pots")
	})

	t.Run("rank mismatch", func(t *testing.T) {
		stats := &Statistics{}
		stats.Add(showdown(10, "Pair"))
		stats.RankCounts["Flush"]++
		assert.ErrorContains(t, stats.Validate(), "rank counts")
	})
}
