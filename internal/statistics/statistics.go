package statistics

import (
	"fmt"
	"math"
	"sort"
)

// BigPotBB is the pot size, in big blinds, from which a pot counts as big.
const BigPotBB = 50

// HandResult is the outcome of one simulated hand.
type HandResult struct {
	TableID        string
	HandNumber     int
	PotChips       int     // Chips paid out to the winners
	PotBB          float64 // PotChips in big blinds
	WentToShowdown bool    // More than one player reached the end of the hand
	SplitPot       bool    // The pot was shared
	WinningRank    string  // Category of the winning hand, empty when uncontested
	StreetReached  string  // Furthest street dealt: preflop, flop, turn or river
	Actions        int     // Betting actions taken
}

// Statistics aggregates hand results. The zero value is ready to use.
type Statistics struct {
	Hands  int
	SumBB  float64
	SumBB2 float64   // Sum of squares for variance calculation
	Values []float64 // Pot sizes in bb, for median and percentiles

	Showdowns   int
	Uncontested int
	SplitPots   int
	Actions     int

	RankCounts   map[string]int
	StreetCounts map[string]int

	MaxPotChips int
	MaxPotBB    float64
	BigPots     int
}

// Mean returns the mean pot size in big blinds
func (s *Statistics) Mean() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.SumBB / float64(s.Hands)
}

// Variance returns the sample variance of pot sizes
func (s *Statistics) Variance() float64 {
	if s.Hands < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumBB2 - float64(s.Hands)*mean*mean) / float64(s.Hands-1)
}

// StdDev returns the sample standard deviation of pot sizes
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Hands))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Add incorporates a new hand result into the statistics
func (s *Statistics) Add(result HandResult) {
	s.init()

	s.Hands++
	s.SumBB += result.PotBB
	s.SumBB2 += result.PotBB * result.PotBB
	s.Values = append(s.Values, result.PotBB)
	s.Actions += result.Actions

	if result.WentToShowdown {
		s.Showdowns++
		s.RankCounts[result.WinningRank]++
		if result.SplitPot {
			s.SplitPots++
		}
	} else {
		s.Uncontested++
	}
	if result.StreetReached != "" {
		s.StreetCounts[result.StreetReached]++
	}

	if result.PotChips > s.MaxPotChips {
		s.MaxPotChips = result.PotChips
		s.MaxPotBB = result.PotBB
	}
	if result.PotBB >= BigPotBB {
		s.BigPots++
	}
}

// Merge folds other into s.
func (s *Statistics) Merge(other *Statistics) {
	s.init()

	s.Hands += other.Hands
	s.SumBB += other.SumBB
	s.SumBB2 += other.SumBB2
	s.Values = append(s.Values, other.Values...)
	s.Showdowns += other.Showdowns
	s.Uncontested += other.Uncontested
	s.SplitPots += other.SplitPots
	s.Actions += other.Actions
	s.BigPots += other.BigPots
	for k, v := range other.RankCounts {
		s.RankCounts[k] += v
	}
	for k, v := range other.StreetCounts {
		s.StreetCounts[k] += v
	}
	if other.MaxPotChips > s.MaxPotChips {
		s.MaxPotChips = other.MaxPotChips
		s.MaxPotBB = other.MaxPotBB
	}
}

func (s *Statistics) init() {
	if s.RankCounts == nil {
		s.RankCounts = make(map[string]int)
	}
	if s.StreetCounts == nil {
		s.StreetCounts = make(map[string]int)
	}
}

// Median returns the median pot size
func (s *Statistics) Median() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := s.sorted()
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Percentile returns the pot size at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := s.sorted()

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

func (s *Statistics) sorted() []float64 {
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)
	return sorted
}

// ShowdownRate returns the fraction of hands that reached a showdown.
func (s *Statistics) ShowdownRate() float64 {
	if s.Hands == 0 {
		return 0
	}
	return float64(s.Showdowns) / float64(s.Hands)
}

// Ranks returns the winning hand categories seen, most frequent first.
func (s *Statistics) Ranks() []string {
	ranks := make([]string, 0, len(s.RankCounts))
	for k := range s.RankCounts {
		ranks = append(ranks, k)
	}
	sort.Slice(ranks, func(i, j int) bool {
		ci, cj := s.RankCounts[ranks[i]], s.RankCounts[ranks[j]]
		if ci != cj {
			return ci > cj
		}
		return ranks[i] < ranks[j]
	})
	return ranks
}

// Validate checks the counters agree with each other
func (s *Statistics) Validate() error {
	if s.Hands <= 0 {
		return fmt.Errorf("invalid hands count: %d", s.Hands)
	}
	if len(s.Values) != s.Hands {
		return fmt.Errorf("values array length (%d) does not match hands count (%d)",
			len(s.Values), s.Hands)
	}
	if s.Showdowns+s.Uncontested != s.Hands {
		return fmt.Errorf("showdowns (%d) plus uncontested (%d) does not match hands (%d)",
			s.Showdowns, s.Uncontested, s.Hands)
	}
	if s.SplitPots > s.Showdowns {
		return fmt.Errorf("split pots (%d) exceed showdowns (%d)", s.SplitPots, s.Showdowns)
	}
	ranked := 0
	for _, n := range s.RankCounts {
		ranked += n
	}
	if ranked != s.Showdowns {
		return fmt.Errorf("rank counts total (%d) does not match showdowns (%d)", ranked, s.Showdowns)
	}
	return nil
}
