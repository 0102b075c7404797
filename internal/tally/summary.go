package tally

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Summary describes the shape of an output distribution.
type Summary struct {
	Total    int `json:"total" msgpack:"total"`
	Distinct int `json:"distinct" msgpack:"distinct"`
	// Mode is the most frequent output; ModeShare is its fraction of Total.
	Mode      int64   `json:"mode" msgpack:"mode"`
	ModeShare float64 `json:"mode_share" msgpack:"mode_share"`
	// EntropyBits is the Shannon entropy of the empirical distribution.
	EntropyBits float64 `json:"entropy_bits" msgpack:"entropy_bits"`
	// FactorHits counts trials whose output is a divisor d of the problem
	// size with 1 < d < n.
	FactorHits int `json:"factor_hits" msgpack:"factor_hits"`
}

// Summarize computes a Summary from sorted entries for problem size n.
func Summarize(entries []Entry, n uint64) Summary {
	var s Summary
	s.Distinct = len(entries)
	for _, e := range entries {
		s.Total += e.Count
		if IsNontrivialFactor(e.Output, n) {
			s.FactorHits += e.Count
		}
	}
	if s.Total == 0 {
		return s
	}

	s.Mode = entries[0].Output
	s.ModeShare = float64(entries[0].Count) / float64(s.Total)

	p := make([]float64, len(entries))
	for i, e := range entries {
		p[i] = float64(e.Count) / float64(s.Total)
	}
	// Abs folds the -0 that stat.Entropy yields for a single outcome.
	s.EntropyBits = math.Abs(stat.Entropy(p)) / math.Ln2
	return s
}

// IsNontrivialFactor reports whether v divides n with 1 < v < n.
func IsNontrivialFactor(v int64, n uint64) bool {
	if v <= 1 || uint64(v) >= n {
		return false
	}
	return n%uint64(v) == 0
}
