package domain

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// CorrelationMatrix holds pairwise Pearson coefficients indexed by Fields in
// both dimensions. Undefined coefficients are missing.
type CorrelationMatrix struct {
	Fields []string      `json:"fields"`
	Values [][]NullFloat `json:"values"`
}

// At returns the coefficient for the i-th and j-th fields.
func (m CorrelationMatrix) At(i, j int) NullFloat {
	return m.Values[i][j]
}

// Get returns the coefficient for two named fields.
func (m CorrelationMatrix) Get(a, b string) (NullFloat, bool) {
	i := slices.Index(m.Fields, a)
	j := slices.Index(m.Fields, b)
	if i < 0 || j < 0 {
		return Missing, false
	}
	return m.Values[i][j], true
}

// Correlate computes the Pearson matrix over fields using pairwise-complete
// observations: each pair only looks at rows where both values are present,
// so a row missing TEMP still feeds the PM2.5/RAIN coefficient.
//
// A field with fewer than two values has every entry missing, diagonal
// included. Otherwise the diagonal is exactly 1. Off-diagonal pairs with fewer
// than two shared rows, or with a constant side, are missing.
func Correlate(ds Dataset, fields []string) CorrelationMatrix {
	n := len(fields)
	m := CorrelationMatrix{
		Fields: slices.Clone(fields),
		Values: make([][]NullFloat, n),
	}
	for i := range m.Values {
		m.Values[i] = make([]NullFloat, n)
	}

	counts := make([]int, n)
	for i, f := range fields {
		for _, r := range ds.Records {
			if r.Value(f).Valid {
				counts[i]++
			}
		}
	}

	for i := 0; i < n; i++ {
		if counts[i] < 2 {
			continue
		}
		m.Values[i][i] = Float(1)
		for j := i + 1; j < n; j++ {
			if counts[j] < 2 {
				continue
			}
			r := pairwisePearson(ds.Records, fields[i], fields[j])
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m
}

func pairwisePearson(records []Record, a, b string) NullFloat {
	xs := make([]float64, 0, len(records))
	ys := make([]float64, 0, len(records))
	for _, r := range records {
		x, y := r.Value(a), r.Value(b)
		if x.Valid && y.Valid {
			xs = append(xs, x.Float64)
			ys = append(ys, y.Float64)
		}
	}
	if len(xs) < 2 {
		return Missing
	}
	c := stat.Correlation(xs, ys, nil)
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return Missing
	}
	// Rounding can push a perfect correlation just past ±1.
	return Float(math.Max(-1, math.Min(1, c)))
}
