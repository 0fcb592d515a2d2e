package domain

import "github.com/montanaflynn/stats"

// FieldSummary is one row of the descriptive statistics table.
type FieldSummary struct {
	Field   string    `json:"field"`
	Count   int       `json:"count"`
	Missing int       `json:"missing"`
	Mean    NullFloat `json:"mean"`
	Std     NullFloat `json:"std"` // sample standard deviation
	Min     NullFloat `json:"min"`
	Q1      NullFloat `json:"q1"`
	Median  NullFloat `json:"median"`
	Q3      NullFloat `json:"q3"`
	Max     NullFloat `json:"max"`
}

// Describe summarizes each field over its non-missing values. Quartiles use
// the median-of-halves method.
func Describe(ds Dataset, fields []string) []FieldSummary {
	out := make([]FieldSummary, 0, len(fields))
	for _, f := range fields {
		out = append(out, describeField(ds.Records, f))
	}
	return out
}

func describeField(records []Record, field string) FieldSummary {
	s := FieldSummary{Field: field}
	values := make([]float64, 0, len(records))
	for _, r := range records {
		v := r.Value(field)
		if !v.Valid {
			s.Missing++
			continue
		}
		values = append(values, v.Float64)
	}
	s.Count = len(values)
	if s.Count == 0 {
		return s
	}

	mean, _ := stats.Mean(values)
	lo, _ := stats.Min(values)
	hi, _ := stats.Max(values)
	median, _ := stats.Median(values)
	s.Mean, s.Min, s.Max, s.Median = Float(mean), Float(lo), Float(hi), Float(median)

	if s.Count < 2 {
		s.Q1, s.Q3 = s.Median, s.Median
		return s
	}
	std, _ := stats.StandardDeviationSample(values)
	s.Std = Float(std)
	if q, err := stats.Quartile(values); err == nil {
		s.Q1, s.Q3 = Float(q.Q1), Float(q.Q3)
	}
	return s
}
