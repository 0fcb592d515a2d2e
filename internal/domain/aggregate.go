package domain

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"
)

// DailyAggregate is the mean of one field over a UTC calendar day.
type DailyAggregate struct {
	Date  time.Time `json:"date"`
	Mean  float64   `json:"mean"`
	Count int       `json:"count"` // non-missing observations in the bucket
}

// DailyMean buckets records by UTC calendar day and averages field over the
// non-missing values of each day. Days without a single valid value are
// omitted rather than reported as zero. Output is in ascending date order.
func DailyMean(ds Dataset, field string) []DailyAggregate {
	buckets := make(map[time.Time][]float64)
	for _, r := range ds.Records {
		v := r.Value(field)
		if !v.Valid {
			continue
		}
		day := calendarDay(r.Datetime)
		buckets[day] = append(buckets[day], v.Float64)
	}

	out := make([]DailyAggregate, 0, len(buckets))
	for day, values := range buckets {
		mean, err := stats.Mean(values)
		if err != nil {
			continue
		}
		out = append(out, DailyAggregate{Date: day, Mean: mean, Count: len(values)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func calendarDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
