package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyMean(t *testing.T) {
	ds := pm25Dataset([]Record{
		rec(hour(2013, 1, 1, 0), map[string]*float64{FieldPM25: f(10)}),
		rec(hour(2013, 1, 1, 1), map[string]*float64{FieldPM25: f(20)}),
		rec(hour(2013, 1, 1, 2), map[string]*float64{FieldPM25: nil}),
		rec(hour(2013, 1, 2, 0), map[string]*float64{FieldPM25: f(30)}),
	})

	got := DailyMean(ds, FieldPM25)

	want := []DailyAggregate{
		{Date: time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC), Mean: 15, Count: 2},
		{Date: time.Date(2013, 1, 2, 0, 0, 0, 0, time.UTC), Mean: 30, Count: 1},
	}
	assert.Empty(t, cmp.Diff(want, got))
}

func TestDailyMean_OmitsDaysWithoutValues(t *testing.T) {
	ds := pm25Dataset([]Record{
		rec(hour(2013, 1, 1, 0), map[string]*float64{FieldPM25: f(10)}),
		rec(hour(2013, 1, 2, 0), map[string]*float64{FieldPM25: nil}),
		rec(hour(2013, 1, 2, 5), map[string]*float64{FieldPM25: nil}),
		rec(hour(2013, 1, 3, 0), map[string]*float64{FieldPM25: f(0)}),
	})

	got := DailyMean(ds, FieldPM25)

	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Date.Day())
	assert.Equal(t, 3, got[1].Date.Day())
	assert.Equal(t, 0.0, got[1].Mean)
}

func TestDailyMean_GroupsByUTCCalendarDay(t *testing.T) {
	beijing := time.FixedZone("CST", 8*3600)
	ds := pm25Dataset([]Record{
		// 2013-01-02 07:00 in Beijing is still 2013-01-01 in UTC
		rec(time.Date(2013, 1, 2, 7, 0, 0, 0, beijing), map[string]*float64{FieldPM25: f(4)}),
		rec(hour(2013, 1, 1, 20), map[string]*float64{FieldPM25: f(8)}),
	})

	got := DailyMean(ds, FieldPM25)

	require.Len(t, got, 1)
	assert.Equal(t, time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC), got[0].Date)
	assert.Equal(t, 6.0, got[0].Mean)
}

func TestDailyMean_RegroupingIsIdempotent(t *testing.T) {
	var rows []Record
	start := hour(2013, 3, 1, 0)
	for i := 0; i < 24*4; i++ {
		v := float64(i%17) * 3.5
		var p *float64
		if i%5 != 0 {
			p = f(v)
		}
		rows = append(rows, rec(start.Add(time.Duration(i)*time.Hour), map[string]*float64{FieldPM25: p}))
	}
	first := DailyMean(pm25Dataset(rows), FieldPM25)

	regrouped := make([]Record, 0, len(first))
	for _, agg := range first {
		regrouped = append(regrouped, rec(agg.Date, map[string]*float64{FieldPM25: f(agg.Mean)}))
	}
	second := DailyMean(pm25Dataset(regrouped), FieldPM25)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Date, second[i].Date)
		assert.Equal(t, first[i].Mean, second[i].Mean)
	}
}

func TestDailyMean_Empty(t *testing.T) {
	assert.Empty(t, DailyMean(Dataset{}, FieldPM25))
}
