package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pm25Dataset(rows []Record) Dataset {
	return NewDataset("test.csv", []string{FieldPM25}, rows, nil)
}

func TestFilterByYear(t *testing.T) {
	ds := pm25Dataset([]Record{
		rec(hour(2013, 12, 31, 23), map[string]*float64{FieldPM25: f(1)}),
		rec(hour(2014, 1, 1, 0), map[string]*float64{FieldPM25: f(2)}),
		rec(hour(2014, 6, 1, 0), map[string]*float64{FieldPM25: nil}),
		rec(hour(2015, 1, 1, 0), map[string]*float64{FieldPM25: f(3)}),
	})

	got := FilterByYear(ds, 2014)
	require.Equal(t, 2, got.Len())
	for _, r := range got.Records {
		assert.Equal(t, 2014, r.Datetime.Year())
	}

	empty := FilterByYear(ds, 1999)
	assert.Equal(t, 0, empty.Len())
	assert.NotNil(t, empty.Records)

	// source untouched
	assert.Equal(t, 4, ds.Len())
}

func TestFilterByYear_PartitionsDataset(t *testing.T) {
	var rows []Record
	start := hour(2013, 12, 30, 0)
	for i := 0; i < 24*5; i += 7 {
		rows = append(rows, rec(start.Add(time.Duration(i)*time.Hour), map[string]*float64{FieldPM25: f(float64(i))}))
	}
	ds := pm25Dataset(rows)

	var rebuilt []Record
	for _, y := range Years(ds) {
		rebuilt = append(rebuilt, FilterByYear(ds, y).Records...)
	}

	assert.Empty(t, cmp.Diff(ds.Records, rebuilt))
}

func TestFilterByRange(t *testing.T) {
	ds := pm25Dataset([]Record{
		rec(hour(2013, 3, 1, 0), map[string]*float64{FieldPM25: f(10)}),
		rec(hour(2013, 3, 1, 1), map[string]*float64{FieldPM25: f(60)}),
		rec(hour(2013, 3, 1, 2), map[string]*float64{FieldPM25: nil}),
		rec(hour(2013, 3, 1, 3), map[string]*float64{FieldPM25: f(40)}),
	})

	got := FilterByRange(ds, FieldPM25, 0, 50)

	require.Equal(t, 2, got.Len())
	assert.Equal(t, 10.0, got.Records[0].Value(FieldPM25).Float64)
	assert.Equal(t, 40.0, got.Records[1].Value(FieldPM25).Float64)
	assert.Equal(t, 4, ds.Len())
}

func TestFilterByRange_Bounds(t *testing.T) {
	ds := pm25Dataset([]Record{
		rec(hour(2013, 3, 1, 0), map[string]*float64{FieldPM25: f(0)}),
		rec(hour(2013, 3, 1, 1), map[string]*float64{FieldPM25: f(50)}),
		rec(hour(2013, 3, 1, 2), map[string]*float64{FieldPM25: f(50.0001)}),
	})

	tests := []struct {
		name      string
		field     string
		low, high float64
		want      int
	}{
		{"inclusive both ends", FieldPM25, 0, 50, 2},
		{"degenerate range", FieldPM25, 50, 50, 1},
		{"inverted range", FieldPM25, 50, 0, 0},
		{"absent field", FieldTemp, -1000, 1000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterByRange(ds, tt.field, tt.low, tt.high).Len())
		})
	}
}

func TestYears(t *testing.T) {
	ds := pm25Dataset([]Record{
		rec(hour(2015, 1, 1, 0), nil),
		rec(hour(2013, 3, 1, 0), nil),
		rec(hour(2013, 4, 1, 0), nil),
	})
	assert.Equal(t, []int{2013, 2015}, Years(ds))
	assert.Empty(t, Years(Dataset{}))
}

func TestHead(t *testing.T) {
	ds := pm25Dataset([]Record{
		rec(hour(2013, 3, 1, 0), map[string]*float64{FieldPM25: f(1)}),
		rec(hour(2013, 3, 1, 1), map[string]*float64{FieldPM25: f(2)}),
		rec(hour(2013, 3, 1, 2), map[string]*float64{FieldPM25: f(3)}),
	})

	assert.Len(t, Head(ds, 2), 2)
	assert.Len(t, Head(ds, 10), 3)
	assert.Empty(t, Head(ds, 0))
	assert.Equal(t, 1.0, Head(ds, 1)[0].Value(FieldPM25).Float64)
}
