package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	ds := weatherDataset([]map[string]*float64{
		{FieldPM25: f(1), FieldTemp: f(5)},
		{FieldPM25: f(2), FieldTemp: nil},
		{FieldPM25: f(3), FieldTemp: nil},
		{FieldPM25: f(4), FieldTemp: nil},
		{FieldPM25: nil, FieldTemp: nil},
	})

	got := Describe(ds, []string{FieldPM25, FieldTemp, FieldRain})
	require.Len(t, got, 3)

	pm := got[0]
	assert.Equal(t, FieldPM25, pm.Field)
	assert.Equal(t, 4, pm.Count)
	assert.Equal(t, 1, pm.Missing)
	assert.Equal(t, 2.5, pm.Mean.Float64)
	assert.InDelta(t, math.Sqrt(5.0/3.0), pm.Std.Float64, 1e-12)
	assert.Equal(t, 1.0, pm.Min.Float64)
	assert.Equal(t, 1.5, pm.Q1.Float64)
	assert.Equal(t, 2.5, pm.Median.Float64)
	assert.Equal(t, 3.5, pm.Q3.Float64)
	assert.Equal(t, 4.0, pm.Max.Float64)

	temp := got[1]
	assert.Equal(t, 1, temp.Count)
	assert.Equal(t, 4, temp.Missing)
	assert.Equal(t, 5.0, temp.Mean.Float64)
	assert.False(t, temp.Std.Valid, "std needs two values")
	assert.Equal(t, 5.0, temp.Q1.Float64)
	assert.Equal(t, 5.0, temp.Q3.Float64)

	rain := got[2]
	assert.Equal(t, 0, rain.Count)
	assert.Equal(t, 5, rain.Missing)
	assert.False(t, rain.Mean.Valid)
	assert.False(t, rain.Max.Valid)
}
