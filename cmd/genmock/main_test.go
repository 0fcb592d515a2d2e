package main

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/air-quality-dashboard/internal/adapter/csvfile"
	"github.com/couchcryptid/air-quality-dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() options {
	return options{
		start:       time.Date(2013, 12, 31, 0, 0, 0, 0, time.UTC),
		days:        3,
		seed:        7,
		station:     "Dongsi",
		missingRate: 0.05,
		garbageRate: 0.01,
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, generate(&a, testOptions()))
	require.NoError(t, generate(&b, testOptions()))
	assert.Equal(t, a.String(), b.String())

	other := testOptions()
	other.seed = 8
	var c bytes.Buffer
	require.NoError(t, generate(&c, other))
	assert.NotEqual(t, a.String(), c.String())
}

func TestGenerate_ParsesAsDataset(t *testing.T) {
	for _, withDatetime := range []bool{false, true} {
		opts := testOptions()
		opts.withDatetime = withDatetime

		var buf bytes.Buffer
		require.NoError(t, generate(&buf, opts))

		ds, err := csvfile.NewReader(slog.Default()).Parse("mock.csv", &buf)
		require.NoError(t, err)

		assert.Equal(t, 72, ds.Len())
		assert.Equal(t, domain.NumericFields, ds.Fields)
		assert.Equal(t, []int{2013, 2014}, domain.Years(ds))
		assert.Equal(t, opts.start, ds.Records[0].Datetime)
		assert.Equal(t, "Dongsi", ds.Records[0].Station)
		assert.NotEmpty(t, ds.Records[0].WindDirection)
	}
}

func TestYearsLabel(t *testing.T) {
	assert.Equal(t, "no years", yearsLabel(nil))
	assert.Equal(t, "2013", yearsLabel([]int{2013}))
	assert.Equal(t, "2013-2017", yearsLabel([]int{2013, 2014, 2017}))
}
