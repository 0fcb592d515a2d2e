package chart

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/couchcryptid/air-quality-dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func sampleDaily() []domain.DailyAggregate {
	start := time.Date(2013, 3, 1, 0, 0, 0, 0, time.UTC)
	out := make([]domain.DailyAggregate, 5)
	for i := range out {
		out[i] = domain.DailyAggregate{Date: start.AddDate(0, 0, i), Mean: float64(10 * (i + 1)), Count: 24}
	}
	return out
}

func sampleMatrix() domain.CorrelationMatrix {
	return domain.CorrelationMatrix{
		Fields: []string{"PM2.5", "TEMP", "RAIN"},
		Values: [][]domain.NullFloat{
			{domain.Float(1), domain.Float(-0.13), domain.Missing},
			{domain.Float(-0.13), domain.Float(1), domain.Missing},
			{domain.Missing, domain.Missing, domain.Missing},
		},
	}
}

func TestWriteDailyPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDailyPNG(&buf, "PM2.5", sampleDaily()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestWriteDailyPNG_EmptySeries(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDailyPNG(&buf, "PM2.5", nil))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestDailyLine_Labels(t *testing.T) {
	p, err := DailyLine("NO2", sampleDaily())
	require.NoError(t, err)
	assert.Equal(t, "Daily NO2 (resampled)", p.Title.Text)
	assert.Equal(t, "NO2", p.Y.Label.Text)
}

func TestWriteCorrelationPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCorrelationPNG(&buf, sampleMatrix()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestCorrelationHeatmap_EmptyMatrix(t *testing.T) {
	_, err := CorrelationHeatmap(domain.CorrelationMatrix{})
	require.ErrorIs(t, err, ErrEmptyMatrix)
}

func TestMatrixGrid_RowZeroOnTop(t *testing.T) {
	g := matrixGrid{sampleMatrix()}

	c, r := g.Dims()
	assert.Equal(t, 3, c)
	assert.Equal(t, 3, r)

	// Grid row 2 is the top of the plot and holds matrix row 0.
	assert.InDelta(t, 1, g.Z(0, 2), 0)
	assert.InDelta(t, -0.13, g.Z(1, 2), 1e-12)
	assert.True(t, math.IsNaN(g.Z(2, 2)))
	assert.True(t, math.IsNaN(g.Z(0, 0)))
}

func TestCellLabels(t *testing.T) {
	labels := cellLabels(sampleMatrix())
	require.Len(t, labels.Labels, 9)
	assert.Equal(t, "1.00", labels.Labels[0])
	assert.Equal(t, "-0.13", labels.Labels[1])
	assert.Equal(t, "NA", labels.Labels[2])
	assert.InDelta(t, 2, labels.XYs[0].Y, 0)
}
