package csvfile

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/air-quality-dashboard/internal/domain"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Reader loads air-quality CSV files into datasets.
// It implements domain.DatasetLoader.
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a CSV reader.
func NewReader(logger *slog.Logger) *Reader {
	return &Reader{logger: logger}
}

// Load opens path and parses it. A missing file is an ErrFileNotFound input
// error; anything that is not header-led delimited text with the calendar
// columns is an ErrParse input error.
func (r *Reader) Load(ctx context.Context, path string) (domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return domain.Dataset{}, err
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Dataset{}, domain.NewFileNotFoundError(path, err)
		}
		return domain.Dataset{}, domain.NewParseError(path, "open: %w", err)
	}
	defer file.Close()

	start := time.Now()
	ds, err := r.Parse(path, file)
	if err != nil {
		return domain.Dataset{}, err
	}

	for _, field := range ds.Fields {
		if n := ds.Skips[field]; n > 0 {
			r.logger.Debug("coerced unparseable cells to missing",
				"path", path,
				"field", field,
				"count", n,
			)
		}
	}
	r.logger.Info("dataset loaded",
		"path", path,
		"rows", ds.Len(),
		"fields", ds.Fields,
		"coercion_skips", ds.SkipCount(),
		"duration", time.Since(start),
	)
	return ds, nil
}

// Parse reads CSV text from src. path is only used for error reporting and
// the dataset's Path.
func (r *Reader) Parse(path string, src io.Reader) (domain.Dataset, error) {
	src, header, err := splitHeader(src)
	if err != nil {
		return domain.Dataset{}, domain.NewParseError(path, "read header: %w", err)
	}
	if dup, ok := duplicateName(header); ok {
		return domain.Dataset{}, domain.NewParseError(path, "duplicate column %q", dup)
	}

	df := dataframe.ReadCSV(src,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(domain.NATokens),
	)
	if df.Err != nil {
		return domain.Dataset{}, domain.NewParseError(path, "read csv: %w", df.Err)
	}

	if df.Nrow() == 0 {
		return domain.Dataset{}, domain.NewParseError(path, "no data rows")
	}

	names := df.Names()
	for _, col := range domain.RequiredColumns {
		if !slices.Contains(names, col) {
			return domain.Dataset{}, domain.NewParseError(path, "missing required column %q", col)
		}
	}

	nrow := df.Nrow()
	calendar := make(map[string][]int, len(domain.RequiredColumns))
	for _, col := range domain.RequiredColumns {
		values, err := intColumn(df.Col(col))
		if err != nil {
			return domain.Dataset{}, domain.NewParseError(path, "column %q: %w", col, err)
		}
		calendar[col] = values
	}

	var fields []string
	numeric := make(map[string][]domain.NullFloat)
	skips := make(map[string]int)
	for _, field := range domain.NumericFields {
		if !slices.Contains(names, field) {
			continue
		}
		values, skipped := coerceColumn(df.Col(field))
		fields = append(fields, field)
		numeric[field] = values
		if skipped > 0 {
			skips[field] = skipped
		}
	}

	var datetimes []time.Time
	if slices.Contains(names, domain.ColumnDatetime) {
		parsed, err := timestampColumn(df.Col(domain.ColumnDatetime))
		if err != nil {
			return domain.Dataset{}, domain.NewParseError(path, "column %q: %w", domain.ColumnDatetime, err)
		}
		datetimes = parsed
	}

	stations := optionalTextColumn(df, names, domain.ColumnStation)
	windDirs := optionalTextColumn(df, names, domain.ColumnWindDir)

	records := make([]domain.Record, nrow)
	for i := 0; i < nrow; i++ {
		year := calendar[domain.ColumnYear][i]
		month := calendar[domain.ColumnMonth][i]
		day := calendar[domain.ColumnDay][i]
		hour := calendar[domain.ColumnHour][i]

		var ts time.Time
		if datetimes != nil {
			ts = datetimes[i]
		} else {
			derived, err := domain.DeriveTimestamp(year, month, day, hour)
			if err != nil {
				return domain.Dataset{}, domain.NewParseError(path, "line %d: %w", i+2, err)
			}
			ts = derived
		}

		values := make(map[string]domain.NullFloat, len(fields))
		for _, field := range fields {
			values[field] = numeric[field][i]
		}

		records[i] = domain.Record{
			Year:          year,
			Month:         month,
			Day:           day,
			Hour:          hour,
			Datetime:      ts,
			Station:       stations[i],
			WindDirection: windDirs[i],
			Values:        values,
		}
	}

	return domain.NewDataset(path, fields, records, skips), nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// splitHeader drops a leading UTF-8 byte-order mark and returns the header
// names along with a reader that still yields the whole CSV text. A header
// the csv package cannot read on its own yields no names.
func splitHeader(src io.Reader) (io.Reader, []string, error) {
	br := bufio.NewReader(src)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, nil, err
		}
	}

	line, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, err
	}
	rest := io.MultiReader(strings.NewReader(line), br)

	names, err := csv.NewReader(strings.NewReader(line)).Read()
	if err != nil {
		return rest, nil, nil
	}
	return rest, names, nil
}

func duplicateName(names []string) (string, bool) {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			return name, true
		}
		seen[name] = struct{}{}
	}
	return "", false
}

// coerceColumn converts a text column to floats. NA cells become missing; any
// other cell that is not a finite float also becomes missing and is counted.
func coerceColumn(col series.Series) ([]domain.NullFloat, int) {
	raw := make([]string, col.Len())
	blank := make([]bool, col.Len())
	for i := 0; i < col.Len(); i++ {
		e := col.Elem(i)
		s := strings.TrimSpace(e.String())
		if e.IsNA() || domain.IsNAToken(s) {
			blank[i] = true
			s = "NaN"
		}
		raw[i] = s
	}

	floats := series.New(raw, series.Float, col.Name)
	out := make([]domain.NullFloat, len(raw))
	skipped := 0
	for i := range raw {
		if blank[i] {
			out[i] = domain.Missing
			continue
		}
		e := floats.Elem(i)
		if e.IsNA() {
			skipped++
			out[i] = domain.Missing
			continue
		}
		v := domain.Float(e.Float())
		if !v.Valid {
			skipped++
		}
		out[i] = v
	}
	return out, skipped
}

// intColumn parses a calendar column. Whole-number floats ("2013.0") are
// accepted since spreadsheet exports often write them that way.
func intColumn(col series.Series) ([]int, error) {
	out := make([]int, col.Len())
	for i := 0; i < col.Len(); i++ {
		e := col.Elem(i)
		if e.IsNA() {
			return nil, fmt.Errorf("line %d: empty value", i+2)
		}
		s := strings.TrimSpace(e.String())
		if n, err := strconv.Atoi(s); err == nil {
			out[i] = n
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("line %d: %q is not an integer", i+2, s)
		}
		out[i] = int(v)
	}
	return out, nil
}

func timestampColumn(col series.Series) ([]time.Time, error) {
	out := make([]time.Time, col.Len())
	for i := 0; i < col.Len(); i++ {
		e := col.Elem(i)
		if e.IsNA() {
			return nil, fmt.Errorf("line %d: empty value", i+2)
		}
		ts, err := domain.ParseTimestamp(e.String())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		out[i] = ts
	}
	return out, nil
}

func optionalTextColumn(df dataframe.DataFrame, names []string, name string) []string {
	out := make([]string, df.Nrow())
	if !slices.Contains(names, name) {
		return out
	}
	col := df.Col(name)
	for i := 0; i < col.Len(); i++ {
		if e := col.Elem(i); !e.IsNA() {
			out[i] = strings.TrimSpace(e.String())
		}
	}
	return out
}
