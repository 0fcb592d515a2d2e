package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"
	"time"
)

// Numeric measurement columns.
const (
	FieldPM25 = "PM2.5"
	FieldPM10 = "PM10"
	FieldSO2  = "SO2"
	FieldNO2  = "NO2"
	FieldCO   = "CO"
	FieldO3   = "O3"
	FieldTemp = "TEMP"
	FieldPres = "PRES"
	FieldDewp = "DEWP"
	FieldRain = "RAIN"
	FieldWSPM = "WSPM"
)

// Identifier and text columns.
const (
	ColumnYear     = "year"
	ColumnMonth    = "month"
	ColumnDay      = "day"
	ColumnHour     = "hour"
	ColumnDatetime = "datetime"
	ColumnStation  = "station"
	ColumnWindDir  = "wd"
)

// NumericFields lists the columns coerced to float, in canonical order.
var NumericFields = []string{
	FieldPM25, FieldPM10, FieldSO2, FieldNO2, FieldCO, FieldO3,
	FieldTemp, FieldPres, FieldDewp, FieldRain, FieldWSPM,
}

// MeteorologyFields is the default correlation set: PM2.5 against weather.
var MeteorologyFields = []string{FieldPM25, FieldTemp, FieldPres, FieldDewp, FieldRain, FieldWSPM}

// RequiredColumns must all appear in the header.
var RequiredColumns = []string{ColumnYear, ColumnMonth, ColumnDay, ColumnHour}

// NATokens are cell values read as missing without counting as a coercion skip.
var NATokens = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "<nil>"}

// IsNumericField reports whether name is one of NumericFields.
func IsNumericField(name string) bool {
	return slices.Contains(NumericFields, name)
}

// IsNAToken reports whether a trimmed cell value denotes a missing value.
func IsNAToken(s string) bool {
	return slices.Contains(NATokens, strings.TrimSpace(s))
}

// NullFloat is a float that may be missing. Missing is distinct from zero and
// serializes as JSON null.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Float returns a valid NullFloat, or a missing one for NaN and ±Inf.
func Float(v float64) NullFloat {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NullFloat{}
	}
	return NullFloat{Float64: v, Valid: true}
}

// Missing is the explicit absence of a value.
var Missing = NullFloat{}

func (f NullFloat) String() string {
	if !f.Valid {
		return "NA"
	}
	return fmt.Sprintf("%g", f.Float64)
}

func (f NullFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Float64)
}

func (f *NullFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = NullFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal null float: %w", err)
	}
	*f = Float(v)
	return nil
}

// Record is one station-hour observation.
type Record struct {
	Year          int                  `json:"year"`
	Month         int                  `json:"month"`
	Day           int                  `json:"day"`
	Hour          int                  `json:"hour"`
	Datetime      time.Time            `json:"datetime"`
	Station       string               `json:"station,omitempty"`
	WindDirection string               `json:"wd,omitempty"`
	Values        map[string]NullFloat `json:"values"`
}

// Value returns the field's value; absent fields are missing.
func (r Record) Value(field string) NullFloat {
	return r.Values[field]
}

// Dataset is an immutable, timestamp-ordered snapshot of a loaded file.
// Transforms return new datasets; the Records slice of a dataset is never
// modified after construction.
type Dataset struct {
	Path     string         `json:"path"`
	Fields   []string       `json:"fields"` // numeric fields present in the header
	Records  []Record       `json:"records"`
	Skips    map[string]int `json:"coercion_skips,omitempty"`
	LoadedAt time.Time      `json:"loaded_at"`
}

// NewDataset copies records, orders them by timestamp (stable for ties) and
// stamps the load time.
func NewDataset(path string, fields []string, records []Record, skips map[string]int) Dataset {
	sorted := slices.Clone(records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Datetime.Before(sorted[j].Datetime)
	})
	return Dataset{
		Path:     path,
		Fields:   slices.Clone(fields),
		Records:  sorted,
		Skips:    skips,
		LoadedAt: clock.Now(),
	}
}

// Len returns the number of records.
func (d Dataset) Len() int { return len(d.Records) }

// HasField reports whether field was present in the source header.
func (d Dataset) HasField(field string) bool {
	return slices.Contains(d.Fields, field)
}

// SkipCount returns the total number of cells coerced to missing.
func (d Dataset) SkipCount() int {
	total := 0
	for _, n := range d.Skips {
		total += n
	}
	return total
}

// withRecords returns a view of d over a new record slice.
func (d Dataset) withRecords(records []Record) Dataset {
	d.Records = records
	return d
}

// DatasetLoader loads the dataset stored at path.
type DatasetLoader interface {
	Load(ctx context.Context, path string) (Dataset, error)
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp normalizes a datetime cell into a UTC timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime %q", s)
}

// DeriveTimestamp combines calendar columns into a UTC timestamp. Components
// out of range are rejected instead of rolling over.
func DeriveTimestamp(year, month, day, hour int) (time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("month %d out of range", month)
	}
	if hour < 0 || hour > 23 {
		return time.Time{}, fmt.Errorf("hour %d out of range", hour)
	}
	t := time.Date(year, time.Month(month), day, hour, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, fmt.Errorf("day %d out of range for %04d-%02d", day, year, month)
	}
	return t, nil
}
