package pipeline

import (
	"errors"
	"fmt"
	"math"

	"github.com/couchcryptid/air-quality-dashboard/internal/domain"
)

// ErrInvalidSelection marks a Selection that names an unknown field or an
// inverted range.
var ErrInvalidSelection = errors.New("invalid selection")

// Range keeps records whose Field value lies in [Low, High]. An empty Field
// ranges over the selection's daily field.
type Range struct {
	Field string  `json:"field"`
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
}

// Selection describes one dashboard interaction: the chosen year, the field
// plotted as a daily mean, and an optional value range.
type Selection struct {
	Year  int    `json:"year,omitempty"`  // 0 selects every year
	Field string `json:"field,omitempty"` // empty uses the configured daily field
	Range *Range `json:"range,omitempty"`
}

// Validate checks field names and range bounds.
func (s Selection) Validate() error {
	if s.Field != "" && !domain.IsNumericField(s.Field) {
		return fmt.Errorf("%w: unknown field %q", ErrInvalidSelection, s.Field)
	}
	if s.Year < 0 {
		return fmt.Errorf("%w: year %d", ErrInvalidSelection, s.Year)
	}
	if r := s.Range; r != nil {
		if !domain.IsNumericField(r.Field) {
			return fmt.Errorf("%w: unknown range field %q", ErrInvalidSelection, r.Field)
		}
		if math.IsNaN(r.Low) || math.IsNaN(r.High) {
			return fmt.Errorf("%w: range bounds must be numbers", ErrInvalidSelection)
		}
		if r.Low > r.High {
			return fmt.Errorf("%w: range low %g exceeds high %g", ErrInvalidSelection, r.Low, r.High)
		}
	}
	return nil
}

// apply narrows ds by year, then by range.
func (s Selection) apply(ds domain.Dataset) domain.Dataset {
	if s.Year != 0 {
		ds = domain.FilterByYear(ds, s.Year)
	}
	if s.Range != nil {
		ds = domain.FilterByRange(ds, s.Range.Field, s.Range.Low, s.Range.High)
	}
	return ds
}
