package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/air-quality-dashboard/internal/domain"
	"github.com/couchcryptid/air-quality-dashboard/internal/observability"
)

// CacheClearer is implemented by loaders that memoize datasets.
type CacheClearer interface {
	Clear()
}

// Options are the view defaults applied when a Selection leaves them unset.
type Options struct {
	PreviewRows       int
	DailyField        string
	CorrelationFields []string
}

// View is the result of one recomputation pass over the configured file.
type View struct {
	Path        string                   `json:"path"`
	LoadedAt    time.Time                `json:"loaded_at"`
	Years       []int                    `json:"years"`
	Selection   Selection                `json:"selection"`
	TotalRows   int                      `json:"total_rows"`
	Rows        int                      `json:"rows"`
	Preview     []domain.Record          `json:"preview"`
	Summary     []domain.FieldSummary    `json:"summary"`
	DailyField  string                   `json:"daily_field"`
	Daily       []domain.DailyAggregate  `json:"daily"`
	Correlation domain.CorrelationMatrix `json:"correlation"`
	Skips       map[string]int           `json:"coercion_skips,omitempty"`
}

// Pipeline runs the load, filter, aggregate and correlate stages for the
// dashboard's single data file.
type Pipeline struct {
	loader  domain.DatasetLoader
	path    string
	opts    Options
	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool
}

// New creates a Pipeline reading path through loader.
func New(loader domain.DatasetLoader, path string, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	if opts.PreviewRows <= 0 {
		opts.PreviewRows = 5
	}
	if opts.DailyField == "" {
		opts.DailyField = domain.FieldPM25
	}
	if len(opts.CorrelationFields) == 0 {
		opts.CorrelationFields = domain.MeteorologyFields
	}
	return &Pipeline{
		loader:  loader,
		path:    path,
		opts:    opts,
		logger:  logger,
		metrics: metrics,
	}
}

// CheckReadiness returns nil once the data file has loaded successfully,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("dataset has not been loaded yet")
	}
	return nil
}

// Warm loads the data file so the first request is served from cache.
func (p *Pipeline) Warm(ctx context.Context) error {
	ds, err := p.Dataset(ctx)
	if err != nil {
		return err
	}
	p.logger.Info("pipeline warmed", "path", p.path, "rows", ds.Len(), "years", domain.Years(ds))
	return nil
}

// Dataset returns the full, unfiltered dataset.
func (p *Pipeline) Dataset(ctx context.Context) (domain.Dataset, error) {
	ds, err := p.loader.Load(ctx, p.path)
	if err != nil {
		p.setReady(false)
		return domain.Dataset{}, err
	}
	p.setReady(true)
	return ds, nil
}

// Years returns the distinct years present in the data file.
func (p *Pipeline) Years(ctx context.Context) ([]int, error) {
	ds, err := p.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return domain.Years(ds), nil
}

// Refresh recomputes every dashboard output for sel.
func (p *Pipeline) Refresh(ctx context.Context, sel Selection) (View, error) {
	start := time.Now()
	view, err := p.refresh(ctx, sel)
	if err != nil {
		p.metrics.Refreshes.WithLabelValues("error").Inc()
		return View{}, err
	}
	p.metrics.Refreshes.WithLabelValues("ok").Inc()
	p.metrics.RefreshDuration.Observe(time.Since(start).Seconds())
	p.metrics.RowsSelected.Observe(float64(view.Rows))
	p.logger.Debug("view refreshed",
		"year", sel.Year,
		"field", view.DailyField,
		"rows", view.Rows,
		"duration", time.Since(start),
	)
	return view, nil
}

func (p *Pipeline) refresh(ctx context.Context, sel Selection) (View, error) {
	sel = p.normalize(sel)
	if err := sel.Validate(); err != nil {
		return View{}, err
	}
	full, err := p.Dataset(ctx)
	if err != nil {
		return View{}, err
	}

	selected := sel.apply(full)
	field := p.dailyField(sel)
	return View{
		Path:        full.Path,
		LoadedAt:    full.LoadedAt,
		Years:       domain.Years(full),
		Selection:   sel,
		TotalRows:   full.Len(),
		Rows:        selected.Len(),
		Preview:     domain.Head(selected, p.opts.PreviewRows),
		Summary:     domain.Describe(selected, full.Fields),
		DailyField:  field,
		Daily:       domain.DailyMean(selected, field),
		Correlation: domain.Correlate(selected, p.opts.CorrelationFields),
		Skips:       full.Skips,
	}, nil
}

// Daily returns the daily mean series for the selection.
func (p *Pipeline) Daily(ctx context.Context, sel Selection) (string, []domain.DailyAggregate, error) {
	ds, err := p.selected(ctx, sel)
	if err != nil {
		return "", nil, err
	}
	field := p.dailyField(sel)
	return field, domain.DailyMean(ds, field), nil
}

// Correlation returns the correlation matrix of the configured fields for the selection.
func (p *Pipeline) Correlation(ctx context.Context, sel Selection) (domain.CorrelationMatrix, error) {
	ds, err := p.selected(ctx, sel)
	if err != nil {
		return domain.CorrelationMatrix{}, err
	}
	return domain.Correlate(ds, p.opts.CorrelationFields), nil
}

// ClearCache drops memoized datasets so the next call rereads the file.
// It reports whether the loader supports clearing.
func (p *Pipeline) ClearCache() bool {
	c, ok := p.loader.(CacheClearer)
	if !ok {
		return false
	}
	c.Clear()
	p.logger.Info("dataset cache cleared", "path", p.path)
	return true
}

func (p *Pipeline) selected(ctx context.Context, sel Selection) (domain.Dataset, error) {
	sel = p.normalize(sel)
	if err := sel.Validate(); err != nil {
		return domain.Dataset{}, err
	}
	ds, err := p.Dataset(ctx)
	if err != nil {
		return domain.Dataset{}, err
	}
	return sel.apply(ds), nil
}

// normalize fills a range without a field with the daily field.
func (p *Pipeline) normalize(sel Selection) Selection {
	if sel.Range != nil && sel.Range.Field == "" {
		r := *sel.Range
		r.Field = p.dailyField(sel)
		sel.Range = &r
	}
	return sel
}

func (p *Pipeline) dailyField(sel Selection) string {
	if sel.Field != "" {
		return sel.Field
	}
	return p.opts.DailyField
}

func (p *Pipeline) setReady(ok bool) {
	p.ready.Store(ok)
	if ok {
		p.metrics.PipelineReady.Set(1)
	} else {
		p.metrics.PipelineReady.Set(0)
	}
}
