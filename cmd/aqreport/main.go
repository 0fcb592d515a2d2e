// Command aqreport prints the dashboard's tables for one CSV file: the years
// present, a preview, per-field summary statistics, the daily mean series,
// and the correlation matrix. It runs the same pipeline as the HTTP service.
//
// Usage:
//
//	go run ./cmd/aqreport -data dashboard/main_data.csv -year 2015 -field PM2.5
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/couchcryptid/air-quality-dashboard/internal/adapter/csvfile"
	"github.com/couchcryptid/air-quality-dashboard/internal/domain"
	"github.com/couchcryptid/air-quality-dashboard/internal/observability"
	"github.com/couchcryptid/air-quality-dashboard/internal/pipeline"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

func main() {
	envErr := loadDotenv()

	dataPath := flag.String("data", sharedcfg.EnvOrDefault("DATA_PATH", "dashboard/main_data.csv"), "path to the air-quality CSV file")
	year := flag.Int("year", 0, "restrict to one year (0 = all years)")
	field := flag.String("field", domain.FieldPM25, "field for the daily mean series")
	preview := flag.Int("preview", 5, "number of preview rows")
	verbose := flag.Bool("v", false, "log coercion details to stderr")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	if envErr != nil {
		logger.Warn("failed to read .env", "error", envErr)
	}

	if code := run(os.Stdout, logger, *dataPath, pipeline.Selection{Year: *year, Field: *field}, *preview); code != 0 {
		os.Exit(code)
	}
}

// loadDotenv reads .env files if present. A missing file is not an error and
// variables already in the environment are kept.
func loadDotenv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func run(out io.Writer, logger *slog.Logger, path string, sel pipeline.Selection, previewRows int) int {
	metrics := observability.NewUnregisteredMetrics()
	p := pipeline.New(csvfile.NewReader(logger), path, pipeline.Options{PreviewRows: previewRows}, logger, metrics)

	view, err := p.Refresh(context.Background(), sel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		switch {
		case errors.Is(err, domain.ErrFileNotFound):
			return 2
		case errors.Is(err, domain.ErrParse):
			return 3
		default:
			return 1
		}
	}

	printView(out, view)
	return 0
}

func printView(out io.Writer, view pipeline.View) {
	fmt.Fprintf(out, "=== Air Quality Report: %s ===\n\n", view.Path)
	fmt.Fprintf(out, "Years: %s\n", joinInts(view.Years))
	scope := "all years"
	if view.Selection.Year != 0 {
		scope = fmt.Sprintf("year %d", view.Selection.Year)
	}
	fmt.Fprintf(out, "Rows:  %d of %d (%s)\n", view.Rows, view.TotalRows, scope)
	if n := totalSkips(view.Skips); n > 0 {
		fmt.Fprintf(out, "Unparseable cells read as missing: %d\n", n)
	}

	fmt.Fprintln(out, "\n--- Preview ---")
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fields := make([]string, 0, len(view.Summary))
	for _, s := range view.Summary {
		fields = append(fields, s.Field)
	}
	fmt.Fprintf(tw, "datetime\t%s\n", strings.Join(fields, "\t"))
	for _, r := range view.Preview {
		cells := make([]string, len(fields))
		for i, f := range fields {
			cells[i] = r.Value(f).String()
		}
		fmt.Fprintf(tw, "%s\t%s\n", r.Datetime.Format("2006-01-02 15:04"), strings.Join(cells, "\t"))
	}
	tw.Flush()

	fmt.Fprintln(out, "\n--- Summary ---")
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "field\tcount\tmissing\tmean\tstd\tmin\t25%\t50%\t75%\tmax\t")
	for _, s := range view.Summary {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			s.Field, s.Count, s.Missing,
			fmtFloat(s.Mean), fmtFloat(s.Std), fmtFloat(s.Min), fmtFloat(s.Q1),
			fmtFloat(s.Median), fmtFloat(s.Q3), fmtFloat(s.Max))
	}
	tw.Flush()

	fmt.Fprintf(out, "\n--- Daily mean %s (%d days) ---\n", view.DailyField, len(view.Daily))
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, d := range view.Daily {
		fmt.Fprintf(tw, "%s\t%.2f\t(n=%d)\n", d.Date.Format("2006-01-02"), d.Mean, d.Count)
	}
	tw.Flush()

	fmt.Fprintln(out, "\n--- Correlation ---")
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "\t%s\t\n", strings.Join(view.Correlation.Fields, "\t"))
	for i, f := range view.Correlation.Fields {
		cells := make([]string, len(view.Correlation.Fields))
		for j := range cells {
			cells[j] = fmtFloat(view.Correlation.At(i, j))
		}
		fmt.Fprintf(tw, "%s\t%s\t\n", f, strings.Join(cells, "\t"))
	}
	tw.Flush()
}

func fmtFloat(v domain.NullFloat) string {
	if !v.Valid {
		return "NA"
	}
	return fmt.Sprintf("%.2f", v.Float64)
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, ", ")
}

func totalSkips(skips map[string]int) int {
	n := 0
	for _, v := range skips {
		n += v
	}
	return n
}
