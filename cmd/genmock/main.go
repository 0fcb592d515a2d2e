// Command genmock writes a deterministic synthetic hourly air-quality CSV in
// the dashboard's input format, then reloads it through the CSV reader to
// confirm the fixture parses the way the service will read it.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out dashboard/main_data.csv \
//	  -start 2013-03-01 -days 730 -seed 42
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/air-quality-dashboard/internal/adapter/csvfile"
	"github.com/couchcryptid/air-quality-dashboard/internal/domain"
)

var header = []string{
	"No", "year", "month", "day", "hour",
	"PM2.5", "PM10", "SO2", "NO2", "CO", "O3",
	"TEMP", "PRES", "DEWP", "RAIN", "wd", "WSPM", "station",
}

var windDirections = []string{"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE", "S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW"}

// options controls the generated fixture.
type options struct {
	start        time.Time
	days         int
	seed         uint64
	station      string
	missingRate  float64 // share of pollutant cells written as NA
	garbageRate  float64 // share of cells written as unparseable text
	withDatetime bool
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the CSV fixture")
	start := flag.String("start", "2013-03-01", "first day (YYYY-MM-DD, UTC)")
	days := flag.Int("days", 30, "number of days of hourly rows")
	seed := flag.Uint64("seed", 1, "random seed")
	station := flag.String("station", "Aotizhongxin", "station name")
	missing := flag.Float64("missing", 0.02, "fraction of pollutant cells left as NA")
	garbage := flag.Float64("garbage", 0.001, "fraction of cells written as unparseable text")
	withDatetime := flag.Bool("with-datetime", false, "include a precomputed datetime column")
	flag.Parse()

	if *out == "" || *days <= 0 {
		flag.Usage()
		return errors.New("-out and a positive -days are required")
	}
	startDay, err := time.Parse("2006-01-02", *start)
	if err != nil {
		return fmt.Errorf("parse -start: %w", err)
	}

	opts := options{
		start:        startDay,
		days:         *days,
		seed:         *seed,
		station:      *station,
		missingRate:  *missing,
		garbageRate:  *garbage,
		withDatetime: *withDatetime,
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create %s: %w", *out, err)
	}
	if err := generate(f, opts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", *out, err)
	}

	ds, err := csvfile.NewReader(slog.Default()).Load(context.Background(), *out)
	if err != nil {
		return fmt.Errorf("verify %s: %w", *out, err)
	}
	fmt.Printf("Wrote %d rows (%s) to %s, %d cells unparseable\n",
		ds.Len(), yearsLabel(domain.Years(ds)), *out, ds.SkipCount())
	return nil
}

// generate writes opts.days*24 hourly rows. Output depends only on opts.
func generate(w io.Writer, opts options) error {
	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))
	cw := csv.NewWriter(w)

	cols := header
	if opts.withDatetime {
		cols = append(append([]string{}, header[:5]...), append([]string{domain.ColumnDatetime}, header[5:]...)...)
	}
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	pm := 60.0
	for i := 0; i < opts.days*24; i++ {
		ts := opts.start.Add(time.Duration(i) * time.Hour)
		season := math.Cos(2 * math.Pi * float64(ts.YearDay()) / 365.25) // 1 in winter
		diurnal := math.Sin(2 * math.Pi * float64(ts.Hour()-9) / 24)     // peaks mid afternoon

		temp := 12 - 15*season + 5*diurnal + rng.NormFloat64()
		pres := 1012 + 10*season + rng.NormFloat64()*2
		dewp := temp - 8 - 4*rng.Float64()
		wspm := math.Max(0, 1.8+rng.NormFloat64())
		rain := 0.0
		if rng.Float64() < 0.04 {
			rain = rng.ExpFloat64() * 2
		}

		// PM2.5 follows a mean-reverting walk that wind and rain wash out.
		pm += 0.15*(70+40*season-pm) + rng.NormFloat64()*8 - 6*wspm - 4*rain
		pm = math.Max(3, pm)

		values := []float64{
			pm,
			pm*1.3 + rng.Float64()*20,
			math.Max(2, 8+10*season+rng.NormFloat64()*3),
			math.Max(2, 40+0.3*pm+rng.NormFloat64()*8),
			math.Max(100, 900+12*pm+rng.NormFloat64()*150),
			math.Max(2, 50+35*diurnal-20*season+rng.NormFloat64()*10),
			temp, pres, dewp, rain,
		}

		row := []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(ts.Year()),
			strconv.Itoa(int(ts.Month())),
			strconv.Itoa(ts.Day()),
			strconv.Itoa(ts.Hour()),
		}
		if opts.withDatetime {
			row = append(row, ts.Format("2006-01-02 15:04:05"))
		}
		for j, v := range values {
			row = append(row, cell(rng, v, j < 6, opts))
		}
		row = append(row,
			windDirections[rng.IntN(len(windDirections))],
			cell(rng, wspm, false, opts),
			opts.station,
		)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// cell formats v, occasionally replacing it with NA (pollutants only) or an
// unparseable token.
func cell(rng *rand.Rand, v float64, pollutant bool, opts options) string {
	r := rng.Float64()
	switch {
	case pollutant && r < opts.missingRate:
		return "NA"
	case r > 1-opts.garbageRate:
		return "--"
	default:
		return strconv.FormatFloat(math.Round(v*10)/10, 'f', 1, 64)
	}
}

func yearsLabel(years []int) string {
	if len(years) == 0 {
		return "no years"
	}
	if len(years) == 1 {
		return strconv.Itoa(years[0])
	}
	return fmt.Sprintf("%d-%d", years[0], years[len(years)-1])
}
