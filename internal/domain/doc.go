// Package domain models hourly air-quality observations and the pure
// transforms the dashboard runs over them.
//
// # Data Source
//
// Observations come from a single comma-separated file in the layout of the
// Beijing multi-site air-quality dataset: one row per station and hour, with
// the calendar split across integer columns.
//
//	No,year,month,day,hour,PM2.5,PM10,SO2,NO2,CO,O3,TEMP,PRES,DEWP,RAIN,wd,WSPM,station
//	1,2013,3,1,0,4,4,4,7,300,77,-0.7,1023,-18.8,0,NNW,4.4,Aotizhongxin
//
// A prepared export may also carry a "datetime" column; it is re-parsed into
// the canonical timestamp rather than trusted.
//
// # Numeric Fields
//
// Pollutants (µg/m³ except CO):
//
//	PM2.5, PM10, SO2, NO2, CO, O3
//
// Meteorology:
//
//	TEMP (°C), PRES (hPa), DEWP (°C), RAIN (mm), WSPM (m/s)
//
// Every numeric field present in the header is coerced cell by cell. Blank
// cells and NA tokens ("NA", "NaN", "null", ...) are missing. Any other cell
// that does not parse as a finite float is also missing and is counted as a
// coercion skip on the [Dataset]; a bad cell never rejects its row.
//
// # Timestamps
//
// The canonical timestamp is UTC. Without a "datetime" column it is derived
// from year/month/day/hour; out-of-range components are a parse error rather
// than being normalized by [time.Date]. Datasets are always sorted by
// timestamp ascending, whichever branch produced it.
//
// # Aggregates
//
// All aggregates exclude missing values:
//
//	DailyMean:  UTC calendar-day buckets; a day with no valid value is omitted.
//	Correlate:  pairwise-complete Pearson; fields with < 2 values are missing.
//	Describe:   count, mean, sample std, min, quartiles, max per field.
package domain
