package domain

import "sort"

// FilterByYear returns the records whose timestamp falls in year.
func FilterByYear(ds Dataset, year int) Dataset {
	out := make([]Record, 0)
	for _, r := range ds.Records {
		if r.Datetime.Year() == year {
			out = append(out, r)
		}
	}
	return ds.withRecords(out)
}

// FilterByRange returns the records whose field value is present and lies in
// [low, high]. Missing values are dropped.
func FilterByRange(ds Dataset, field string, low, high float64) Dataset {
	out := make([]Record, 0)
	for _, r := range ds.Records {
		v := r.Value(field)
		if v.Valid && v.Float64 >= low && v.Float64 <= high {
			out = append(out, r)
		}
	}
	return ds.withRecords(out)
}

// Years returns the distinct record years in ascending order.
func Years(ds Dataset) []int {
	seen := make(map[int]struct{})
	for _, r := range ds.Records {
		seen[r.Datetime.Year()] = struct{}{}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Head returns up to n leading records.
func Head(ds Dataset, n int) []Record {
	if n <= 0 {
		return []Record{}
	}
	if n > len(ds.Records) {
		n = len(ds.Records)
	}
	out := make([]Record, n)
	copy(out, ds.Records[:n])
	return out
}
