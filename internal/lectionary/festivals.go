package lectionary

import (
	"errors"
	"sort"
	"time"

	"github.com/rickar/cal/v2"
)

// FestivalIndex is the fixed-date festival table keyed by month and day. It
// knows nothing about seasons or years: a festival recurs on the same
// month-day every civil year. Every record it returns is a copy.
type FestivalIndex struct {
	byKey map[string]FestivalRecord
	order []string
}

// NewFestivalIndex builds the index, rejecting malformed or duplicate keys.
func NewFestivalIndex(records []FestivalRecord) (*FestivalIndex, error) {
	idx := &FestivalIndex{byKey: make(map[string]FestivalRecord, len(records))}
	var errs []error

	for _, r := range records {
		if _, _, err := ParseMonthDay(r.Date); err != nil {
			errs = append(errs, &ConfigError{Table: FestivalsFile, Path: r.Name, Msg: err.Error()})
			continue
		}
		if prev, dup := idx.byKey[r.Date]; dup {
			errs = append(errs, &ConfigError{Table: FestivalsFile, Path: r.Date, Msg: "duplicate festival date (" + prev.Name + ", " + r.Name + ")"})
			continue
		}
		idx.byKey[r.Date] = r.clone()
		idx.order = append(idx.order, r.Date)
	}

	sort.Slice(idx.order, func(i, j int) bool {
		mi, di, _ := ParseMonthDay(idx.order[i])
		mj, dj, _ := ParseMonthDay(idx.order[j])
		if mi != mj {
			return mi < mj
		}
		return di < dj
	})

	return idx, errors.Join(errs...)
}

// Lookup returns the festival on the date's month and day, if any.
func (idx *FestivalIndex) Lookup(date time.Time) (FestivalRecord, bool) {
	return idx.ByKey(DayKey(date.Month(), date.Day()))
}

// ByKey returns the festival for a "M-D" key such as "12-25".
func (idx *FestivalIndex) ByKey(key string) (FestivalRecord, bool) {
	if idx == nil {
		return FestivalRecord{}, false
	}
	f, ok := idx.byKey[key]
	return f.clone(), ok
}

// All returns the festivals in calendar order.
func (idx *FestivalIndex) All() []FestivalRecord {
	if idx == nil {
		return nil
	}
	out := make([]FestivalRecord, 0, len(idx.order))
	for _, key := range idx.order {
		out = append(out, idx.byKey[key].clone())
	}
	return out
}

// Len returns the number of festivals.
func (idx *FestivalIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.byKey)
}

// Observance is a festival placed on a date of a particular civil year.
type Observance struct {
	Date     time.Time
	Festival FestivalRecord
}

// InYear places every festival on its date in the given civil year. Feb 29
// festivals are left out of common years.
func (idx *FestivalIndex) InYear(year int) []Observance {
	var out []Observance
	for _, f := range idx.All() {
		m, d, _ := ParseMonthDay(f.Date)
		h := &cal.Holiday{
			Name:  f.Name,
			Type:  cal.ObservanceReligious,
			Month: m,
			Day:   d,
			Func:  cal.CalcDayOfMonth,
		}
		actual, _ := h.Calc(year)
		// time.Date normalizes Feb 29 of a common year to Mar 1.
		if actual.IsZero() || actual.Month() != m || actual.Day() != d {
			continue
		}
		date := time.Date(actual.Year(), actual.Month(), actual.Day(), 0, 0, 0, 0, time.UTC)
		out = append(out, Observance{Date: date, Festival: f})
	}
	return out
}
