package calendar

import (
	"errors"
	"fmt"
	"time"

	"github.com/zapponejosh/lutherald/internal/lectionary"
)

// ErrUnknownAnchor is returned when an anchor kind has no date function.
var ErrUnknownAnchor = errors.New("unknown anchor")

// Anchors derives the moveable anchor dates of the church year that begins
// in Advent of Year. Its Easter falls in Year+1.
//
// Anchors is a plain value: every method recomputes from the civil year and
// Easter, nothing is cached.
type Anchors struct {
	year   int
	easter time.Time
}

// NewAnchors returns the anchor dates of the church year beginning in
// Advent of year.
func NewAnchors(year int) Anchors {
	return Anchors{year: year, easter: Easter(year + 1)}
}

// Year returns the civil year in which the church year begins.
func (a Anchors) Year() int { return a.year }

// Easter returns Easter Sunday of the church year (in Year+1).
func (a Anchors) Easter() time.Time { return a.easter }

// -----------------------------------------------------------------------------
// Advent and Christmas
// -----------------------------------------------------------------------------

// Christmas returns Dec 25 of Year moved by offset days.
func (a Anchors) Christmas(offset int) time.Time {
	return time.Date(a.year, time.December, 25+offset, 0, 0, 0, 0, time.UTC)
}

// ChristmasWeekday is Christmas(offset), unless that date is a Sunday: fixed
// Christmastide propers yield to the Sunday propers.
func (a Anchors) ChristmasWeekday(offset int) (time.Time, bool) {
	d := a.Christmas(offset)
	if d.Weekday() == time.Sunday {
		return time.Time{}, false
	}
	return d, true
}

// ChristmasSunday returns the nth Sunday after Christmas Day, if it comes
// before Epiphany.
func (a Anchors) ChristmasSunday(n int) (time.Time, bool) {
	if n < 1 {
		return time.Time{}, false
	}
	d := AddWeeks(NextWeekday(a.Christmas(0), time.Sunday), n-1)
	if !d.Before(a.Epiphany()) {
		return time.Time{}, false
	}
	return d, true
}

// AdventSunday returns the nth Sunday in Advent (1-4), counting back
// 5-n Sundays from Christmas.
func (a Anchors) AdventSunday(n int) (time.Time, bool) {
	if n < 1 || n > 4 {
		return time.Time{}, false
	}
	d := a.Christmas(0)
	for i := 0; i < 5-n; i++ {
		d = LastWeekday(d, time.Sunday)
	}
	return d, true
}

// FirstAdvent returns Advent 1, the first day of the church year.
func (a Anchors) FirstAdvent() time.Time {
	d, _ := a.AdventSunday(1)
	return d
}

// -----------------------------------------------------------------------------
// Epiphany and the Gesima Sundays
// -----------------------------------------------------------------------------

// Epiphany returns Jan 6 of Year+1.
func (a Anchors) Epiphany() time.Time {
	return time.Date(a.year+1, time.January, 6, 0, 0, 0, 0, time.UTC)
}

// EpiphanySundays returns the Sundays strictly after Epiphany and strictly
// before the Transfiguration, in order.
func (a Anchors) EpiphanySundays() []time.Time {
	transfiguration := a.Transfiguration()
	var sundays []time.Time
	for d := NextWeekday(a.Epiphany(), time.Sunday); d.Before(transfiguration); d = AddWeeks(d, 1) {
		sundays = append(sundays, d)
	}
	return sundays
}

// EpiphanySunday returns the nth Sunday after the Epiphany, if this year has
// that many.
func (a Anchors) EpiphanySunday(n int) (time.Time, bool) {
	sundays := a.EpiphanySundays()
	if n < 1 || n > len(sundays) {
		return time.Time{}, false
	}
	return sundays[n-1], true
}

// Transfiguration returns the last Sunday before Septuagesima.
func (a Anchors) Transfiguration() time.Time {
	return LastWeekday(a.Septuagesima(), time.Sunday)
}

var gesimaOffsets = map[string]int{
	lectionary.Septuagesima:  -17,
	lectionary.Sexagesima:    -10,
	lectionary.Quinquagesima: -3,
}

// Gesima returns the named Gesima Sunday, counted back from Ash Wednesday.
func (a Anchors) Gesima(name string) (time.Time, bool) {
	offset, ok := gesimaOffsets[name]
	if !ok {
		return time.Time{}, false
	}
	return a.AshWednesday().AddDate(0, 0, offset), true
}

// Septuagesima returns the first Gesima Sunday, which opens Lententide.
func (a Anchors) Septuagesima() time.Time {
	return a.AshWednesday().AddDate(0, 0, -17)
}

// -----------------------------------------------------------------------------
// Lent and Holy Week
// -----------------------------------------------------------------------------

// AshWednesday returns Easter minus 46 days.
func (a Anchors) AshWednesday() time.Time {
	return a.easter.AddDate(0, 0, -46)
}

// LentSunday returns the nth Sunday in Lent; Invocabit is the first Sunday
// after Ash Wednesday.
func (a Anchors) LentSunday(n int) time.Time {
	return AddWeeks(NextWeekday(a.AshWednesday(), time.Sunday), n-1)
}

// MaundyThursday returns Easter minus 3 days.
func (a Anchors) MaundyThursday() time.Time {
	return a.easter.AddDate(0, 0, -3)
}

// GoodFriday returns Easter minus 2 days.
func (a Anchors) GoodFriday() time.Time {
	return a.easter.AddDate(0, 0, -2)
}

// -----------------------------------------------------------------------------
// Eastertide, Pentecost and Trinity
// -----------------------------------------------------------------------------

// EastertideSunday returns Easter plus n weeks; n=0 is Easter Day.
func (a Anchors) EastertideSunday(n int) time.Time {
	return AddWeeks(a.easter, n)
}

// Pentecost is the seventh Sunday after Easter.
func (a Anchors) Pentecost() time.Time {
	return a.EastertideSunday(7)
}

// Ascension returns Pentecost minus 10 days.
func (a Anchors) Ascension() time.Time {
	return a.Pentecost().AddDate(0, 0, -10)
}

// TrinitySunday is the Sunday after Pentecost.
func (a Anchors) TrinitySunday() time.Time {
	return NextWeekday(a.Pentecost(), time.Sunday)
}

// TrinitySundays returns every Sunday after Trinity through the last Sunday
// of the church year, in order.
func (a Anchors) TrinitySundays() []time.Time {
	trinity := a.TrinitySunday()
	count := DaysBetween(trinity, a.LastSunday(0)) / 7
	sundays := make([]time.Time, 0, count)
	for i := 1; i <= count; i++ {
		sundays = append(sundays, AddWeeks(trinity, i))
	}
	return sundays
}

// SundayAfterTrinity returns the nth Sunday after Trinity, if this year has
// that many.
func (a Anchors) SundayAfterTrinity(n int) (time.Time, bool) {
	sundays := a.TrinitySundays()
	if n < 1 || n > len(sundays) {
		return time.Time{}, false
	}
	return sundays[n-1], true
}

// LastSunday returns the last Sunday of the church year (the first Sunday on
// or after five weeks before next Christmas), moved by offset days.
func (a Anchors) LastSunday(offset int) time.Time {
	nextChristmas := time.Date(a.year+1, time.December, 25, 0, 0, 0, 0, time.UTC)
	last := OnOrAfter(nextChristmas.AddDate(0, 0, -35), time.Sunday)
	return last.AddDate(0, 0, offset)
}

// NextAdvent returns Advent 1 of the following church year.
func (a Anchors) NextAdvent() time.Time {
	return NextWeekday(a.LastSunday(0), time.Sunday)
}

// -----------------------------------------------------------------------------
// Dispatch
// -----------------------------------------------------------------------------

// Resolve locates the day of a table anchor. ok is false when the anchor has
// no date this year (a short Epiphany or Trinity season, a Christmas weekday
// falling on Sunday); the caller skips the entry. An error means the anchor
// itself is malformed.
func (a Anchors) Resolve(anchor lectionary.Anchor) (date time.Time, ok bool, err error) {
	if err := anchor.Validate(); err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %v", ErrUnknownAnchor, err)
	}

	switch anchor.Kind {
	case lectionary.AnchorChristmas:
		return a.Christmas(anchor.Offset), true, nil
	case lectionary.AnchorChristmasWeekday:
		date, ok = a.ChristmasWeekday(anchor.Offset)
	case lectionary.AnchorChristmasSunday:
		date, ok = a.ChristmasSunday(anchor.Week)
	case lectionary.AnchorAdventSunday:
		date, ok = a.AdventSunday(anchor.Week)
	case lectionary.AnchorEpiphany:
		return a.Epiphany(), true, nil
	case lectionary.AnchorEpiphanySunday:
		date, ok = a.EpiphanySunday(anchor.Week)
	case lectionary.AnchorTransfiguration:
		return a.Transfiguration(), true, nil
	case lectionary.AnchorGesima:
		date, ok = a.Gesima(anchor.Gesima)
		if !ok {
			return time.Time{}, false, fmt.Errorf("%w: gesima %q", ErrUnknownAnchor, anchor.Gesima)
		}
	case lectionary.AnchorAshWednesday:
		return a.AshWednesday(), true, nil
	case lectionary.AnchorLentSunday:
		return a.LentSunday(anchor.Week), true, nil
	case lectionary.AnchorMaundyThursday:
		return a.MaundyThursday(), true, nil
	case lectionary.AnchorGoodFriday:
		return a.GoodFriday(), true, nil
	case lectionary.AnchorEastertideSunday:
		return a.EastertideSunday(anchor.Week), true, nil
	case lectionary.AnchorAscension:
		return a.Ascension(), true, nil
	case lectionary.AnchorPentecost:
		return a.Pentecost(), true, nil
	case lectionary.AnchorTrinitySunday:
		return a.TrinitySunday(), true, nil
	case lectionary.AnchorSundayAfterTrinity:
		date, ok = a.SundayAfterTrinity(anchor.Week)
	case lectionary.AnchorLastSunday:
		return a.LastSunday(anchor.Offset), true, nil
	default:
		return time.Time{}, false, fmt.Errorf("%w: %s", ErrUnknownAnchor, anchor.Kind)
	}
	return date, ok, nil
}
