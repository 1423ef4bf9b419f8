// Package lectionary holds the rule tables that drive the church-year engine:
// the moveable-feast table, the Ember/Rogation table and the fixed festival
// table, plus the day records the engine produces from them.
package lectionary

import (
	"fmt"
	"strings"
	"time"
)

// -----------------------------------------------------------------
// Season constants and helpers
// -----------------------------------------------------------------

// SeasonID identifies one of the six seasons of a church year.
type SeasonID string

const (
	SeasonAdvent       SeasonID = "advent"
	SeasonChristmas    SeasonID = "christmas"
	SeasonEpiphany     SeasonID = "epiphany"
	SeasonLententide   SeasonID = "lententide"
	SeasonEaster       SeasonID = "easter"
	SeasonOrdinaryTime SeasonID = "ordinary_time"
)

// Seasons returns the season identifiers in church-year order.
func Seasons() []SeasonID {
	return []SeasonID{
		SeasonAdvent,
		SeasonChristmas,
		SeasonEpiphany,
		SeasonLententide,
		SeasonEaster,
		SeasonOrdinaryTime,
	}
}

// IsValid checks if a season is one of the six known seasons.
func (s SeasonID) IsValid() bool {
	for _, valid := range Seasons() {
		if s == valid {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------
// Orders of service
// -----------------------------------------------------------------

// Order is an order of service (ordo). It selects which psalm slot of a day
// record applies.
type Order string

const (
	OrderMatins       Order = "matins"
	OrderVespers      Order = "vespers"
	OrderChiefService Order = "chief_service"
)

// Orders returns all known orders of service.
func Orders() []Order {
	return []Order{OrderMatins, OrderVespers, OrderChiefService}
}

// IsValid checks if an order is known.
func (o Order) IsValid() bool {
	for _, valid := range Orders() {
		if o == valid {
			return true
		}
	}
	return false
}

// Display returns the human readable name of the order.
func (o Order) Display() string {
	switch o {
	case OrderMatins:
		return "Matins"
	case OrderVespers:
		return "Vespers"
	case OrderChiefService:
		return "Chief Service"
	}
	return string(o)
}

// ParseOrder converts a key such as "vespers" into an Order.
func ParseOrder(s string) (Order, error) {
	o := Order(strings.ToLower(strings.TrimSpace(s)))
	if !o.IsValid() {
		return "", fmt.Errorf("unknown order of service %q", s)
	}
	return o, nil
}

// -----------------------------------------------------------------
// Liturgical colors
// -----------------------------------------------------------------

// Color is a liturgical color.
type Color string

const (
	ColorViolet Color = "violet"
	ColorWhite  Color = "white"
	ColorRed    Color = "red"
	ColorGreen  Color = "green"
	ColorBlack  Color = "black"
	ColorRose   Color = "rose"
	ColorBlue   Color = "blue"
	ColorGold   Color = "gold"
)

// IsValid checks if a color is one the tables may use.
func (c Color) IsValid() bool {
	switch c {
	case ColorViolet, ColorWhite, ColorRed, ColorGreen, ColorBlack, ColorRose, ColorBlue, ColorGold:
		return true
	}
	return false
}

// -----------------------------------------------------------------
// Day payloads
// -----------------------------------------------------------------

// Readings is the set of lections appointed for a day.
type Readings struct {
	Epistle string `yaml:"epistle" json:"epistle"`
	Gospel  string `yaml:"gospel" json:"gospel"`
	OT      string `yaml:"ot,omitempty" json:"ot,omitempty"`
}

// List returns the citations in lectionary order: epistle, gospel and, when
// present, the Old Testament reading.
func (r Readings) List() []string {
	list := []string{r.Epistle, r.Gospel}
	if r.OT != "" {
		list = append(list, r.OT)
	}
	return list
}

// HymnRef points at a hymn by hymnal and number.
type HymnRef struct {
	Hymnal string `yaml:"hymnal" json:"hymnal"`
	Index  int    `yaml:"index" json:"index"`
}

// DefaultHymnal is assumed when a table gives a bare hymn number.
const DefaultHymnal = "TLH"

// Clone returns a copy of h, or nil.
func (h *HymnRef) Clone() *HymnRef {
	if h == nil {
		return nil
	}
	c := *h
	return &c
}

func (h HymnRef) String() string {
	return fmt.Sprintf("%s %d", h.Hymnal, h.Index)
}

// DayKind tells how a day record came to be registered.
type DayKind string

const (
	KindProper   DayKind = "proper"   // the anchored day of a table entry
	KindWeekday  DayKind = "weekday"  // propagated forward from a proper
	KindEmber    DayKind = "ember"    // Ember day
	KindRogation DayKind = "rogation" // Rogation day
	KindFestival DayKind = "festival" // fixed-date festival, never registered in a season
)

// DayRecord is the liturgical payload for one calendar date.
type DayRecord struct {
	Display  string   `json:"display"`
	Kind     DayKind  `json:"kind"`
	Color    Color    `json:"color"`
	Readings Readings `json:"readings"`
	Introit  string   `json:"introit,omitempty"`
	Collect  string   `json:"collect,omitempty"`
	Gradual  string   `json:"gradual,omitempty"`
	Psalms   Psalms   `json:"psalms"`
	Hymn     *HymnRef `json:"hymn,omitempty"`
}

// Clone returns a copy of d that shares no psalm slices, maps or hymn
// pointer with it. Records handed out of the engine are always clones, so
// callers may edit them freely.
func (d DayRecord) Clone() DayRecord {
	d.Psalms = d.Psalms.Clone()
	d.Hymn = d.Hymn.Clone()
	return d
}

// IsEmber reports whether the record is an Ember or Rogation day.
func (d DayRecord) IsEmber() bool {
	return d.Kind == KindEmber || d.Kind == KindRogation
}

// FestivalRecord is a fixed-date festival keyed by month and day.
type FestivalRecord struct {
	Date     string   `yaml:"date" json:"date"` // "M-D", e.g. "12-25"
	Name     string   `yaml:"name" json:"name"`
	Color    Color    `yaml:"color" json:"color"`
	Readings Readings `yaml:"readings" json:"readings"`
	Introit  string   `yaml:"introit,omitempty" json:"introit,omitempty"`
	Collect  string   `yaml:"collect,omitempty" json:"collect,omitempty"`
	Gradual  string   `yaml:"gradual,omitempty" json:"gradual,omitempty"`
	Psalms   Psalms   `yaml:"psalm,omitempty" json:"psalms"`
	Hymn     *HymnRef `yaml:"hymn,omitempty" json:"hymn,omitempty"`
}

// Record converts the festival into a day record.
func (f FestivalRecord) Record() DayRecord {
	return DayRecord{
		Display:  f.Name,
		Kind:     KindFestival,
		Color:    f.Color,
		Readings: f.Readings,
		Introit:  f.Introit,
		Collect:  f.Collect,
		Gradual:  f.Gradual,
		Psalms:   f.Psalms.Clone(),
		Hymn:     f.Hymn.Clone(),
	}
}

func (f FestivalRecord) clone() FestivalRecord {
	f.Psalms = f.Psalms.Clone()
	f.Hymn = f.Hymn.Clone()
	return f
}

// MonthDay returns the parsed month and day of the festival key.
func (f FestivalRecord) MonthDay() (time.Month, int, error) {
	return ParseMonthDay(f.Date)
}

// DayKey formats a month and day as a festival key ("M-D", no padding).
func DayKey(month time.Month, day int) string {
	return fmt.Sprintf("%d-%d", int(month), day)
}

// ParseMonthDay parses a festival key such as "2-29". Any day that exists in
// a leap year is accepted.
func ParseMonthDay(key string) (time.Month, int, error) {
	var m, d int
	if _, err := fmt.Sscanf(key, "%d-%d", &m, &d); err != nil {
		return 0, 0, fmt.Errorf("invalid month-day key %q", key)
	}
	if DayKey(time.Month(m), d) != key {
		return 0, 0, fmt.Errorf("invalid month-day key %q: use M-D without padding", key)
	}
	if m < 1 || m > 12 {
		return 0, 0, fmt.Errorf("invalid month in key %q", key)
	}
	// 2000 is a leap year, so Feb 29 survives the round trip.
	t := time.Date(2000, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if d < 1 || t.Month() != time.Month(m) {
		return 0, 0, fmt.Errorf("invalid day in key %q", key)
	}
	return time.Month(m), d, nil
}
