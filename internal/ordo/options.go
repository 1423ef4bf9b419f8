// Package ordo prepares a day for an order of service: it offers the day
// options of a date and assembles the propers, psalmody and hymns an order
// needs from the chosen option.
package ordo

import (
	"errors"
	"fmt"
	"time"

	"github.com/zapponejosh/lutherald/internal/calendar"
	"github.com/zapponejosh/lutherald/internal/lectionary"
)

// ErrNoOption is returned when the requested day option does not exist for
// the date.
var ErrNoOption = errors.New("day option not available")

// OptionType names a day option.
type OptionType string

const (
	OptionDefault OptionType = "default" // whatever the church year registers
	OptionFeast   OptionType = "feast"   // the fixed festival on the date
	OptionEmber   OptionType = "ember"   // the Ember or Rogation day
)

// ParseOptionType converts "default", "feast" or "ember" into an OptionType.
// The empty string selects the default option.
func ParseOptionType(s string) (OptionType, error) {
	switch t := OptionType(s); t {
	case "":
		return OptionDefault, nil
	case OptionDefault, OptionFeast, OptionEmber:
		return t, nil
	}
	return "", fmt.Errorf("unknown day option %q", s)
}

// DayOption is one way of keeping a date. Record is nil for a default option
// on a date without propers.
type DayOption struct {
	Type    OptionType            `json:"type"`
	Display string                `json:"display"`
	Record  *lectionary.DayRecord `json:"record,omitempty"`
}

// Builder offers day options and builds services from them.
type Builder struct {
	engine  *calendar.Engine
	psalter Psalter
}

// Psalter appoints psalms by day of the month.
type Psalter interface {
	MonthlyPsalms(date time.Time, order lectionary.Order) []string
}

// NewBuilder creates a builder. psalter may be nil when the monthly psalter
// is not offered.
func NewBuilder(engine *calendar.Engine, psalter Psalter) *Builder {
	return &Builder{engine: engine, psalter: psalter}
}

// DayOptions returns the options for date: always the default day, then the
// fixed festival if one falls on the date, then the Ember or Rogation day if
// the default day is one.
func (b *Builder) DayOptions(date time.Time) ([]DayOption, error) {
	info, err := b.engine.Day(date)
	if err != nil {
		return nil, err
	}

	options := []DayOption{{
		Type:    OptionDefault,
		Display: info.Label(),
		Record:  info.Record,
	}}

	if f, ok := b.engine.Festival(info.Date); ok {
		rec := f.Record()
		options = append(options, DayOption{
			Type:    OptionFeast,
			Display: f.Name,
			Record:  &rec,
		})
	}

	if info.Record != nil && info.Record.IsEmber() {
		options = append(options, DayOption{
			Type:    OptionEmber,
			Display: info.Record.Display,
			Record:  info.Record,
		})
	}

	return options, nil
}

// Option returns the option of the given type for date.
func (b *Builder) Option(date time.Time, typ OptionType) (DayOption, error) {
	options, err := b.DayOptions(date)
	if err != nil {
		return DayOption{}, err
	}
	for _, opt := range options {
		if opt.Type == typ {
			return opt, nil
		}
	}
	return DayOption{}, fmt.Errorf("%w: %s on %s", ErrNoOption, typ, calendar.FormatDate(date))
}
