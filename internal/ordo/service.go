package ordo

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/zapponejosh/lutherald/internal/calendar"
	"github.com/zapponejosh/lutherald/internal/lectionary"
)

// ErrInvalidSettings is wrapped by every settings validation error.
var ErrInvalidSettings = errors.New("invalid service settings")

// Chief hymn settings besides a hymn number.
const (
	HymnDefault = "default" // the hymn appointed in the tables
	HymnSame    = "same"    // no separate chief hymn
)

// Settings selects how a service is prepared.
type Settings struct {
	Order lectionary.Order `json:"order"`
	Day   OptionType       `json:"day"`

	// ReplacePsalm swaps the psalm for the introit at matins and vespers.
	ReplacePsalm   bool `json:"replace_psalm"`
	MonthlyPsalter bool `json:"monthly_psalter"`

	ChiefHymn string `json:"chief_hymn"`

	// ResponsivePsalm borrows the matins or vespers psalm as the Old
	// Testament responsory of the chief service.
	ResponsivePsalm lectionary.Order `json:"responsive_psalm,omitempty"`

	Canticle string `json:"canticle,omitempty"`
}

// Defaults returns the settings an order starts from.
func Defaults(order lectionary.Order) Settings {
	s := Settings{Order: order, Day: OptionDefault, ChiefHymn: HymnDefault}
	switch order {
	case lectionary.OrderMatins:
		s.Canticle = "te_deum"
	case lectionary.OrderVespers:
		s.Canticle = "magnificat"
	}
	return s
}

// Validate reports every problem with the settings, joined.
func (s Settings) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidSettings, fmt.Sprintf(format, args...)))
	}

	if !s.Order.IsValid() {
		add("unknown order of service %q", s.Order)
	}
	if _, err := ParseOptionType(string(s.Day)); err != nil {
		add("%v", err)
	}
	if _, err := parseHymnSetting(s.ChiefHymn); err != nil {
		add("%v", err)
	}

	if s.ResponsivePsalm != "" {
		if s.Order != lectionary.OrderChiefService {
			add("responsive_psalm only applies to the chief service")
		}
		if s.ResponsivePsalm != lectionary.OrderMatins && s.ResponsivePsalm != lectionary.OrderVespers {
			add("responsive_psalm must be matins or vespers, got %q", s.ResponsivePsalm)
		}
	}

	if s.Order == lectionary.OrderChiefService && (s.ReplacePsalm || s.MonthlyPsalter) {
		add("replace_psalm and monthly_psalter only apply to matins and vespers")
	}

	return errors.Join(errs...)
}

// Psalmody is the psalm portion of an office.
type Psalmody struct {
	Introit            string   `json:"introit,omitempty"`
	Psalms             []string `json:"psalms,omitempty"`
	ReplaceWithIntroit bool     `json:"replace_with_introit"`
}

// PsalmodyFor selects the psalm slot of rec for order. The introit only
// replaces the psalm when the day has one.
func PsalmodyFor(rec *lectionary.DayRecord, order lectionary.Order, replace bool) Psalmody {
	if rec == nil {
		return Psalmody{}
	}
	return Psalmody{
		Introit:            rec.Introit,
		Psalms:             rec.Psalms.For(order),
		ReplaceWithIntroit: replace && rec.Introit != "",
	}
}

// ChiefHymn resolves a chief hymn setting against rec: "default" takes the
// appointed hymn, a number names a hymn in the default hymnal, and "" or
// "same" means no chief hymn.
func ChiefHymn(rec *lectionary.DayRecord, setting string) (*lectionary.HymnRef, error) {
	n, err := parseHymnSetting(setting)
	if err != nil {
		return nil, err
	}

	switch {
	case setting == HymnDefault:
		if rec == nil {
			return nil, nil
		}
		return rec.Hymn.Clone(), nil
	case n > 0:
		return &lectionary.HymnRef{Hymnal: lectionary.DefaultHymnal, Index: n}, nil
	}
	return nil, nil
}

// parseHymnSetting returns the hymn number of a numeric setting, or 0.
func parseHymnSetting(setting string) (int, error) {
	switch setting {
	case "", HymnSame, HymnDefault:
		return 0, nil
	}
	n, err := strconv.Atoi(setting)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("chief hymn must be %q, %q, empty or a hymn number; got %q", HymnDefault, HymnSame, setting)
	}
	return n, nil
}

// Responsory returns the psalm of the matins or vespers slot for use as the
// chief service responsory. Any other order yields nothing.
func Responsory(rec *lectionary.DayRecord, from lectionary.Order) []string {
	if rec == nil {
		return nil
	}
	if from != lectionary.OrderMatins && from != lectionary.OrderVespers {
		return nil
	}
	return rec.Psalms.For(from)
}

// Service is everything an order of service needs for one date.
type Service struct {
	Date      string           `json:"date"`
	Order     lectionary.Order `json:"order"`
	OrderName string           `json:"order_name"`
	Day       DayOption        `json:"day"`

	Color    lectionary.Color     `json:"color,omitempty"`
	Readings *lectionary.Readings `json:"readings,omitempty"`
	Collect  string               `json:"collect,omitempty"`
	Gradual  string               `json:"gradual,omitempty"`

	Psalmody      Psalmody            `json:"psalmody"`
	MonthlyPsalms []string            `json:"monthly_psalms,omitempty"`
	Responsory    []string            `json:"responsory,omitempty"`
	ChiefHymn     *lectionary.HymnRef `json:"chief_hymn,omitempty"`
	Canticle      string              `json:"canticle,omitempty"`
}

// Build prepares the service for date under s.
func (b *Builder) Build(date time.Time, s Settings) (*Service, error) {
	if s.Day == "" {
		s.Day = OptionDefault
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	opt, err := b.Option(date, s.Day)
	if err != nil {
		return nil, err
	}
	rec := opt.Record

	hymn, err := ChiefHymn(rec, s.ChiefHymn)
	if err != nil {
		return nil, err
	}

	svc := &Service{
		Date:      calendar.FormatDate(date),
		Order:     s.Order,
		OrderName: s.Order.Display(),
		Day:       opt,
		Psalmody:  PsalmodyFor(rec, s.Order, s.ReplacePsalm),
		ChiefHymn: hymn,
		Canticle:  s.Canticle,
	}

	if rec != nil {
		svc.Color = rec.Color
		readings := rec.Readings
		svc.Readings = &readings
		svc.Collect = rec.Collect
		if s.Order == lectionary.OrderChiefService {
			svc.Gradual = rec.Gradual
		}
	}

	if s.Order == lectionary.OrderChiefService {
		svc.Responsory = Responsory(rec, s.ResponsivePsalm)
	}

	if s.MonthlyPsalter && b.psalter != nil {
		svc.MonthlyPsalms = b.psalter.MonthlyPsalms(date, s.Order)
	}

	return svc, nil
}
