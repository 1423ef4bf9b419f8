package calendar

import (
	"fmt"
	"time"

	"github.com/zapponejosh/lutherald/internal/lectionary"
)

// EmberDate returns the Ember (or Rogation) day of a season falling on
// weekday: the first such weekday strictly after the season's landmark.
func (a Anchors) EmberDate(season lectionary.SeasonID, weekday time.Weekday) (time.Time, error) {
	var landmark time.Time
	switch season {
	case lectionary.SeasonAdvent:
		// St. Lucy
		landmark = time.Date(a.year, time.December, 13, 0, 0, 0, 0, time.UTC)
	case lectionary.SeasonLententide:
		landmark = a.LentSunday(1)
	case lectionary.SeasonEaster:
		landmark = a.EastertideSunday(5)
	case lectionary.SeasonOrdinaryTime:
		landmark = a.Pentecost()
	default:
		return time.Time{}, fmt.Errorf("season %q has no Ember days", season)
	}
	return NextWeekday(landmark, weekday), nil
}

// EmberRecord builds the day record of an Ember or Rogation day.
func EmberRecord(season lectionary.SeasonID, weekday time.Weekday, day lectionary.EmberDay) lectionary.DayRecord {
	rec := lectionary.DayRecord{
		Display:  "Ember " + weekday.String(),
		Kind:     lectionary.KindEmber,
		Color:    lectionary.ColorViolet,
		Readings: day.Readings,
		Introit:  day.Introit,
		Collect:  day.Collect,
		Gradual:  day.Gradual,
		Psalms:   day.Psalms.Clone(),
	}
	if season == lectionary.SeasonEaster {
		rec.Display = "Rogation " + weekday.String()
		rec.Kind = lectionary.KindRogation
	}
	if season == lectionary.SeasonOrdinaryTime {
		rec.Color = lectionary.ColorRed
	}
	return rec
}

// WriteEmberDays registers a season's Ember days, overwriting whatever the
// moveable feasts put on those dates. Running it again yields the same
// records.
func WriteEmberDays(season *Season, a Anchors, days map[time.Weekday]lectionary.EmberDay) error {
	for _, wd := range lectionary.SortedWeekdays(days) {
		date, err := a.EmberDate(season.ID, wd)
		if err != nil {
			return err
		}
		if _, err := season.Register(date, EmberRecord(season.ID, wd, days[wd])); err != nil {
			return fmt.Errorf("ember %s: %w", wd, err)
		}
	}
	return nil
}
