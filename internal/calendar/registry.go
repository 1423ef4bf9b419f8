package calendar

import (
	"fmt"

	"github.com/zapponejosh/lutherald/internal/lectionary"
)

// registerMoveableFeasts walks the moveable-feast table season by season in
// table order. Each entry registers its anchored day and then one day per
// weekday reading, stopping at the season end. Later registrations overwrite
// earlier ones.
func (cy *ChurchYear) registerMoveableFeasts(tables *lectionary.Tables) error {
	for _, id := range lectionary.Seasons() {
		season := cy.Season(id)

		for i, entry := range tables.MoveableFeasts(id) {
			date, ok, err := cy.anchors.Resolve(entry.Anchor)
			if err != nil {
				return fmt.Errorf("%s[%d] %q: %w", id, i, entry.Display, err)
			}
			if !ok {
				cy.skipped = append(cy.skipped, Skipped{Season: id, Display: entry.Display, Anchor: entry.Anchor})
				continue
			}

			if _, err := season.Register(date, entry.Record()); err != nil {
				return fmt.Errorf("%s[%d] %q (%s): %w", id, i, entry.Display, entry.Anchor, err)
			}

			for j := range entry.WeekdayReadings {
				day := date.AddDate(0, 0, j+1)
				if !season.Contains(day) {
					break
				}
				if _, err := season.Register(day, entry.WeekdayRecord(j, day.Weekday())); err != nil {
					return fmt.Errorf("%s[%d] %q weekday %d: %w", id, i, entry.Display, j+1, err)
				}
			}
		}
	}
	return nil
}
