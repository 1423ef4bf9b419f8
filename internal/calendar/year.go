package calendar

import "time"

// LiturgicalYear returns the civil year in which the church year containing
// date began.
//
// The church year is identified by the year in which its Advent begins. For
// example, the church year "2024" runs from Advent 2024 through the Saturday
// before Advent 2025.
func LiturgicalYear(date time.Time) int {
	date = Midnight(date)
	year := date.Year()
	if date.Before(NewAnchors(year).FirstAdvent()) {
		return year - 1
	}
	return year
}
