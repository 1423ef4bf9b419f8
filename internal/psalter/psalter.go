// Package psalter appoints psalms by day of the month, independent of the
// church year.
package psalter

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zapponejosh/lutherald/internal/lectionary"
)

// Days is the length of the cycle; the 31st of a month repeats the 30th.
const Days = 30

//go:embed data/monthly_psalter.yaml
var defaultData []byte

// Day holds the psalms for morning and evening prayer.
type Day struct {
	Morning []string `yaml:"morning" json:"morning"`
	Evening []string `yaml:"evening" json:"evening"`
}

// Psalter is a thirty-day psalm cycle.
type Psalter struct {
	days [Days]Day
}

// Default returns the embedded Prayer Book psalter.
func Default() (*Psalter, error) {
	return Parse(defaultData)
}

// Parse reads a psalter keyed by day number 1 through 30.
func Parse(data []byte) (*Psalter, error) {
	var byDay map[int]Day
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&byDay); err != nil {
		return nil, fmt.Errorf("decode psalter: %w", err)
	}

	p := &Psalter{}
	for n, day := range byDay {
		if n < 1 || n > Days {
			return nil, fmt.Errorf("psalter day %d out of range 1-%d", n, Days)
		}
		p.days[n-1] = day
	}
	for i, day := range p.days {
		if len(day.Morning) == 0 || len(day.Evening) == 0 {
			return nil, fmt.Errorf("psalter day %d needs morning and evening psalms", i+1)
		}
	}
	return p, nil
}

// ForDay returns the psalms for a day of the month, 1 through 31.
func (p *Psalter) ForDay(day int) (Day, error) {
	if day < 1 || day > 31 {
		return Day{}, fmt.Errorf("day of month %d out of range", day)
	}
	if day > Days {
		day = Days
	}
	return p.days[day-1], nil
}

// ForDate returns the psalms for the date's day of the month.
func (p *Psalter) ForDate(date time.Time) Day {
	day, _ := p.ForDay(date.Day())
	return day
}

// MonthlyPsalms returns the morning psalms for matins, the evening psalms for
// vespers and nothing for other orders.
func (p *Psalter) MonthlyPsalms(date time.Time, order lectionary.Order) []string {
	day := p.ForDate(date)
	switch order {
	case lectionary.OrderMatins:
		return day.Morning
	case lectionary.OrderVespers:
		return day.Evening
	}
	return nil
}
