package lectionary

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// AnchorKind names the date function that locates a table entry's day.
// The set is closed: a table naming anything else fails to load.
type AnchorKind int

const (
	AnchorUnknown AnchorKind = iota
	AnchorChristmas
	AnchorChristmasWeekday
	AnchorChristmasSunday
	AnchorAdventSunday
	AnchorEpiphany
	AnchorEpiphanySunday
	AnchorTransfiguration
	AnchorGesima
	AnchorAshWednesday
	AnchorLentSunday
	AnchorMaundyThursday
	AnchorGoodFriday
	AnchorEastertideSunday
	AnchorAscension
	AnchorPentecost
	AnchorTrinitySunday
	AnchorSundayAfterTrinity
	AnchorLastSunday
)

var anchorNames = map[AnchorKind]string{
	AnchorChristmas:          "christmas",
	AnchorChristmasWeekday:   "christmas_weekday",
	AnchorChristmasSunday:    "christmas_sunday",
	AnchorAdventSunday:       "advent_sunday",
	AnchorEpiphany:           "epiphany",
	AnchorEpiphanySunday:     "epiphany_sunday",
	AnchorTransfiguration:    "transfiguration",
	AnchorGesima:             "gesima",
	AnchorAshWednesday:       "ash_wednesday",
	AnchorLentSunday:         "lent_sunday",
	AnchorMaundyThursday:     "maundy_thursday",
	AnchorGoodFriday:         "good_friday",
	AnchorEastertideSunday:   "eastertide_sunday",
	AnchorAscension:          "ascension",
	AnchorPentecost:          "pentecost",
	AnchorTrinitySunday:      "trinity_sunday",
	AnchorSundayAfterTrinity: "sunday_after_trinity",
	AnchorLastSunday:         "last_sunday",
}

func (k AnchorKind) String() string {
	if name, ok := anchorNames[k]; ok {
		return name
	}
	return fmt.Sprintf("anchor(%d)", int(k))
}

// ParseAnchorKind converts a table name such as "lent_sunday" into a kind.
func ParseAnchorKind(name string) (AnchorKind, error) {
	for kind, n := range anchorNames {
		if n == name {
			return kind, nil
		}
	}
	return AnchorUnknown, fmt.Errorf("unknown anchor %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (k AnchorKind) MarshalText() ([]byte, error) {
	if _, ok := anchorNames[k]; !ok {
		return nil, fmt.Errorf("cannot marshal %s", k)
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *AnchorKind) UnmarshalText(text []byte) error {
	kind, err := ParseAnchorKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// UnmarshalYAML decodes an anchor name and reports the offending line.
func (k *AnchorKind) UnmarshalYAML(node *yaml.Node) error {
	if err := k.UnmarshalText([]byte(node.Value)); err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	return nil
}

// Gesima Sundays, named as the tables spell them.
const (
	Septuagesima  = "septuagesima"
	Sexagesima    = "sexagesima"
	Quinquagesima = "quinquagesima"
)

// Anchor is a resolved reference to a date function plus its argument.
// Week is the index for the counted anchors (Advent 1-4, Lent 1-6, ...),
// Offset a day offset for the Christmas and last-Sunday anchors, Gesima the
// name of a Gesima Sunday.
type Anchor struct {
	Kind   AnchorKind `yaml:"anchor" json:"kind"`
	Week   int        `yaml:"week,omitempty" json:"week,omitempty"`
	Offset int        `yaml:"offset,omitempty" json:"offset,omitempty"`
	Gesima string     `yaml:"gesima,omitempty" json:"gesima,omitempty"`
}

func (a Anchor) String() string {
	switch {
	case a.Gesima != "":
		return fmt.Sprintf("%s(%s)", a.Kind, a.Gesima)
	case a.Week != 0:
		return fmt.Sprintf("%s(%d)", a.Kind, a.Week)
	case a.Offset != 0:
		return fmt.Sprintf("%s(%+d)", a.Kind, a.Offset)
	}
	return a.Kind.String()
}

// anchorSeasons names the season each anchor's date always falls in.
var anchorSeasons = map[AnchorKind]SeasonID{
	AnchorAdventSunday:       SeasonAdvent,
	AnchorChristmas:          SeasonChristmas,
	AnchorChristmasWeekday:   SeasonChristmas,
	AnchorChristmasSunday:    SeasonChristmas,
	AnchorEpiphany:           SeasonEpiphany,
	AnchorEpiphanySunday:     SeasonEpiphany,
	AnchorTransfiguration:    SeasonEpiphany,
	AnchorGesima:             SeasonLententide,
	AnchorAshWednesday:       SeasonLententide,
	AnchorLentSunday:         SeasonLententide,
	AnchorMaundyThursday:     SeasonLententide,
	AnchorGoodFriday:         SeasonLententide,
	AnchorEastertideSunday:   SeasonEaster,
	AnchorAscension:          SeasonEaster,
	AnchorPentecost:          SeasonOrdinaryTime,
	AnchorTrinitySunday:      SeasonOrdinaryTime,
	AnchorSundayAfterTrinity: SeasonOrdinaryTime,
	AnchorLastSunday:         SeasonOrdinaryTime,
}

// Season returns the season the anchor's date falls in every year. The
// seventh Sunday of Eastertide is Pentecost and so opens ordinary time.
func (a Anchor) Season() SeasonID {
	if a.Kind == AnchorEastertideSunday && a.Week == 7 {
		return SeasonOrdinaryTime
	}
	return anchorSeasons[a.Kind]
}

// weekRanges bounds the Week argument of the counted anchors.
var weekRanges = map[AnchorKind][2]int{
	AnchorAdventSunday:       {1, 4},
	AnchorChristmasSunday:    {1, 2},
	AnchorEpiphanySunday:     {1, 6},
	AnchorLentSunday:         {1, 6},
	AnchorEastertideSunday:   {0, 7},
	AnchorSundayAfterTrinity: {1, 27},
}

// Validate checks that the argument fits the anchor kind.
func (a Anchor) Validate() error {
	if _, ok := anchorNames[a.Kind]; !ok {
		return fmt.Errorf("missing or unknown anchor")
	}

	if r, counted := weekRanges[a.Kind]; counted {
		if a.Week < r[0] || a.Week > r[1] {
			return fmt.Errorf("%s needs week between %d and %d, got %d", a.Kind, r[0], r[1], a.Week)
		}
	} else if a.Week != 0 {
		return fmt.Errorf("%s takes no week argument", a.Kind)
	}

	switch a.Kind {
	case AnchorChristmas:
		if a.Offset < 0 || a.Offset > 11 {
			return fmt.Errorf("christmas offset must stay within Dec 25 - Jan 5, got %d", a.Offset)
		}
	case AnchorChristmasWeekday:
		if a.Offset < 1 || a.Offset > 11 {
			return fmt.Errorf("christmas_weekday offset must be between 1 and 11, got %d", a.Offset)
		}
	case AnchorLastSunday:
		if a.Offset > 0 || a.Offset < -35 {
			return fmt.Errorf("last_sunday offset must be between -35 and 0, got %d", a.Offset)
		}
	default:
		if a.Offset != 0 {
			return fmt.Errorf("%s takes no offset", a.Kind)
		}
	}

	if a.Kind == AnchorGesima {
		switch a.Gesima {
		case Septuagesima, Sexagesima, Quinquagesima:
		default:
			return fmt.Errorf("unknown gesima Sunday %q", a.Gesima)
		}
	} else if a.Gesima != "" {
		return fmt.Errorf("%s takes no gesima argument", a.Kind)
	}

	return nil
}
