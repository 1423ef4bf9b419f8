package lectionary

import (
	"bytes"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"
)

// File names of the three rule tables, both embedded and on disk.
const (
	MoveableFeastsFile = "moveable_feasts.yaml"
	EmberDaysFile      = "ember_days.yaml"
	FestivalsFile      = "festivals.yaml"
)

//go:embed data/*.yaml
var defaultData embed.FS

// =============================================================================
// Table entries
// =============================================================================

// MoveableFeast is one row of the moveable-feast table: the anchored day
// (usually a Sunday) and, optionally, the weekdays that follow it.
type MoveableFeast struct {
	Display string `yaml:"display" json:"display"`
	Anchor  Anchor `yaml:",inline" json:"anchor"`

	Color    Color    `yaml:"color" json:"color"`
	Readings Readings `yaml:"readings" json:"readings"`
	Psalms   Psalms   `yaml:"psalm,omitempty" json:"psalms"`
	Hymn     *HymnRef `yaml:"hymn,omitempty" json:"hymn,omitempty"`
	Introit  string   `yaml:"introit,omitempty" json:"introit,omitempty"`
	Collect  string   `yaml:"collect,omitempty" json:"collect,omitempty"`
	Gradual  string   `yaml:"gradual,omitempty" json:"gradual,omitempty"`

	// WeekdayDisplay is a template; the token WEEKDAY is replaced with the
	// weekday name ("Monday after Advent 1").
	WeekdayDisplay  string     `yaml:"weekday_display,omitempty" json:"weekday_display,omitempty"`
	WeekdayReadings []Readings `yaml:"weekday_readings,omitempty" json:"weekday_readings,omitempty"`
}

// WeekdayToken is replaced by the weekday name in WeekdayDisplay.
const WeekdayToken = "WEEKDAY"

// Record builds the day record for the anchored day.
func (m MoveableFeast) Record() DayRecord {
	return DayRecord{
		Display:  m.Display,
		Kind:     KindProper,
		Color:    m.Color,
		Readings: m.Readings,
		Introit:  m.Introit,
		Collect:  m.Collect,
		Gradual:  m.Gradual,
		Psalms:   m.Psalms.Clone(),
		Hymn:     m.Hymn.Clone(),
	}
}

func (m MoveableFeast) clone() MoveableFeast {
	m.Psalms = m.Psalms.Clone()
	m.Hymn = m.Hymn.Clone()
	m.WeekdayReadings = slices.Clone(m.WeekdayReadings)
	return m
}

// WeekdayRecord builds the record for the i-th weekday after the anchored
// day. Color, psalms and collect carry over from the anchored day.
func (m MoveableFeast) WeekdayRecord(i int, weekday time.Weekday) DayRecord {
	return DayRecord{
		Display:  strings.ReplaceAll(m.WeekdayDisplay, WeekdayToken, weekday.String()),
		Kind:     KindWeekday,
		Color:    m.Color,
		Readings: m.WeekdayReadings[i],
		Collect:  m.Collect,
		Psalms:   m.Psalms.Clone(),
	}
}

// EmberDay is one row of the Ember/Rogation table.
type EmberDay struct {
	Readings Readings `yaml:"readings" json:"readings"`
	Psalms   Psalms   `yaml:"psalm,omitempty" json:"psalms"`
	Introit  string   `yaml:"introit,omitempty" json:"introit,omitempty"`
	Collect  string   `yaml:"collect,omitempty" json:"collect,omitempty"`
	Gradual  string   `yaml:"gradual,omitempty" json:"gradual,omitempty"`
}

func (e EmberDay) clone() EmberDay {
	e.Psalms = e.Psalms.Clone()
	return e
}

// EmberSeasons are the seasons that may carry Ember or Rogation days.
func EmberSeasons() []SeasonID {
	return []SeasonID{SeasonAdvent, SeasonLententide, SeasonEaster, SeasonOrdinaryTime}
}

// =============================================================================
// Tables
// =============================================================================

// Tables is the immutable rule configuration of an engine. Build it with
// Parse, Default, LoadDir or New. The rows are only reachable through
// accessors that return copies, so one Tables value can back any number of
// engines and concurrent lookups.
type Tables struct {
	moveable  map[SeasonID][]MoveableFeast
	ember     map[SeasonID]map[time.Weekday]EmberDay
	festivals *FestivalIndex

	fingerprint string
}

// MoveableFeasts returns a copy of a season's moveable-feast rows in table
// order.
func (t *Tables) MoveableFeasts(season SeasonID) []MoveableFeast {
	rows := t.moveable[season]
	if rows == nil {
		return nil
	}
	out := make([]MoveableFeast, len(rows))
	for i, m := range rows {
		out[i] = m.clone()
	}
	return out
}

// EmberDays returns a copy of a season's Ember or Rogation rows.
func (t *Tables) EmberDays(season SeasonID) map[time.Weekday]EmberDay {
	days := t.ember[season]
	if days == nil {
		return nil
	}
	out := make(map[time.Weekday]EmberDay, len(days))
	for wd, d := range days {
		out[wd] = d.clone()
	}
	return out
}

// Festivals returns the fixed-date festival index.
func (t *Tables) Festivals() *FestivalIndex {
	return t.festivals
}

// RawTables carries the undecoded bytes of the three table files.
type RawTables struct {
	MoveableFeasts []byte
	EmberDays      []byte
	Festivals      []byte
}

// Fingerprint returns a BLAKE2b-256 digest of the raw tables.
func (r RawTables) Fingerprint() string {
	h, _ := blake2b.New256(nil) // only fails for oversized keys
	for _, part := range [][]byte{r.MoveableFeasts, r.EmberDays, r.Festivals} {
		h.Write(part)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint identifies the table contents the engine was built from.
func (t *Tables) Fingerprint() string {
	return t.fingerprint
}

// SetFingerprint records the fingerprint of tables that were not parsed from
// raw bytes (for example tables read back from storage).
func (t *Tables) SetFingerprint(fp string) {
	t.fingerprint = fp
}

// Parse decodes and validates the three tables.
func Parse(raw RawTables) (*Tables, error) {
	var moveable map[SeasonID][]MoveableFeast
	if err := decodeStrict(raw.MoveableFeasts, &moveable); err != nil {
		return nil, &ConfigError{Table: MoveableFeastsFile, Msg: err.Error()}
	}

	var ember map[SeasonID]map[string]EmberDay
	if err := decodeStrict(raw.EmberDays, &ember); err != nil {
		return nil, &ConfigError{Table: EmberDaysFile, Msg: err.Error()}
	}

	var festivals []FestivalRecord
	if err := decodeStrict(raw.Festivals, &festivals); err != nil {
		return nil, &ConfigError{Table: FestivalsFile, Msg: err.Error()}
	}

	t, err := New(moveable, ember, festivals)
	if err != nil {
		return nil, err
	}
	t.fingerprint = raw.Fingerprint()
	return t, nil
}

// New assembles tables from decoded rows and validates them. Ember rows are
// keyed by weekday name ("Wednesday").
func New(moveable map[SeasonID][]MoveableFeast, ember map[SeasonID]map[string]EmberDay, festivals []FestivalRecord) (*Tables, error) {
	var errs []error

	t := &Tables{
		moveable: make(map[SeasonID][]MoveableFeast, len(moveable)),
		ember:    make(map[SeasonID]map[time.Weekday]EmberDay, len(ember)),
	}
	for season, rows := range moveable {
		copied := make([]MoveableFeast, len(rows))
		for i, m := range rows {
			copied[i] = m.clone()
		}
		t.moveable[season] = copied
	}

	for season, days := range ember {
		byWeekday := make(map[time.Weekday]EmberDay, len(days))
		for name, day := range days {
			wd, err := ParseWeekday(name)
			if err != nil {
				errs = append(errs, &ConfigError{Table: EmberDaysFile, Path: string(season) + "." + name, Msg: err.Error()})
				continue
			}
			byWeekday[wd] = day.clone()
		}
		t.ember[season] = byWeekday
	}

	index, err := NewFestivalIndex(festivals)
	if err != nil {
		errs = append(errs, err)
	}
	t.festivals = index

	if err := t.Validate(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return t, nil
}

// Default returns the tables embedded in the binary.
func Default() (*Tables, error) {
	raw, err := readTables(func(name string) ([]byte, error) {
		return defaultData.ReadFile("data/" + name)
	})
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// DefaultRaw returns the raw bytes of the embedded tables.
func DefaultRaw() (RawTables, error) {
	return readTables(func(name string) ([]byte, error) {
		return defaultData.ReadFile("data/" + name)
	})
}

// LoadDir reads the three tables from a directory.
func LoadDir(dir string) (*Tables, error) {
	raw, err := ReadDir(dir)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// ReadDir reads the raw bytes of the three tables from a directory.
func ReadDir(dir string) (RawTables, error) {
	return readTables(func(name string) ([]byte, error) {
		return os.ReadFile(filepath.Join(dir, name))
	})
}

func readTables(read func(name string) ([]byte, error)) (RawTables, error) {
	var raw RawTables
	var err error

	if raw.MoveableFeasts, err = read(MoveableFeastsFile); err != nil {
		return raw, fmt.Errorf("read %s: %w", MoveableFeastsFile, err)
	}
	if raw.EmberDays, err = read(EmberDaysFile); err != nil {
		return raw, fmt.Errorf("read %s: %w", EmberDaysFile, err)
	}
	if raw.Festivals, err = read(FestivalsFile); err != nil {
		return raw, fmt.Errorf("read %s: %w", FestivalsFile, err)
	}
	return raw, nil
}

// decodeStrict decodes YAML and rejects unknown fields.
func decodeStrict(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ParseWeekday converts an English weekday name into a time.Weekday.
func ParseWeekday(name string) (time.Weekday, error) {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if strings.EqualFold(wd.String(), name) {
			return wd, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}

// SortedWeekdays returns the weekdays of an Ember season in week order.
func SortedWeekdays(days map[time.Weekday]EmberDay) []time.Weekday {
	out := make([]time.Weekday, 0, len(days))
	for wd := range days {
		out = append(out, wd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
