package lectionary

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestPsalms_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		order   Order
		want    []string
		wantErr bool
	}{
		{name: "scalar", input: "Psalm 24", order: OrderMatins, want: []string{"Psalm 24"}},
		{name: "sequence", input: "[Psalm 2, Psalm 19]", order: OrderVespers, want: []string{"Psalm 2", "Psalm 19"}},
		{name: "keyed slot", input: "{default: Psalm 118, vespers: [Psalm 113, Psalm 114]}", order: OrderVespers, want: []string{"Psalm 113", "Psalm 114"}},
		{name: "keyed falls back to default", input: "{default: Psalm 118, vespers: Psalm 113}", order: OrderMatins, want: []string{"Psalm 118"}},
		{name: "keyed without default", input: "{matins: Psalm 29}", order: OrderChiefService, want: nil},
		{name: "nested map rejected", input: "{matins: {a: b}}", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Psalms
			err := yaml.Unmarshal([]byte(tt.input), &p)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.For(tt.order))
		})
	}
}

func TestPsalms_JSON(t *testing.T) {
	p := Psalms{
		Default: []string{"Psalm 8"},
		ByOrder: map[Order][]string{OrderMatins: {"Psalm 29"}},
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"default":["Psalm 8"],"matins":["Psalm 29"]}`, string(data))

	var back Psalms
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, p, back)
}

func TestHymnRef_UnmarshalYAML(t *testing.T) {
	var bare HymnRef
	require.NoError(t, yaml.Unmarshal([]byte("62"), &bare))
	assert.Equal(t, HymnRef{Hymnal: "TLH", Index: 62}, bare)

	var keyed HymnRef
	require.NoError(t, yaml.Unmarshal([]byte("{hymnal: LSB, index: 332}"), &keyed))
	assert.Equal(t, HymnRef{Hymnal: "LSB", Index: 332}, keyed)
	assert.Equal(t, "LSB 332", keyed.String())

	var bad HymnRef
	assert.Error(t, yaml.Unmarshal([]byte("sixty-two"), &bad))
}

func TestParseMonthDay(t *testing.T) {
	tests := []struct {
		key       string
		wantMonth time.Month
		wantDay   int
		wantErr   bool
	}{
		{key: "12-25", wantMonth: time.December, wantDay: 25},
		{key: "1-6", wantMonth: time.January, wantDay: 6},
		{key: "2-29", wantMonth: time.February, wantDay: 29},
		{key: "2-30", wantErr: true},
		{key: "01-06", wantErr: true},
		{key: "13-1", wantErr: true},
		{key: "0-1", wantErr: true},
		{key: "christmas", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m, d, err := ParseMonthDay(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMonth, m)
			assert.Equal(t, tt.wantDay, d)
		})
	}
}

func TestAnchor_Validate(t *testing.T) {
	tests := []struct {
		name    string
		anchor  Anchor
		wantErr bool
	}{
		{name: "advent 1", anchor: Anchor{Kind: AnchorAdventSunday, Week: 1}},
		{name: "advent 0", anchor: Anchor{Kind: AnchorAdventSunday}, wantErr: true},
		{name: "easter day", anchor: Anchor{Kind: AnchorEastertideSunday, Week: 0}},
		{name: "pentecost with week", anchor: Anchor{Kind: AnchorPentecost, Week: 1}, wantErr: true},
		{name: "christmas weekday", anchor: Anchor{Kind: AnchorChristmasWeekday, Offset: 3}},
		{name: "christmas weekday zero", anchor: Anchor{Kind: AnchorChristmasWeekday}, wantErr: true},
		{name: "last sunday back", anchor: Anchor{Kind: AnchorLastSunday, Offset: -14}},
		{name: "last sunday forward", anchor: Anchor{Kind: AnchorLastSunday, Offset: 7}, wantErr: true},
		{name: "gesima", anchor: Anchor{Kind: AnchorGesima, Gesima: Sexagesima}},
		{name: "gesima unknown", anchor: Anchor{Kind: AnchorGesima, Gesima: "octogesima"}, wantErr: true},
		{name: "gesima name elsewhere", anchor: Anchor{Kind: AnchorEpiphany, Gesima: Sexagesima}, wantErr: true},
		{name: "unknown", anchor: Anchor{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.anchor.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAnchorKind_Text(t *testing.T) {
	for kind := range anchorNames {
		text, err := kind.MarshalText()
		require.NoError(t, err)

		var back AnchorKind
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, kind, back)
	}

	_, err := AnchorUnknown.MarshalText()
	assert.Error(t, err)
}

func TestFestivalIndex(t *testing.T) {
	idx, err := NewFestivalIndex([]FestivalRecord{
		{Date: "12-25", Name: "Christmas"},
		{Date: "1-6", Name: "Epiphany"},
		{Date: "2-29", Name: "Leap Day"},
	})
	require.NoError(t, err)

	for _, year := range []int{1999, 2024, 2087} {
		f, ok := idx.Lookup(time.Date(year, time.December, 25, 0, 0, 0, 0, time.UTC))
		require.True(t, ok)
		assert.Equal(t, "Christmas", f.Name)
	}

	_, ok := idx.Lookup(time.Date(2024, time.December, 24, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)

	all := idx.All()
	require.Len(t, all, 3)
	assert.Equal(t, "1-6", all[0].Date)
	assert.Equal(t, "12-25", all[2].Date)

	assert.Len(t, idx.InYear(2024), 3)
	common := idx.InYear(2023)
	require.Len(t, common, 2)
	assert.Equal(t, time.Date(2023, time.January, 6, 0, 0, 0, 0, time.UTC), common[0].Date)
}

func TestOrder(t *testing.T) {
	o, err := ParseOrder(" Vespers ")
	require.NoError(t, err)
	assert.Equal(t, OrderVespers, o)
	assert.Equal(t, "Vespers", o.Display())

	_, err = ParseOrder("compline")
	assert.Error(t, err)
}

func TestFestivalRecord_Record(t *testing.T) {
	hymn := &HymnRef{Hymnal: DefaultHymnal, Index: 85}
	f := FestivalRecord{
		Date:     "12-25",
		Name:     "The Nativity of Our Lord",
		Color:    ColorWhite,
		Readings: Readings{Epistle: "Titus 2:11-14", Gospel: "Luke 2:1-14"},
		Collect:  "O God, who hast made this most holy night...",
		Hymn:     hymn,
	}

	rec := f.Record()
	assert.Equal(t, "The Nativity of Our Lord", rec.Display)
	assert.Equal(t, KindFestival, rec.Kind)
	assert.False(t, rec.IsEmber())
	assert.Equal(t, f.Readings, rec.Readings)
	assert.Equal(t, hymn, rec.Hymn)
	assert.NotSame(t, hymn, rec.Hymn)
}
