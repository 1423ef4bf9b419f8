package calendar

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextAndLastWeekday(t *testing.T) {
	sunday := date(2024, time.March, 31)
	wednesday := date(2024, time.February, 14)

	tests := []struct {
		name string
		got  time.Time
		want time.Time
	}{
		{"next sunday from sunday", NextWeekday(sunday, time.Sunday), date(2024, time.April, 7)},
		{"last sunday from sunday", LastWeekday(sunday, time.Sunday), date(2024, time.March, 24)},
		{"next sunday from wednesday", NextWeekday(wednesday, time.Sunday), date(2024, time.February, 18)},
		{"last sunday from wednesday", LastWeekday(wednesday, time.Sunday), date(2024, time.February, 11)},
		{"next friday from wednesday", NextWeekday(wednesday, time.Friday), date(2024, time.February, 16)},
		{"on or after, same day", OnOrAfter(sunday, time.Sunday), sunday},
		{"on or after, later", OnOrAfter(wednesday, time.Sunday), date(2024, time.February, 18)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.got.Equal(tt.want) {
				t.Errorf("got %s, want %s", FormatDate(tt.got), FormatDate(tt.want))
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{input: "2024-03-31", want: date(2024, time.March, 31)},
		{input: " 2023-12-03 ", want: date(2023, time.December, 3)},
		{input: "2024-13-01", wantErr: true},
		{input: "2023-02-29", wantErr: true},
		{input: "03/31/2024", wantErr: true},
		{input: "1500-01-01", wantErr: true},
		{input: "9999-06-01", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDate) {
					t.Fatalf("ParseDate(%q) error = %v, want ErrInvalidDate", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q) error = %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.input, FormatDate(got), FormatDate(tt.want))
			}
		})
	}
}

func TestMidnight(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*60*60)
	late := time.Date(2024, time.March, 31, 23, 30, 0, 0, loc)

	got := Midnight(late)
	if !got.Equal(date(2024, time.March, 31)) {
		t.Errorf("Midnight = %s, want 2024-03-31 UTC", got)
	}
}

func TestOrdinal(t *testing.T) {
	tests := map[int]string{1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 11: "11th", 12: "12th", 13: "13th", 21: "21st", 22: "22nd", 27: "27th"}
	for n, want := range tests {
		if got := Ordinal(n); got != want {
			t.Errorf("Ordinal(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestLiturgicalYear(t *testing.T) {
	tests := []struct {
		date time.Time
		want int
	}{
		{date(2024, time.November, 30), 2023},
		{date(2024, time.December, 1), 2024},
		{date(2025, time.March, 15), 2024},
		{date(2023, time.December, 2), 2022},
		{date(2023, time.December, 3), 2023},
	}

	for _, tt := range tests {
		if got := LiturgicalYear(tt.date); got != tt.want {
			t.Errorf("LiturgicalYear(%s) = %d, want %d", FormatDate(tt.date), got, tt.want)
		}
	}
}
