package psalter

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/zapponejosh/lutherald/internal/lectionary"
)

func TestDefault_CoversPsalter(t *testing.T) {
	p, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	seen := make(map[int]bool)
	for day := 1; day <= Days; day++ {
		d, err := p.ForDay(day)
		if err != nil {
			t.Fatalf("ForDay(%d) error = %v", day, err)
		}
		for _, ref := range append(append([]string{}, d.Morning...), d.Evening...) {
			num := strings.TrimPrefix(ref, "Psalm ")
			num, _, _ = strings.Cut(num, ":")
			n, err := strconv.Atoi(num)
			if err != nil {
				t.Fatalf("day %d: bad reference %q", day, ref)
			}
			seen[n] = true
		}
	}

	for n := 1; n <= 150; n++ {
		if !seen[n] {
			t.Errorf("Psalm %d is never appointed", n)
		}
	}
}

func TestForDay(t *testing.T) {
	p, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	first, _ := p.ForDay(1)
	if got := strings.Join(first.Morning, ", "); got != "Psalm 1, Psalm 2, Psalm 3, Psalm 4, Psalm 5" {
		t.Errorf("day 1 morning = %s", got)
	}

	d24, _ := p.ForDay(24)
	if len(d24.Evening) != 1 || d24.Evening[0] != "Psalm 119:1-32" {
		t.Errorf("day 24 evening = %v, want [Psalm 119:1-32]", d24.Evening)
	}

	thirtieth, _ := p.ForDay(30)
	thirtyFirst, err := p.ForDay(31)
	if err != nil {
		t.Fatalf("ForDay(31) error = %v", err)
	}
	if strings.Join(thirtyFirst.Evening, ",") != strings.Join(thirtieth.Evening, ",") {
		t.Errorf("day 31 = %v, want day 30 %v", thirtyFirst, thirtieth)
	}

	for _, bad := range []int{0, 32, -1} {
		if _, err := p.ForDay(bad); err == nil {
			t.Errorf("ForDay(%d) error = nil, want error", bad)
		}
	}
}

func TestForDate(t *testing.T) {
	p, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	d := p.ForDate(time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC))
	if len(d.Morning) != 1 || d.Morning[0] != "Psalm 68" {
		t.Errorf("March 13 morning = %v, want [Psalm 68]", d.Morning)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"day out of range", "31:\n  morning: [Psalm 1]\n  evening: [Psalm 2]\n"},
		{"missing days", "1:\n  morning: [Psalm 1]\n  evening: [Psalm 2]\n"},
		{"unknown field", "1:\n  noon: [Psalm 1]\n"},
		{"not yaml", "[[["},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Error("Parse() error = nil, want error")
			}
		})
	}
}

func TestMonthlyPsalms(t *testing.T) {
	p, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	date := time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC)

	if got := p.MonthlyPsalms(date, lectionary.OrderMatins); strings.Join(got, ",") != "Psalm 144,Psalm 145,Psalm 146" {
		t.Errorf("matins = %v", got)
	}
	if got := p.MonthlyPsalms(date, lectionary.OrderVespers); len(got) != 4 {
		t.Errorf("vespers = %v, want 4 psalms", got)
	}
	if got := p.MonthlyPsalms(date, lectionary.OrderChiefService); got != nil {
		t.Errorf("chief service = %v, want nil", got)
	}
}
