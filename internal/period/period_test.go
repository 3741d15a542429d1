package period

import (
	"testing"
	"time"
)

func TestResolveMonth(t *testing.T) {
	cases := map[string]time.Month{
		"Jan":       time.January,
		"January":   time.January,
		"jan":       time.January,
		"1":         time.January,
		"01":        time.January,
		"Sept":      time.September,
		"Sep":       time.September,
		"09":        time.September,
		"9":         time.September,
		"September": time.September,
		" Dec ":     time.December,
		"12":        time.December,
	}

	for input, want := range cases {
		t.Run(input, func(t *testing.T) {
			got, err := ResolveMonth(input)
			if err != nil {
				t.Fatalf("ResolveMonth(%q) returned error: %v", input, err)
			}
			if got != want {
				t.Errorf("ResolveMonth(%q) = %v, want %v", input, got, want)
			}
		})
	}

	t.Run("rejects unknown keys", func(t *testing.T) {
		for _, bad := range []string{"", "13", "0", "Smarch", "-1"} {
			if _, err := ResolveMonth(bad); err == nil {
				t.Errorf("Expected error for %q", bad)
			}
		}
	})
}

func TestPeriodArithmetic(t *testing.T) {
	t.Run("AddMonths crosses year boundaries", func(t *testing.T) {
		p := New(2025, time.January)
		if got := p.AddMonths(-1); got != New(2024, time.December) {
			t.Errorf("Expected 2024-Dec, got %s", got)
		}
		if got := p.AddMonths(13); got != New(2026, time.February) {
			t.Errorf("Expected 2026-Feb, got %s", got)
		}
	})

	t.Run("Compare and MonthsSince", func(t *testing.T) {
		a := New(2025, time.March)
		b := New(2025, time.January)
		if a.Compare(b) != 1 || b.Compare(a) != -1 || a.Compare(a) != 0 {
			t.Error("Compare returned unexpected ordering")
		}
		if !b.Before(a) {
			t.Error("Expected Jan to be before Mar")
		}
		if got := a.MonthsSince(b); got != 2 {
			t.Errorf("Expected 2 months, got %d", got)
		}
	})

	t.Run("String uses canonical key", func(t *testing.T) {
		if got := New(2025, time.September).String(); got != "2025-Sep" {
			t.Errorf("Expected 2025-Sep, got %s", got)
		}
	})
}

func TestParse(t *testing.T) {
	for _, s := range []string{"2025-Sep", "2025-09", "2025-Sept", "2025-september"} {
		p, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", s, err)
		}
		if p != New(2025, time.September) {
			t.Errorf("Parse(%q) = %s", s, p)
		}
	}

	if _, err := Parse("2025"); err == nil {
		t.Error("Expected error for missing month")
	}
}

func TestCurrent(t *testing.T) {
	clock := FixedClock{At: time.Date(2025, time.June, 30, 23, 59, 0, 0, time.UTC)}
	if got := Current(clock); got != New(2025, time.June) {
		t.Errorf("Expected 2025-Jun, got %s", got)
	}
}
