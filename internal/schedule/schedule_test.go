package schedule

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseFrequency(t *testing.T) {
	for _, f := range Frequencies {
		if _, err := ParseFrequency(string(f)); err != nil {
			t.Errorf("ParseFrequency(%q) unexpected error: %v", f, err)
		}
	}

	for _, bad := range []string{"", "daily", "fortnightly", "MONTHLY"} {
		if _, err := ParseFrequency(bad); err == nil {
			t.Errorf("ParseFrequency(%q) expected error, got nil", bad)
		}
	}
}

func TestNextOccurrence(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		freq  Frequency
		today time.Time
		want  time.Time
	}{
		{
			name:  "monthly bill mid-year",
			start: date(2024, 1, 1),
			freq:  Monthly,
			today: date(2024, 6, 15),
			want:  date(2024, 7, 1),
		},
		{
			name:  "weekly advances past today",
			start: date(2024, 6, 3),
			freq:  Weekly,
			today: date(2024, 6, 15),
			want:  date(2024, 6, 17),
		},
		{
			name:  "biweekly from same day",
			start: date(2024, 6, 15),
			freq:  Biweekly,
			today: date(2024, 6, 15),
			want:  date(2024, 6, 29),
		},
		{
			name:  "quarterly",
			start: date(2024, 1, 31),
			freq:  Quarterly,
			today: date(2024, 2, 1),
			want:  date(2024, 5, 1), // Jan 31 + 3 months normalizes to May 1
		},
		{
			name:  "yearly",
			start: date(2020, 3, 10),
			freq:  Yearly,
			today: date(2024, 3, 10),
			want:  date(2025, 3, 10),
		},
		{
			name:  "future start returned unchanged",
			start: date(2025, 1, 1),
			freq:  Monthly,
			today: date(2024, 6, 15),
			want:  date(2025, 1, 1),
		},
		{
			name:  "time of day ignored",
			start: time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC),
			freq:  Monthly,
			today: time.Date(2024, 6, 15, 8, 30, 0, 0, time.UTC),
			want:  date(2024, 7, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextOccurrence(tt.start, tt.freq, tt.today)
			if !got.Equal(tt.want) {
				t.Errorf("NextOccurrence() = %v, want %v", got, tt.want)
			}
		})
	}
}

// The returned date must always be strictly after today and reachable from
// start by whole-period increments, for every frequency.
func TestNextOccurrenceAlwaysAfterToday(t *testing.T) {
	today := date(2024, 6, 15)
	starts := []time.Time{
		date(2019, 12, 31),
		date(2024, 1, 1),
		date(2024, 6, 14),
		date(2024, 6, 15),
	}

	for _, f := range Frequencies {
		for _, start := range starts {
			next := NextOccurrence(start, f, today)
			if !next.After(today) {
				t.Errorf("%s from %v: next %v is not after today", f, start, next)
			}

			// Walk forward from start; we must land exactly on next.
			step := start
			for step.Before(next) {
				step = f.advance(step)
			}
			if !step.Equal(next) {
				t.Errorf("%s from %v: next %v not reachable by whole periods (overshot to %v)", f, start, next, step)
			}
		}
	}
}

func TestNotifyDate(t *testing.T) {
	created := time.Date(2024, 6, 15, 17, 45, 0, 0, time.UTC)

	tests := []struct {
		iv   NotifyInterval
		want time.Time
		ok   bool
	}{
		{NotifyDaily, date(2024, 6, 16), true},
		{NotifyWeekly, date(2024, 6, 22), true},
		{NotifyBiweekly, date(2024, 6, 29), true},
		{NotifyMonthly, date(2024, 7, 15), true},
		{NotifyNever, time.Time{}, false},
	}

	for _, tt := range tests {
		got, ok := NotifyDate(created, tt.iv)
		if ok != tt.ok {
			t.Errorf("NotifyDate(%q) ok = %v, want %v", tt.iv, ok, tt.ok)
			continue
		}
		if ok && !got.Equal(tt.want) {
			t.Errorf("NotifyDate(%q) = %v, want %v", tt.iv, got, tt.want)
		}
	}
}
