package date

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Date
	}{
		{"2024-03-01", New(2024, time.March, 1)},
		{"2024-3-1", New(2024, time.March, 1)},
		{"2023-12-31", New(2023, time.December, 31)},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := Parse("not-a-date"); err == nil {
		t.Error("Parse(not-a-date) expected error, got nil")
	}
}

func TestDate_Normalization(t *testing.T) {
	// Day 0 of April is the last day of March.
	if got, want := New(2024, time.April, 0), New(2024, time.March, 31); got != want {
		t.Errorf("New(2024, April, 0) = %v, want %v", got, want)
	}
}

func TestDate_JSONRoundTrip(t *testing.T) {
	d := New(2024, time.July, 14)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(b) != `"2024-07-14"` {
		t.Errorf("Marshal() = %s, want %q", b, "2024-07-14")
	}
	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if back != d {
		t.Errorf("round trip = %v, want %v", back, d)
	}
}

func TestDate_MonthOf(t *testing.T) {
	d := New(2024, time.February, 29)
	if got, want := d.MonthOf(), NewMonth(2024, time.February); got != want {
		t.Errorf("MonthOf() = %v, want %v", got, want)
	}
}
