package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"3000", 3000, true},
		{"12.34", 12.34, true},
		{"12,34", 12.34, true},
		{" 400 ", 400, true},
		{"", 0, true}, // untouched form field
		{"0", 0, true},
		{"-5", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("ParseAmount(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("ParseAmount(%q) expected error", tc.in)
		}
	}
}

func TestFormatDollars(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{1600, "$1,600.00"},
		{-1234.5, "-$1,234.50"},
		{1234567.891, "$1,234,567.89"},
		{99.9, "$99.90"},
	}
	for _, tc := range cases {
		if got := FormatDollars(tc.in); got != tc.want {
			t.Fatalf("FormatDollars(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(600.0 / 4400.0 * 100); got != "13.64%" {
		t.Fatalf("got %q", got)
	}
}
