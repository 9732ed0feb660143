package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"12.34", 1234, true},
		{"12,34", 1234, true},
		{"12", 1200, true},
		{"0.5", 50, true},
		{".5", 50, true},
		{"12.345", 1234, true}, // rounds down
		{"12.346", 1235, true}, // rounds up
		{" 7 ", 700, true},
		{"", 0, false},
		{"0", 0, false},
		{"0.00", 0, false},
		{"-5", 0, false},
		{"+5", 0, false},
		{"1.2.3", 0, false},
		{"abc", 0, false},
		{"12a", 0, false},
		{"99999999999999999999", 0, false}, // overflow
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("parse %q = (%d, %v), want %d", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("parse %q: expected error", tc.in)
		}
	}
}

func TestMoneyFormat(t *testing.T) {
	usd := Currency{Code: "USD", Symbol: "$"}
	if got := (Money{Cents: 1234}).Format(usd); got != "$12.34" {
		t.Fatalf("USD format = %q", got)
	}
	// Unknown codes fall back to a plain decimal with the symbol.
	fake := Currency{Code: "ZZZ", Symbol: "z"}
	if got := (Money{Cents: 1234}).Format(fake); got != "12.34 z" {
		t.Fatalf("fallback format = %q", got)
	}
	if got := (Money{Cents: -205}).Format(fake); got != "-2.05 z" {
		t.Fatalf("negative fallback format = %q", got)
	}
}
