package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{"1.005", "1.01", true}, // half-up rounding
		{" 2.50 ", "2.5", true},
		{"-1", "", false},
		{"0", "", false},
		{"0.001", "", false}, // rounds to zero
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("%q unexpected error: %v", tc.in, err)
			}
			if want := decimal.RequireFromString(tc.out); !got.Equal(want) {
				t.Fatalf("%q expected %s, got %s", tc.in, want, got)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestValidateAmount(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"0.01", true},
		{"100", true},
		{"19.99", true},
		{"0", false},
		{"-5", false},
		{"1.005", false}, // three decimal places
	}
	for _, tc := range cases {
		err := ValidateAmount(decimal.RequireFromString(tc.in))
		if tc.ok && err != nil {
			t.Fatalf("%q unexpected error: %v", tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestCentsRoundTrip(t *testing.T) {
	cases := []struct {
		in    string
		cents int64
	}{
		{"0.01", 1},
		{"1", 100},
		{"19.99", 1999},
		{"1234.56", 123456},
	}
	for _, tc := range cases {
		d := decimal.RequireFromString(tc.in)
		if got := Cents(d); got != tc.cents {
			t.Fatalf("Cents(%s) = %d, want %d", tc.in, got, tc.cents)
		}
		if back := FromCents(tc.cents); !back.Equal(d) {
			t.Fatalf("FromCents(%d) = %s, want %s", tc.cents, back, d)
		}
	}
}
