package cli

import "testing"

func TestFormatCNY(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "¥0.00"},
		{5, "¥5.00"},
		{999.99, "¥999.99"},
		{1000, "¥1,000.00"},
		{16559.76, "¥16,559.76"},
		{100000, "¥100,000.00"},
		{1234567.89, "¥1,234,567.89"},
		{-6031.2, "-¥6,031.20"},
	}
	for _, tc := range cases {
		if got := FormatCNY(tc.in); got != tc.want {
			t.Errorf("FormatCNY(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{2.5, "+2.50%"},
		{0, "0.00%"},
		{-9.98, "-9.98%"},
	}
	for _, tc := range cases {
		if got := FormatPercent(tc.in); got != tc.want {
			t.Errorf("FormatPercent(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatPnL(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{16559.76, "+¥16,559.76"},
		{0, "¥0.00"},
		{-240.24, "-¥240.24"},
	}
	for _, tc := range cases {
		if got := FormatPnL(tc.in); got != tc.want {
			t.Errorf("FormatPnL(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
