package format

import (
	"testing"
	"time"
)

func TestFormatExecutionDuration(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0µs"},
		{500 * time.Microsecond, "500µs"},
		{42 * time.Millisecond, "42ms"},
		{2*time.Second + 345678*time.Microsecond, "2.346s"},
		{3 * time.Minute, "3m0s"},
	}
	for _, tt := range tests {
		if got := FormatExecutionDuration(tt.in); got != tt.want {
			t.Errorf("FormatExecutionDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatRate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		trials  int
		elapsed time.Duration
		want    string
	}{
		{0, time.Second, "0.0/s"},
		{10, 0, "0.0/s"},
		{100, 4 * time.Second, "25.0/s"},
		{3, 2 * time.Second, "1.5/s"},
	}
	for _, tt := range tests {
		if got := FormatRate(tt.trials, tt.elapsed); got != tt.want {
			t.Errorf("FormatRate(%d, %v) = %q, want %q", tt.trials, tt.elapsed, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	t.Parallel()
	if got := FormatPercent(0.375); got != "37.5%" {
		t.Errorf("FormatPercent(0.375) = %q", got)
	}
}
