package garage

import (
	"math"
	"testing"
	"time"
)

func TestFeeCompute(t *testing.T) {
	fees := NewDefaultFeeCalculator()

	tests := []struct {
		name  string
		size  Size
		hours float64
		want  float64
	}{
		{"zero", Small, 0, 0},
		{"grace boundary", Small, 0.25, 0},
		{"first hour", Small, 1.1, 2.0},
		{"just past grace", Small, 0.26, 2.0},
		{"exact billable hour", Small, 1.25, 2.0},
		{"daily cap", Small, 20, 20.0},
		{"medium three hours", Medium, 3, 9.0},
		{"medium cap", Medium, 100, 30.0},
		{"large two hours", Large, 2, 10.0},
		{"large cap", Large, 24, 50.0},
		{"negative", Large, -1, 0},
		{"missing", Medium, math.NaN(), 0},
		{"infinite", Medium, math.Inf(1), 0},
		{"unknown size", Size(5), 3, 0},
	}

	for _, tt := range tests {
		if got := fees.Compute(tt.size, tt.hours); got != tt.want {
			t.Errorf("%s: expected fee %.2f, got %.2f", tt.name, tt.want, got)
		}
	}
}

func TestFeeComputeDuration(t *testing.T) {
	fees := NewDefaultFeeCalculator()

	if got := fees.ComputeDuration(Medium, 90*time.Minute); got != 6.0 {
		t.Errorf("Expected 6.00, got %.2f", got)
	}

	if got := fees.ComputeDuration(Small, 15*time.Minute); got != 0 {
		t.Errorf("Expected free stay inside grace period, got %.2f", got)
	}
}

func TestFeeCustomRates(t *testing.T) {
	fees := NewFeeCalculator(0.5, map[Size]Rate{
		Large: {Hourly: 7.5, DailyMax: 60},
	})

	if fees.GracePeriodHours() != 0.5 {
		t.Errorf("Expected grace period 0.5, got %v", fees.GracePeriodHours())
	}

	if got := fees.Compute(Large, 2); got != 15.0 {
		t.Errorf("Expected 15.00, got %.2f", got)
	}

	if got := fees.Compute(Small, 2); got != 4.0 {
		t.Errorf("Expected default small rate to apply, got %.2f", got)
	}

	if rate, ok := fees.Rate(Large); !ok || rate.DailyMax != 60 {
		t.Errorf("Expected custom large rate, got %+v", rate)
	}
}

func TestFeeInvalidGraceFallsBack(t *testing.T) {
	fees := NewFeeCalculator(-1, nil)

	if fees.GracePeriodHours() != DefaultGracePeriodHours {
		t.Errorf("Expected default grace period, got %v", fees.GracePeriodHours())
	}
}
