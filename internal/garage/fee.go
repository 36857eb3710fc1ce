package garage

import (
	"math"
	"time"
)

const DefaultGracePeriodHours = 0.25

// Rate is the hourly price of a tier and the most a single stay can cost.
type Rate struct {
	Hourly   float64 `json:"hourly"`
	DailyMax float64 `json:"daily_max"`
}

func DefaultRates() map[Size]Rate {
	return map[Size]Rate{
		Small:  {Hourly: 2.0, DailyMax: 20.0},
		Medium: {Hourly: 3.0, DailyMax: 30.0},
		Large:  {Hourly: 5.0, DailyMax: 50.0},
	}
}

type FeeCalculator struct {
	graceHours float64
	rates      map[Size]Rate
}

// NewFeeCalculator copies rates; sizes missing from it use the default rate.
func NewFeeCalculator(graceHours float64, rates map[Size]Rate) *FeeCalculator {
	if graceHours < 0 || math.IsNaN(graceHours) || math.IsInf(graceHours, 0) {
		graceHours = DefaultGracePeriodHours
	}

	merged := DefaultRates()
	for size, rate := range rates {
		if size.Valid() {
			merged[size] = rate
		}
	}

	return &FeeCalculator{
		graceHours: graceHours,
		rates:      merged,
	}
}

func NewDefaultFeeCalculator() *FeeCalculator {
	return NewFeeCalculator(DefaultGracePeriodHours, nil)
}

func (f *FeeCalculator) GracePeriodHours() float64 {
	return f.graceHours
}

func (f *FeeCalculator) Rate(size Size) (Rate, bool) {
	rate, ok := f.rates[size]
	return rate, ok
}

// Compute returns the fee for a stay of the given number of hours. Stays
// within the grace period are free, every started hour after it is billed,
// and the total never exceeds the tier's daily maximum. Invalid durations
// are not charged.
func (f *FeeCalculator) Compute(size Size, hours float64) float64 {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours < 0 {
		return 0
	}
	if hours <= f.graceHours {
		return 0
	}

	rate, ok := f.rates[size]
	if !ok {
		return 0
	}

	billable := math.Ceil(hours - f.graceHours)
	fee := math.Min(billable*rate.Hourly, rate.DailyMax)

	return math.Round(fee*100) / 100
}

func (f *FeeCalculator) ComputeDuration(size Size, d time.Duration) float64 {
	return f.Compute(size, d.Hours())
}
