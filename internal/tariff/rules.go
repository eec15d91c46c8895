package tariff

import "github.com/shopspring/decimal"

// DefaultCappingIntervalMinutes is the billable day length used when a daily
// rate does not configure its own capping interval.
const DefaultCappingIntervalMinutes = 1440

// Tier prices any stay of at most LimitMinutes at a flat Price.
type Tier struct {
	LimitMinutes float64
	Price        decimal.Decimal
}

// Incremental bills PricePerInterval for every started interval beyond
// AppliesAfterMinutes.
type Incremental struct {
	AppliesAfterMinutes float64
	IntervalMinutes     float64
	PricePerInterval    decimal.Decimal
}

// Daily is a per-day rate. With ActivationMinutes set it replaces the whole fee
// once the stay is longer than the activation threshold (override mode);
// without it the rate bounds the fee from above (cap mode).
type Daily struct {
	Rate                   *decimal.Decimal
	ActivationMinutes      *float64
	CappingIntervalMinutes float64
}

// Override reports whether the daily rate replaces the fee instead of capping it.
func (d Daily) Override() bool {
	return d.ActivationMinutes != nil
}

func (d Daily) interval() float64 {
	if d.CappingIntervalMinutes <= 0 {
		return DefaultCappingIntervalMinutes
	}
	return d.CappingIntervalMinutes
}

// Rules is the full pricing configuration of one facility. Tiers must be
// ordered by strictly increasing LimitMinutes.
type Rules struct {
	Tiers       []Tier
	Incremental *Incremental
	Daily       *Daily
}

// DailyMode names how the daily rate took part in a calculation.
type DailyMode string

const (
	DailyNone     DailyMode = ""
	DailyOverride DailyMode = "override"
	DailyCap      DailyMode = "cap"
)

// Breakdown itemises the steps that produced a fee.
type Breakdown struct {
	Base         decimal.Decimal `json:"base"`
	Intervals    int64           `json:"intervals"`
	Incremental  decimal.Decimal `json:"incremental"`
	DailyMode    DailyMode       `json:"daily_mode,omitempty"`
	BillableDays int64           `json:"billable_days,omitempty"`
	Capped       bool            `json:"capped,omitempty"`
}

// Result is the outcome of a successful calculation. Fee is rounded to two
// decimal places; DurationMinutes keeps sub-minute precision.
type Result struct {
	Fee             decimal.Decimal
	DurationMinutes float64
	Breakdown       Breakdown
}
