package tariff

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultLayout matches the value submitted by an HTML datetime-local input.
const DefaultLayout = "2006-01-02T15:04"

// Compute prices a stay from entry to exit under rules.
func Compute(entry, exit time.Time, rules Rules) (Result, error) {
	if exit.Before(entry) {
		return Result{}, fmt.Errorf("%w: exit %s is before entry %s",
			ErrNegativeDuration, exit.Format(time.RFC3339), entry.Format(time.RFC3339))
	}
	minutes := exit.Sub(entry).Minutes()

	var bd Breakdown
	bd.Base = basePrice(rules.Tiers, minutes)
	bd.Intervals, bd.Incremental = incrementalCharge(rules.Incremental, minutes)
	fee := bd.Base.Add(bd.Incremental)
	fee = applyDaily(rules.Daily, minutes, fee, &bd)

	return Result{
		Fee:             fee.Round(2),
		DurationMinutes: minutes,
		Breakdown:       bd,
	}, nil
}

// ComputeRaw parses entry and exit with layout in loc and prices the stay.
// An empty layout means DefaultLayout and a nil loc means UTC.
func ComputeRaw(entryRaw, exitRaw, layout string, loc *time.Location, rules Rules) (Result, error) {
	entry, err := ParseTimestamp(entryRaw, layout, loc)
	if err != nil {
		return Result{}, err
	}
	exit, err := ParseTimestamp(exitRaw, layout, loc)
	if err != nil {
		return Result{}, err
	}
	return Compute(entry, exit, rules)
}

// ParseTimestamp parses raw with layout in loc, wrapping failures in ErrInvalidTimestamp.
func ParseTimestamp(raw, layout string, loc *time.Location) (time.Time, error) {
	if layout == "" {
		layout = DefaultLayout
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(layout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q does not match %s", ErrInvalidTimestamp, raw, layout)
	}
	return t, nil
}

// basePrice returns the price of the first tier covering minutes, falling back
// to the last tier when the stay outlasts all of them.
func basePrice(tiers []Tier, minutes float64) decimal.Decimal {
	if len(tiers) == 0 {
		return decimal.Zero
	}
	for _, t := range tiers {
		if minutes <= t.LimitMinutes {
			return t.Price
		}
	}
	return tiers[len(tiers)-1].Price
}

func incrementalCharge(inc *Incremental, minutes float64) (int64, decimal.Decimal) {
	if inc == nil || inc.IntervalMinutes <= 0 || minutes <= inc.AppliesAfterMinutes {
		return 0, decimal.Zero
	}
	excess := minutes - inc.AppliesAfterMinutes
	intervals := int64(math.Ceil(excess / inc.IntervalMinutes))
	return intervals, inc.PricePerInterval.Mul(decimal.NewFromInt(intervals))
}

func applyDaily(d *Daily, minutes float64, fee decimal.Decimal, bd *Breakdown) decimal.Decimal {
	if d == nil || d.Rate == nil {
		return fee
	}
	days := int64(math.Ceil(minutes / d.interval()))

	if d.Override() {
		if minutes <= *d.ActivationMinutes {
			return fee
		}
		// activation fired, so at least one day is billed
		if days == 0 {
			days = 1
		}
		bd.DailyMode = DailyOverride
		bd.BillableDays = days
		return d.Rate.Mul(decimal.NewFromInt(days))
	}

	if days == 0 && fee.IsPositive() {
		days = 1
	}
	ceiling := d.Rate.Mul(decimal.NewFromInt(days))
	bd.DailyMode = DailyCap
	bd.BillableDays = days
	if ceiling.LessThan(fee) {
		bd.Capped = true
		return ceiling
	}
	return fee
}
