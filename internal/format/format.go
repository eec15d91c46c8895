// Package format renders fees and durations for Brazilian Portuguese readers.
package format

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// ZeroMoney is shown in place of a fee when a quote fails.
const ZeroMoney = "0,00"

const (
	minutesPerHour = 60
	minutesPerDay  = 24 * minutesPerHour
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// Money formats amount with two decimals, "." as the thousands separator
// and "," as the decimal separator, e.g. 1234.5 -> "1.234,50".
func Money(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	return printer.Sprint(number.Decimal(rounded.InexactFloat64(), number.Scale(2)))
}

// Duration renders a stay as "N dia(s), H hora(s) e M minuto(s)". The day
// part is omitted when zero and leftover seconds are truncated.
func Duration(minutes float64) string {
	if minutes < 0 || math.IsNaN(minutes) {
		minutes = 0
	}
	total := int64(math.Floor(minutes))
	days := total / minutesPerDay
	hours := (total % minutesPerDay) / minutesPerHour
	mins := total % minutesPerHour

	var b strings.Builder
	if days > 0 {
		b.WriteString(printer.Sprintf("%d dia(s), ", days))
	}
	b.WriteString(printer.Sprintf("%d hora(s) e %d minuto(s)", hours, mins))
	return b.String()
}
