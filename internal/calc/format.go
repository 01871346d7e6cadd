package calc

import (
	"math"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Placeholder is shown wherever an amount is unknown.
const Placeholder = "–"

var printer = message.NewPrinter(language.English)

// FormatCurrency renders value as euros with two decimals, or Placeholder
// when value is nil, NaN or infinite.
func FormatCurrency(value *float64) string {
	if value == nil || math.IsNaN(*value) || math.IsInf(*value, 0) {
		return Placeholder
	}
	return printer.Sprint(currency.Symbol(currency.EUR.Amount(*value)))
}

// FormatDate renders a stored YYYY-MM-DD date as "Jan 2, 2006", or "" when it does not parse.
func FormatDate(iso string) string {
	t, err := time.Parse(DateLayout, iso)
	if err != nil {
		return ""
	}
	return t.Format("Jan 2, 2006")
}
