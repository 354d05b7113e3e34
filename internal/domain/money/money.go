// Package money renders amounts and timestamps for the dashboard.
package money

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// TimestampLayout is the long date/time form shown next to charges and log entries.
const TimestampLayout = "January 2, 2006 at 3:04 PM MST"

// Formatter renders amounts in one currency and locale.
type Formatter struct {
	unit    currency.Unit
	symbol  string
	scale   int
	printer *message.Printer
}

// NewFormatter validates the ISO currency code and BCP 47 locale.
func NewFormatter(code, locale string) (*Formatter, error) {
	unit, err := currency.ParseISO(strings.ToUpper(code))
	if err != nil {
		return nil, fmt.Errorf("currency %q: %w", code, err)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("locale %q: %w", locale, err)
	}
	printer := message.NewPrinter(tag)
	symbol := printer.Sprint(currency.Symbol(unit))
	if symbol == unit.String() {
		symbol += " "
	}
	scale, _ := currency.Standard.Rounding(unit)
	return &Formatter{unit: unit, symbol: symbol, scale: scale, printer: printer}, nil
}

// Code returns the lowercase ISO code, as the payment provider expects it.
func (f *Formatter) Code() string {
	return strings.ToLower(f.unit.String())
}

// Format renders amount with the currency's standard decimals and locale grouping, e.g. $1,234.50.
func (f *Formatter) Format(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = math.Abs(amount)
	}
	return sign + f.symbol + f.printer.Sprint(number.Decimal(amount, number.Scale(f.scale)))
}

// FormatTime renders t in the long dashboard layout. Zero time renders as "".
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimestampLayout)
}
