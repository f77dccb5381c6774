// Package money provides fixed-point integer-cent arithmetic and display
// formatting for the storefront. Amounts are always USD cents; floating point
// never touches a monetary value.
package money

import (
	"errors"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var ErrInvalidAmount = errors.New("money: amount must be zero or greater")

// DefaultTaxRate is the storefront-wide sales tax rate (8%).
var DefaultTaxRate = decimal.New(8, -2)

var printer = message.NewPrinter(language.AmericanEnglish)

// Display formats integer cents as a localized currency string with digit
// grouping, e.g. 302400 -> "$3,024.00". Negative amounts indicate upstream
// catalog corruption and are rejected rather than rendered.
func Display(cents int64) (string, error) {
	if cents < 0 {
		return "", ErrInvalidAmount
	}
	return printer.Sprintf("$%d.%02d", cents/100, cents%100), nil
}

// TaxFor returns round(cents * rate) with ties rounded half-up on the cent
// boundary. Deterministic and side-effect free.
func TaxFor(cents int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(cents).Mul(rate).Round(0).IntPart()
}

// Line returns the extended total for one cart line.
func Line(unitPriceCents int64, quantity int) int64 {
	return unitPriceCents * int64(quantity)
}
