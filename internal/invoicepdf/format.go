package invoicepdf

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// RupeeSymbol is the fixed currency symbol for every rendered amount
const RupeeSymbol = "₹"

var inrPrinter = message.NewPrinter(language.MustParse("en-IN"))

// FormatINR renders an amount with two fractional digits and Indian digit
// grouping, e.g. ₹1,500.00, ₹12,34,567.50, -₹250.00
func FormatINR(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	value, _ := rounded.Abs().Float64()

	digits := inrPrinter.Sprint(number.Decimal(value, number.Scale(2)))
	if rounded.IsNegative() {
		return "-" + RupeeSymbol + digits
	}
	return RupeeSymbol + digits
}
