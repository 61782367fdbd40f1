// Package format renders tower figures for Brazilian readers.
package format

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// Number formats v with pt-BR grouping, at least minFrac and at most two
// fraction digits. 1234.5 with minFrac 0 renders as "1.234,5".
func Number(v float64, minFrac int) string {
	maxFrac := 2
	if minFrac > maxFrac {
		maxFrac = minFrac
	}
	return printer.Sprint(number.Decimal(v,
		number.MinFractionDigits(minFrac),
		number.MaxFractionDigits(maxFrac),
	))
}

// BRL formats v as a real amount, e.g. "R$ 231.000".
func BRL(v float64) string {
	return "R$ " + Number(v, 0)
}

// Percent formats v, already in percent units, e.g. "467,53%".
func Percent(v float64) string {
	return Number(v, 0) + "%"
}

// Months formats a payback period.
func Months(v float64) string {
	if v == 1 {
		return "1 mês"
	}
	return Number(v, 0) + " meses"
}

// Years formats a contract duration.
func Years(n int) string {
	if n == 1 {
		return "1 ano"
	}
	return printer.Sprintf("%d anos", n)
}
