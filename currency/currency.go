// Package currency converts amounts between the supported store currencies
// using a static rate table relative to the base currency.
package currency

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Base is the currency all persisted prices are stored in.
const Base = "USD"

var ErrUnknownCurrency = errors.New("unknown currency")

// Units of each currency per one unit of Base.
var rates = map[string]decimal.Decimal{
	"USD": decimal.NewFromInt(1),
	"ILS": decimal.RequireFromString("3.6"),
	"EUR": decimal.RequireFromString("0.92"),
}

// Supported reports whether code is in the rate table.
func Supported(code string) bool {
	_, ok := rates[code]
	return ok
}

// Codes returns the supported currency codes, sorted.
func Codes() []string {
	codes := make([]string, 0, len(rates))
	for c := range rates {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Rates returns a copy of the rate table.
func Rates() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(rates))
	for c, r := range rates {
		out[c] = r
	}
	return out
}

// Convert maps amount from one currency to another, rounded to 2 decimals.
// Unknown codes are rejected rather than passed through.
func Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	fromRate, ok := rates[from]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownCurrency, from)
	}
	toRate, ok := rates[to]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownCurrency, to)
	}
	if from == to {
		return amount.Round(2), nil
	}

	inBase := amount
	if from != Base {
		inBase = amount.DivRound(fromRate, 16)
	}
	return inBase.Mul(toRate).Round(2), nil
}
