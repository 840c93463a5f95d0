// Package format renders numbers, money and dates for the portal's fixed
// vi-VN display convention.
package format

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// CurrencySuffix is appended to every formatted money amount.
const CurrencySuffix = " đ"

// maxFractionDigits mirrors the vi-VN decimal pattern (#,##0.###).
const maxFractionDigits = 3

var printer = message.NewPrinter(language.Vietnamese)

// Number renders v with vi-VN digit grouping, e.g. 1234567 -> "1.234.567".
// v must be finite.
func Number(v float64) string {
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(maxFractionDigits)))
}

// Currency renders v as Number followed by CurrencySuffix.
func Currency(v float64) string {
	return Number(v) + CurrencySuffix
}

// Decimal renders a decimal amount the same way Number renders a float.
func Decimal(d decimal.Decimal) string {
	return Number(d.Round(maxFractionDigits).InexactFloat64())
}

// DecimalCurrency renders a decimal amount with CurrencySuffix.
func DecimalCurrency(d decimal.Decimal) string {
	return Decimal(d) + CurrencySuffix
}

var numericPrefix = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

// ParseNumber reads the leading numeric prefix of displayed text, so
// "1500 kg" yields 1500. It reports false when no finite prefix exists.
func ParseNumber(text string) (float64, bool) {
	match := numericPrefix.FindString(strings.TrimSpace(text))
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	time.RFC1123Z,
	time.RFC1123,
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseDate parses s against the accepted layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateOf renders the calendar date of t as d/m/yyyy.
func DateOf(t time.Time) string {
	return t.Format("2/1/2006")
}

// Date parses s and renders its calendar date. Unparseable input yields "".
func Date(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return ""
	}
	return DateOf(t)
}
