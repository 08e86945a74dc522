// Package display formats benchmark metrics for presentation. Each metric
// kind has exactly one formatter so every view renders it identically.
//
// Rounding is half away from zero, applied to the shortest decimal
// representation of the value. 0.145 therefore renders as "14.5%", never
// "14.4%".
package display

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// shortNameLen is the fallback width for identifiers without a provider.
const shortNameLen = 15

var printer = message.NewPrinter(language.English)

// Accuracy renders a [0,1] fraction as a one-decimal percentage: "91.0%".
func Accuracy(fraction float64) string {
	return scaled(fraction, 2, 1) + "%"
}

// SuccessRate renders a [0,1] fraction as a whole percentage: "98%".
func SuccessRate(fraction float64) string {
	return scaled(fraction, 2, 0) + "%"
}

// Percent renders a value that is already a percentage: "20.0%".
func Percent(pct float64) string {
	return Fixed(pct, 1) + "%"
}

// Cost renders a currency amount with four decimals: "$0.0500".
func Cost(amount float64) string {
	return "$" + Fixed(amount, 4)
}

// Latency renders milliseconds as a rounded whole number: "120ms".
func Latency(ms float64) string {
	return Fixed(ms, 0) + "ms"
}

// ValueScore renders a value score with two decimals.
func ValueScore(v float64) string {
	return Fixed(v, 2)
}

// Minutes renders a duration in minutes with one decimal: "2.5m".
func Minutes(m float64) string {
	return Fixed(m, 1) + "m"
}

// Count renders an integer with thousands separators.
func Count(n int) string {
	return printer.Sprintf("%d", n)
}

// Timestamp renders a run timestamp, falling back to the raw source text.
func Timestamp(t time.Time, raw string) string {
	if !t.IsZero() {
		return t.Format("2006-01-02 15:04:05 MST")
	}
	if raw != "" {
		return raw
	}
	return "unknown"
}

// Status renders the completion flag of a run.
func Status(completed bool) string {
	if completed {
		return "COMPLETED"
	}
	return "INCOMPLETE"
}

// ShortName returns the model name without its provider ("provider/name"
// becomes "name"). Identifiers without a provider are cut to 15 characters.
func ShortName(id string) string {
	if parts := strings.Split(id, "/"); len(parts) > 1 && parts[1] != "" {
		return parts[1]
	}
	if utf8.RuneCountInString(id) <= shortNameLen {
		return id
	}
	return string([]rune(id)[:shortNameLen])
}

// Round rounds x to places decimals, half away from zero. Non-finite input
// yields 0.
func Round(x float64, places int) float64 {
	f, err := strconv.ParseFloat(Fixed(x, places), 64)
	if err != nil {
		return 0
	}
	return f
}

// Fixed formats x with exactly places decimals, rounding half away from
// zero. Non-finite input renders as zero.
func Fixed(x float64, places int) string {
	return scaled(x, 0, places)
}

// scaled formats x * 10^shift with places decimals. The shift is applied to
// the decimal digits, not by floating point multiplication.
func scaled(x float64, shift, places int) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		x = 0
	}
	places = max(places, 0)
	neg := x < 0

	intPart, frac, _ := strings.Cut(strconv.FormatFloat(math.Abs(x), 'f', -1, 64), ".")
	for range shift {
		if frac == "" {
			intPart += "0"
			continue
		}
		intPart += frac[:1]
		frac = frac[1:]
	}

	var digits string
	if len(frac) <= places {
		digits = intPart + frac + strings.Repeat("0", places-len(frac))
	} else {
		digits = intPart + frac[:places]
		if frac[places] >= '5' {
			digits = increment(digits)
		}
	}

	cut := len(digits) - places
	out := strings.TrimLeft(digits[:cut], "0")
	if out == "" {
		out = "0"
	}
	if places > 0 {
		out += "." + digits[cut:]
	}
	if neg && strings.Trim(digits, "0") != "" {
		out = "-" + out
	}
	return out
}

// increment adds one to a string of decimal digits.
func increment(digits string) string {
	b := []byte(digits)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < '9' {
			b[i]++
			return string(b)
		}
		b[i] = '0'
	}
	return "1" + string(b)
}
