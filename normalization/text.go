package normalization

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/spf13/cast"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LabelUnknown is the sentinel returned for absent categorical values.
const LabelUnknown = "UNKNOWN"

var (
	digitRunRegex = regexp.MustCompile(`\d+`)

	// Currency markers and grouping separators removed before numeric
	// parsing. The decimal point is kept as-is; only the comma is treated
	// as a thousands separator.
	numberCleaner = strings.NewReplacer(
		",", "",
		"S/", "",
		"$", "",
		"€", "",
		"%", "",
		" ", "",
	)
)

// NormalizeText strips diacritics, upper-cases and trims the input.
// Non-string input is stringified first. Total: never fails.
func NormalizeText(value interface{}) string {
	s := cast.ToString(value)
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(stripper, s); err == nil {
		s = stripped
	}
	return strings.ToUpper(strings.TrimSpace(s))
}

// ToNumber coerces a raw cell value to float64. Currency markers and
// thousands separators are stripped before parsing. Empty, nil and
// unparseable input all yield 0.0; the function never returns an error.
func ToNumber(value interface{}) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}

	s := strings.TrimSpace(cast.ToString(value))
	if s == "" {
		return 0
	}

	s = strings.TrimSpace(numberCleaner.Replace(s))
	parsed, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return parsed
}

// CanonicalLotID reduces a lot label to its numeric core: the first run
// of digits with leading zeros stripped ("Lote 001" -> "1", "L35 (1)" ->
// "35"). Labels without digits fall back to the trimmed upper-cased
// original. Lossy: distinct labels sharing a digit run collide ("Sector
// 12-A" and "12B" both become "12"); accepted for the data at hand.
func CanonicalLotID(value interface{}) string {
	s := strings.ToUpper(strings.TrimSpace(cast.ToString(value)))
	match := digitRunRegex.FindString(s)
	if match == "" {
		return s
	}
	if n, err := strconv.Atoi(match); err == nil {
		return strconv.Itoa(n)
	}
	// Digit run too long for int: strip zeros manually.
	trimmed := strings.TrimLeft(match, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

// CanonicalLabel normalizes a categorical value (labor type, defect
// class). Absent values become the LabelUnknown sentinel.
func CanonicalLabel(value interface{}) string {
	if value == nil {
		return LabelUnknown
	}
	s := NormalizeText(value)
	if s == "" {
		return LabelUnknown
	}
	return s
}
