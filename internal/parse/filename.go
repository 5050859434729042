// Package parse extracts expense fields from receipt filenames using
// deterministic pattern matching. No OCR, no inference: if a filename does
// not spell a value out, the value is not extracted.
package parse

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/fennelhq/fennel/internal/model"
)

var (
	isoDateRe    = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	germanDateRe = regexp.MustCompile(`\d{2}\.\d{2}\.\d{4}`)

	// Amount patterns require an explicit € or EUR marker so arbitrary
	// numbers in filenames (invoice ids, page counts) are never mistaken
	// for amounts. Evaluated in order, first match wins.
	amountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+(?:[.,]\d{1,2})?)\s*€`),
		regexp.MustCompile(`€\s*(\d+(?:[.,]\d{1,2})?)`),
		regexp.MustCompile(`(?i)(\d+(?:[.,]\d{1,2})?)\s*eur\b`),
		regexp.MustCompile(`(?i)\beur\s*(\d+(?:[.,]\d{1,2})?)`),
	}

	extensionRe = regexp.MustCompile(`\.[A-Za-z][A-Za-z0-9]{0,4}$`)
	separatorRe = regexp.MustCompile(`[_\-]+`)
	spacesRe    = regexp.MustCompile(`\s+`)
)

// SupplierFallback is used when a filename yields a date or amount but no
// recognizable supplier text remains.
const SupplierFallback = "Receipt"

// Filename extracts candidate expense fields from a receipt filename. It
// never fails; unparseable input yields the zero value. A supplier name is
// only derived when at least a date or an amount was also found, which keeps
// arbitrary filenames like "scan0001.pdf" from producing fake suppliers.
func Filename(filename string) model.ParsedFilename {
	base := stripExtension(filename)
	if strings.TrimSpace(base) == "" {
		return model.ParsedFilename{}
	}

	date := extractDate(base)
	cents, amountText := extractAmount(base)

	if date == nil && cents == nil {
		return model.ParsedFilename{}
	}

	parsed := model.ParsedFilename{
		ExpenseDate:      date,
		GrossAmountCents: cents,
	}
	if cents != nil {
		// € and EUR are the only recognized markers, so a found amount is
		// always denominated in EUR.
		parsed.Currency = "EUR"
	}

	parsed.SupplierName = extractSupplier(base, amountText)
	if parsed.SupplierName != SupplierFallback {
		parsed.Description = parsed.SupplierName
	}

	return parsed
}

// stripExtension removes a trailing file extension. Only short,
// letter-initial extensions are stripped so decimal amounts like "123.45"
// survive.
func stripExtension(filename string) string {
	return extensionRe.ReplaceAllString(filename, "")
}

// extractDate finds the first valid calendar date, preferring ISO
// YYYY-MM-DD over German DD.MM.YYYY. time.Parse rejects impossible
// calendar dates like February 30th.
func extractDate(text string) *time.Time {
	for _, match := range isoDateRe.FindAllString(text, -1) {
		if d, err := time.Parse("2006-01-02", match); err == nil {
			return &d
		}
	}
	for _, match := range germanDateRe.FindAllString(text, -1) {
		if d, err := time.Parse("02.01.2006", match); err == nil {
			return &d
		}
	}
	return nil
}

// maxAmountCents bounds extracted amounts to something a receipt could
// plausibly show, which also keeps the float→cents conversion away from
// int64 overflow.
const maxAmountCents = int64(1e12)

// extractAmount finds the first currency-marked amount and converts it to
// integer cents, rounding. It returns the cents and the full matched
// substring (marker included) for later removal.
func extractAmount(text string) (*int64, string) {
	for _, re := range amountPatterns {
		match := re.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		value, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", "."), 64)
		if err != nil {
			continue
		}
		rounded := math.Round(value * 100)
		if rounded < 0 || rounded > float64(maxAmountCents) {
			continue
		}
		cents := int64(rounded)
		return &cents, match[0]
	}
	return nil, ""
}

// extractSupplier derives a supplier name from whatever text remains after
// the matched amount and anything date-shaped are removed. Date-shaped
// substrings are stripped even when calendar-invalid, so a typoed date
// never bleeds into the supplier name.
func extractSupplier(base, amountText string) string {
	remainder := base
	if amountText != "" {
		remainder = strings.Replace(remainder, amountText, " ", 1)
	}
	remainder = isoDateRe.ReplaceAllString(remainder, " ")
	remainder = germanDateRe.ReplaceAllString(remainder, " ")

	remainder = separatorRe.ReplaceAllString(remainder, " ")
	remainder = spacesRe.ReplaceAllString(remainder, " ")
	remainder = strings.TrimSpace(remainder)
	if remainder == "" {
		return SupplierFallback
	}

	words := strings.Fields(remainder)
	for i, word := range words {
		words[i] = titleCase(word)
	}
	return strings.Join(words, " ")
}

// titleCase upper-cases the first rune and lower-cases the rest.
func titleCase(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	if r == utf8.RuneError {
		return word
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(word[size:])
}
