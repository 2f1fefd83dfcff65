// Package textnorm expands numerals, currency, and percentages into their
// spoken-word form so authored script text can be compared against ASR
// transcript tokens.
package textnorm

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/divan/num2words"
)

var (
	currencyMagnitudeRe = regexp.MustCompile(`(?i)\$(\d[\d,]*(?:\.\d+)?)\s*(thousand|million|billion|trillion)\b`)
	currencySuffixRe    = regexp.MustCompile(`\$(\d[\d,]*(?:\.\d+)?)([KkMmBbTt])\b`)
	currencyRe          = regexp.MustCompile(`\$(\d[\d,]*(?:\.\d+)?)`)
	numberSuffixRe      = regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)([KkMmBbTt])\b`)
	percentRe           = regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)\s*%`)
	numericTokenRe      = regexp.MustCompile(`^\d[\d,]*(?:\.\d+)?$`)
)

var suffixMagnitudes = map[string]string{
	"k": "thousand",
	"m": "million",
	"b": "billion",
	"t": "trillion",
}

var digitWords = map[rune]string{
	'0': "zero", '1': "one", '2': "two", '3': "three", '4': "four",
	'5': "five", '6': "six", '7': "seven", '8': "eight", '9': "nine",
}

var symbolReplacer = strings.NewReplacer(
	"&", " and ",
	"+", " plus ",
	"=", " equals ",
	"½", " half ",
)

// Normalize converts text into its ordered spoken-word form: currency and
// percent constructs expanded, bare numerals spelled out, punctuation
// stripped, everything lowercased.
func Normalize(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	// Currency rewrites must run before the generic numeral pass so the
	// magnitude word stays attached to its amount.
	text = currencyMagnitudeRe.ReplaceAllString(text, "$1 $2 dollars")
	text = currencySuffixRe.ReplaceAllStringFunc(text, func(m string) string {
		parts := currencySuffixRe.FindStringSubmatch(m)
		return parts[1] + " " + suffixMagnitudes[strings.ToLower(parts[2])] + " dollars"
	})
	text = currencyRe.ReplaceAllString(text, "$1 dollars")
	text = numberSuffixRe.ReplaceAllStringFunc(text, func(m string) string {
		parts := numberSuffixRe.FindStringSubmatch(m)
		return parts[1] + " " + suffixMagnitudes[strings.ToLower(parts[2])]
	})
	text = percentRe.ReplaceAllString(text, "$1 percent")
	text = symbolReplacer.Replace(text)

	var out []string
	for _, token := range strings.Fields(text) {
		cleaned := stripPunctuation(token)
		if cleaned == "" {
			continue
		}
		if numericTokenRe.MatchString(cleaned) {
			out = append(out, strings.Fields(ExpandNumber(cleaned))...)
			continue
		}
		out = append(out, strings.Fields(strings.ToLower(cleaned))...)
	}
	return out
}

// ExpandNumber converts a numeric literal (optional commas and decimal part)
// into spoken words. Non-numeric input is returned unchanged.
func ExpandNumber(raw string) string {
	clean := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	intPart, fracPart, hasFrac := strings.Cut(clean, ".")
	if intPart == "" {
		intPart = "0"
	}
	n, err := strconv.Atoi(intPart)
	if err != nil {
		return raw
	}

	words := strings.ToLower(num2words.ConvertAnd(n))
	// num2words hyphenates compound numbers; comparisons are word based.
	words = strings.ReplaceAll(words, "-", " ")

	if hasFrac && fracPart != "" {
		parts := []string{words, "point"}
		for _, r := range fracPart {
			if w, ok := digitWords[r]; ok {
				parts = append(parts, w)
			}
		}
		words = strings.Join(parts, " ")
	}
	return words
}

// stripPunctuation keeps letters, digits, and interior apostrophes; hyphens
// become separators so compound words split.
func stripPunctuation(token string) string {
	var b strings.Builder
	for _, r := range token {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '\'':
			b.WriteRune(r)
		case r == '-':
			b.WriteByte(' ')
		case r == '.' || r == ',':
			// Keep separators that glue a numeral together ("20,496", "3.5").
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), ".,'")
	if !strings.ContainsAny(out, "0123456789") {
		out = strings.Map(func(r rune) rune {
			if r == '.' || r == ',' {
				return -1
			}
			return r
		}, out)
	}
	return out
}
