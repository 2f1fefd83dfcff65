package textnorm

import (
	"regexp"
	"strings"

	"github.com/iamvalenciia/zero-sum/internal/script"
)

var (
	splitCurrencyHeadRe = regexp.MustCompile(`^\$?\d[\d,]*,$`)
	splitCurrencyTailRe = regexp.MustCompile(`^\d{3}(?:[.,]\d+)?[.,]?$`)
	currencyAmountRe    = regexp.MustCompile(`^\$\d[\d,]*(?:\.\d+)?$`)
	magnitudeWordRe     = regexp.MustCompile(`(?i)^(thousand|million|billion|trillion)[.,]?$`)
	digitsRe            = regexp.MustCompile(`\d`)
)

// Repair fixes ASR artifacts in the recognized word stream before alignment.
// Split numerals ("$20," + "496") are merged back into one token, and any
// token carrying digits or currency is replaced by its spoken-word expansion
// with the original time span divided evenly across the expanded words.
func Repair(words []script.Word) []script.Word {
	merged := mergeSplitNumerals(words)

	out := make([]script.Word, 0, len(merged))
	for _, w := range merged {
		if !digitsRe.MatchString(w.Text) {
			out = append(out, w)
			continue
		}
		expanded := Normalize(w.Text)
		if len(expanded) == 0 {
			out = append(out, w)
			continue
		}
		step := w.Duration() / float64(len(expanded))
		for i, token := range expanded {
			out = append(out, script.Word{
				Text:  token,
				Start: w.Start + float64(i)*step,
				End:   w.Start + float64(i+1)*step,
			})
		}
	}
	return out
}

func mergeSplitNumerals(words []script.Word) []script.Word {
	out := make([]script.Word, 0, len(words))
	for i := 0; i < len(words); i++ {
		w := words[i]
		w.Text = strings.TrimSpace(w.Text)

		// A numeral may be fragmented across several tokens ("$20," +
		// "496" + "million"), so keep absorbing continuations until the
		// chain breaks.
		for i+1 < len(words) {
			next := strings.TrimSpace(words[i+1].Text)
			merged := true
			switch {
			case splitCurrencyHeadRe.MatchString(w.Text) && splitCurrencyTailRe.MatchString(next):
				w.Text += next
			case currencyAmountRe.MatchString(w.Text) && magnitudeWordRe.MatchString(next):
				w.Text += " " + strings.ToLower(strings.Trim(next, ".,"))
			default:
				merged = false
			}
			if !merged {
				break
			}
			w.End = words[i+1].End
			i++
		}

		out = append(out, w)
	}
	return out
}
