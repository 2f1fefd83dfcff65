package timeline

import "strings"

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}

// countSyllables estimates syllables by counting vowel groups. English only;
// short words collapse to one syllable and a silent trailing "e" is dropped
// unless the word ends in "le".
func countSyllables(word string) int {
	w := strings.ToLower(strings.TrimSpace(word))
	var letters strings.Builder
	for _, r := range w {
		if r >= 'a' && r <= 'z' {
			letters.WriteRune(r)
		}
	}
	w = letters.String()
	if w == "" {
		return 1
	}
	if len(w) <= 3 {
		return 1
	}

	count := 0
	prevVowel := false
	for _, r := range w {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}

	if strings.HasSuffix(w, "e") && !strings.HasSuffix(w, "le") {
		count--
	}
	if count < 1 {
		count = 1
	}
	return count
}
