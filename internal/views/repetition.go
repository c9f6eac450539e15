package views

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinRepeatedWordLen is the shortest word (in runes) considered by
// RepeatedWords.
const MinRepeatedWordLen = 3

// WordCount is a word and how often it occurs.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// RepeatedWords returns the words of text that occur at least threshold
// times, most frequent first. Matching is case-insensitive; learned words
// and words shorter than MinRepeatedWordLen are ignored. A threshold below
// 2 is treated as 2.
//
// Words are runs of letters, marks and digits, so scripts written without
// spaces between words, such as Thai, are only split at spaces and
// punctuation: an unbroken Thai sentence counts as a single word.
func RepeatedWords(text string, threshold int, learned []string) []WordCount {
	if threshold < 2 {
		threshold = 2
	}
	skip := make(map[string]bool, len(learned))
	for _, w := range learned {
		skip[strings.ToLower(strings.TrimSpace(w))] = true
	}

	counts := map[string]int{}
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsMark(r) && !unicode.IsDigit(r) && r != '\''
	})
	for _, w := range words {
		w = strings.Trim(w, "'")
		if utf8.RuneCountInString(w) < MinRepeatedWordLen || skip[w] {
			continue
		}
		counts[w]++
	}

	out := []WordCount{}
	for w, c := range counts {
		if c >= threshold {
			out = append(out, WordCount{Word: w, Count: c})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	return out
}
