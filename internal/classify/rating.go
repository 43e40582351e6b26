package classify

import (
	"strings"
)

// ratingScale orders credit ratings from best (1) to worst (20)
var ratingScale = map[string]int{
	"AAA": 1, "AA+": 2, "AA": 3, "AA-": 4,
	"A+": 5, "A": 6, "A-": 7,
	"BBB+": 8, "BBB": 9, "BBB-": 10,
	"BB+": 11, "BB": 12, "BB-": 13,
	"B+": 14, "B": 15, "B-": 16,
	"CCC": 17, "CC": 18, "C": 19, "D": 20,
}

// RatingScore returns the ordinal of a rating token, lower is better.
// Agency decorations such as "brAA+" or "AA(bra)" are not recognized.
func RatingScore(raw string) (int, bool) {
	token := strings.ToUpper(strings.Join(strings.Fields(raw), ""))
	score, ok := ratingScale[token]
	return score, ok
}

// RatingTokens lists the recognized tokens from best to worst
func RatingTokens() []string {
	tokens := make([]string, len(ratingScale))
	for token, score := range ratingScale {
		tokens[score-1] = token
	}
	return tokens
}
