package services

import (
	"regexp"
	"strconv"
)

// scorePattern matches "Bölüm Puanı: 87/100" and "Genel Puan: 87/100".
var scorePattern = regexp.MustCompile(`(?i)(?:bölüm\s*puan[ıi]|genel\s*puan)\s*:\s*(\d{1,3})\s*/\s*100`)

// ExtractScore returns the first score sentinel in text when it lies in [0,100].
func ExtractScore(text string) (int, bool) {
	m := scorePattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 0 || n > 100 {
		return 0, false
	}
	return n, true
}
