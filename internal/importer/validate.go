package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxContentLength bounds one side of a card, in characters.
const MaxContentLength = 50000

var clozePattern = regexp.MustCompile(`(?s)\{\{c(\d+)::(.+?)(?:::(.+?))?\}\}`)

// ValidateContent returns a message describing why s cannot be a card side,
// or "" when it can.
func ValidateContent(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "Content is empty"
	}
	if utf8.RuneCountInString(s) > MaxContentLength {
		return fmt.Sprintf("Content too long (max %d chars)", MaxContentLength)
	}
	return ""
}

// IsCloze reports whether s contains a {{cN::...}} deletion.
func IsCloze(s string) bool {
	return clozePattern.MatchString(s)
}

// Cloze is one deletion within a cloze note.
type Cloze struct {
	Number int    `json:"number"`
	Answer string `json:"answer"`
	Hint   string `json:"hint,omitempty"`
}

// ClozeDeletions returns every deletion in s in order of appearance.
func ClozeDeletions(s string) []Cloze {
	var out []Cloze
	for _, m := range clozePattern.FindAllStringSubmatch(s, -1) {
		n, _ := strconv.Atoi(m[1])
		out = append(out, Cloze{Number: n, Answer: m[2], Hint: m[3]})
	}
	return out
}

// validateSides checks both sides and returns the first problem, prefixed
// with the side name.
func validateSides(front, back, frontLabel, backLabel string) string {
	if msg := ValidateContent(front); msg != "" {
		return frontLabel + " - " + msg
	}
	if msg := ValidateContent(back); msg != "" {
		return backLabel + " - " + msg
	}
	return ""
}
