// Package normalize implements the compression pass that derives the
// size-reduced artifact from the raw output: lowercase, whitespace
// collapse, and English stopword removal.
package normalize

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "for": {}, "from": {}, "has": {}, "have": {},
	"in": {}, "is": {}, "it": {}, "of": {}, "on": {}, "or": {}, "that": {},
	"the": {}, "this": {}, "to": {}, "was": {}, "were": {}, "with": {},
}

// File reads inputPath, compresses its text, and writes the result to
// outputPath.
func File(inputPath, outputPath string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", inputPath, err)
	}
	if err := os.WriteFile(outputPath, []byte(Text(string(data))), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}
	return nil
}

// Text lowercases the input, strips non-printable runes, collapses all
// whitespace runs to single spaces, and drops bare stopwords.
func Text(s string) string {
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
	s = whitespaceRe.ReplaceAllString(s, " ")

	words := strings.Split(strings.TrimSpace(s), " ")
	kept := words[:0]
	for _, w := range words {
		if _, drop := stopwords[w]; drop {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}
