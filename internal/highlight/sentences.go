package highlight

import (
	"regexp"
	"strings"
)

// sentenceEnd matches a sentence terminator followed by whitespace. The
// split keeps the terminator with the preceding sentence.
var sentenceEnd = regexp.MustCompile(`([.!?])[\s]+`)

// abbreviations that end with a period but do not end a sentence.
var abbreviations = map[string]bool{
	"e.g.":  true,
	"i.e.":  true,
	"et al": true,
	"etc":   true,
	"fig":   true,
	"figs":  true,
	"eq":    true,
	"eqs":   true,
	"sec":   true,
	"ref":   true,
	"refs":  true,
	"no":    true,
	"vs":    true,
	"dr":    true,
	"prof":  true,
	"cf":    true,
	"resp":  true,
}

// SplitSentences breaks summary text into sentences for per-sentence
// highlight lookups. Markdown headings and blank lines separate sentences
// too; common abbreviations and single-letter initials do not.
func SplitSentences(text string) []string {
	var sentences []string
	for _, block := range strings.Split(text, "\n") {
		block = strings.TrimSpace(block)
		block = strings.TrimLeft(block, "#*- ")
		if block == "" {
			continue
		}
		sentences = append(sentences, splitBlock(block)...)
	}
	return sentences
}

func splitBlock(block string) []string {
	locs := sentenceEnd.FindAllStringIndex(block, -1)
	var out []string
	start := 0
	for _, loc := range locs {
		// loc[0] is the terminator position, loc[1] the start of the next
		// sentence.
		candidate := block[start : loc[0]+1]
		if isAbbreviation(candidate) {
			continue
		}
		if s := strings.TrimSpace(candidate); s != "" {
			out = append(out, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(block[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// isAbbreviation reports whether the candidate sentence ends in a token that
// is an abbreviation rather than a true sentence end.
func isAbbreviation(candidate string) bool {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" || !strings.HasSuffix(trimmed, ".") {
		return false
	}
	fields := strings.Fields(trimmed)
	last := strings.ToLower(fields[len(fields)-1])
	last = strings.TrimLeft(last, "([\"'")

	if abbreviations[last] {
		return true
	}
	word := strings.TrimSuffix(last, ".")
	if abbreviations[word] {
		return true
	}
	// Single-letter initials like "J." in author names.
	if len(word) == 1 && word >= "a" && word <= "z" {
		return true
	}
	// "et al." spans two tokens.
	if word == "al" && len(fields) >= 2 && strings.ToLower(fields[len(fields)-2]) == "et" {
		return true
	}
	return false
}
