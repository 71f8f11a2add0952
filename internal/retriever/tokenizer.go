package retriever

import (
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

// terms lowercases text and returns its content terms in order, stopwords removed.
func (r *Retriever) terms(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, tok := range raw {
		if _, stop := r.stopwords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func bigramKey(a, b string) string {
	return a + "\x00" + b
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
		"i", "me", "my", "we", "our", "you", "your", "do", "does", "did", "what", "which", "who", "how", "why", "where", "when",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
