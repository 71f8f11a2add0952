// Package chunker splits extracted manual text into overlapping passages.
package chunker

import (
	"errors"
	"unicode"

	"github.com/xxxsen/manualqa/internal/model"
)

var ErrInvalidParams = errors.New("chunker: overlap must satisfy 0 < overlap < target size")

// Chunk splits text into spans of at most targetSize runes. Adjacent spans share exactly
// overlap runes, so dropping the first overlap runes of every span after the first and
// concatenating gives back text.
//
// The split point is taken from the last overlap runes of each window, preferring a sentence
// end, then any whitespace, then a hard cut.
func Chunk(text string, targetSize, overlap int) ([]model.ChunkSpec, error) {
	if overlap <= 0 || overlap >= targetSize {
		return nil, ErrInvalidParams
	}
	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}
	var specs []model.ChunkSpec
	start := 0
	for {
		end := start + targetSize
		if end >= len(runes) {
			specs = append(specs, newSpec(runes, start, len(runes)))
			return specs, nil
		}
		cut := splitPoint(runes, start, end, overlap)
		specs = append(specs, newSpec(runes, start, cut))
		start = cut - overlap
	}
}

// splitPoint returns the exclusive end of the span starting at start. The lower bound keeps
// the next span start (cut-overlap) strictly after start.
func splitPoint(runes []rune, start, end, overlap int) int {
	lo := end - overlap
	if floor := start + overlap + 1; lo < floor {
		lo = floor
	}
	space := -1
	for cut := end; cut >= lo; cut-- {
		if isSentenceBoundary(runes, start, cut) {
			return cut
		}
		if space < 0 && unicode.IsSpace(runes[cut-1]) {
			space = cut
		}
	}
	if space > 0 {
		return space
	}
	return end
}

func isSentenceBoundary(runes []rune, start, cut int) bool {
	last := runes[cut-1]
	if last == '\n' {
		return true
	}
	if !unicode.IsSpace(last) || cut-2 < start {
		return false
	}
	switch runes[cut-2] {
	case '.', '!', '?', ';', ':':
		return true
	}
	return false
}

func newSpec(runes []rune, start, end int) model.ChunkSpec {
	return model.ChunkSpec{
		Text:  string(runes[start:end]),
		Start: start,
		End:   end,
	}
}
