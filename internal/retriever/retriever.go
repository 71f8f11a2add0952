// Package retriever ranks stored chunks against a question using lexical relevance.
package retriever

import (
	"math"
	"sort"

	"github.com/xxxsen/manualqa/internal/model"
)

const DefaultPhraseWeight = 0.5

type Option func(*Retriever)

// WithPhraseWeight sets the multiplier applied to the idf of both terms of a matched
// question bigram.
func WithPhraseWeight(w float64) Option {
	return func(r *Retriever) {
		if w >= 0 {
			r.phraseWeight = w
		}
	}
}

type Retriever struct {
	phraseWeight float64
	stopwords    map[string]struct{}
}

func New(opts ...Option) *Retriever {
	r := &Retriever{
		phraseWeight: DefaultPhraseWeight,
		stopwords:    defaultStopwords(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type chunkKey struct {
	filename string
	position int
}

type candidate struct {
	chunk   model.Chunk
	terms   []string
	bigrams [][2]string
}

// Retrieve scores every chunk against the question and returns at most k chunks with a
// positive score. Score is the sum of smoothed idf over distinct question terms found in the
// chunk, plus a bonus for question bigrams that appear adjacently in the chunk. idf is
// computed over the given snapshot, so the same question and snapshot always give the same
// result.
func (r *Retriever) Retrieve(question string, chunks []model.Chunk, k int) model.RetrievalResult {
	if k <= 0 || len(chunks) == 0 {
		return model.RetrievalResult{}
	}
	qTerms := r.terms(question)
	if len(qTerms) == 0 {
		return model.RetrievalResult{}
	}
	qSet := make(map[string]struct{}, len(qTerms))
	for _, t := range qTerms {
		qSet[t] = struct{}{}
	}
	qBigrams := make(map[string][2]string)
	for i := 1; i < len(qTerms); i++ {
		qBigrams[bigramKey(qTerms[i-1], qTerms[i])] = [2]string{qTerms[i-1], qTerms[i]}
	}

	df := make(map[string]int, len(qSet))
	seenChunks := make(map[chunkKey]struct{}, len(chunks))
	candidates := make([]candidate, 0)
	n := 0
	for _, ch := range chunks {
		key := chunkKey{filename: ch.Filename, position: ch.Position}
		if _, dup := seenChunks[key]; dup {
			continue
		}
		seenChunks[key] = struct{}{}
		n++

		tokens := r.terms(ch.Text)
		matched := make(map[string]struct{})
		var bigrams [][2]string
		var seenBigrams map[string]struct{}
		for i, tok := range tokens {
			if _, ok := qSet[tok]; ok {
				matched[tok] = struct{}{}
			}
			if i == 0 || len(qBigrams) == 0 {
				continue
			}
			bk := bigramKey(tokens[i-1], tok)
			pair, ok := qBigrams[bk]
			if !ok {
				continue
			}
			if seenBigrams == nil {
				seenBigrams = make(map[string]struct{})
			}
			if _, dup := seenBigrams[bk]; dup {
				continue
			}
			seenBigrams[bk] = struct{}{}
			bigrams = append(bigrams, pair)
		}
		if len(matched) == 0 {
			continue
		}
		terms := make([]string, 0, len(matched))
		for t := range matched {
			df[t]++
			terms = append(terms, t)
		}
		sort.Strings(terms)
		sort.Slice(bigrams, func(i, j int) bool {
			return bigramKey(bigrams[i][0], bigrams[i][1]) < bigramKey(bigrams[j][0], bigrams[j][1])
		})
		candidates = append(candidates, candidate{chunk: ch, terms: terms, bigrams: bigrams})
	}
	if len(candidates) == 0 {
		return model.RetrievalResult{}
	}

	idf := func(t string) float64 {
		return math.Log((1+float64(n))/(1+float64(df[t]))) + 1.0
	}
	items := make([]model.ScoredChunk, 0, len(candidates))
	for _, c := range candidates {
		score := 0.0
		for _, t := range c.terms {
			score += idf(t)
		}
		for _, pair := range c.bigrams {
			score += r.phraseWeight * (idf(pair[0]) + idf(pair[1]))
		}
		if score <= 0 {
			continue
		}
		items = append(items, model.ScoredChunk{Chunk: c.chunk, Score: score})
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Chunk.Filename != b.Chunk.Filename {
			return a.Chunk.Filename < b.Chunk.Filename
		}
		return a.Chunk.Position < b.Chunk.Position
	})
	if len(items) > k {
		items = items[:k]
	}
	return model.RetrievalResult{Items: items}
}
