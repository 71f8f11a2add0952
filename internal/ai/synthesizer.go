package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/manualqa/internal/model"
)

const (
	answerNoDocuments = "No documents have been uploaded yet. Please upload some equipment manuals or maintenance documents first."
	answerNoMatch     = "No relevant information found in the uploaded documents. Try using different keywords or upload more comprehensive manuals."
)

// FailureBudget is reported when no retrieved excerpt fits into the prompt budget.
const FailureBudget FailureReason = "budget"

var fallbackAnswers = map[FailureReason]string{
	FailureTimeout:     "The answering service did not respond in time, so no answer could be generated. The most relevant sections from your documents are listed below.",
	FailureUnavailable: "The answering service is not configured, so no answer could be generated. The most relevant sections from your documents are listed below.",
	FailureQuota:       "The answering service has reached its usage quota, so no answer could be generated right now. The most relevant sections from your documents are listed below.",
	FailureMalformed:   "The answering service returned an unreadable response, so no answer could be generated. The most relevant sections from your documents are listed below.",
	FailureUpstream:    "The answering service could not be reached, so no answer could be generated. The most relevant sections from your documents are listed below.",
	FailureCanceled:    "The request was canceled before an answer was generated. The most relevant sections from your documents are listed below.",
	FailureBudget:      "The relevant sections are too long to send to the answering service. They are listed below for you to read directly.",
}

func FallbackAnswer(reason FailureReason) string {
	if text, ok := fallbackAnswers[reason]; ok {
		return text
	}
	return fallbackAnswers[FailureUpstream]
}

type SynthesizerConfig struct {
	// PromptCharBudget caps the question plus excerpt text, in characters. Zero disables it.
	PromptCharBudget int
	CacheSize        int
	CacheTTL         time.Duration
}

// Synthesizer turns a retrieval result into an answer record.
type Synthesizer struct {
	completer Completer
	budget    int
	cache     *expirable.LRU[string, string]
}

func NewSynthesizer(completer Completer, cfg SynthesizerConfig) *Synthesizer {
	s := &Synthesizer{completer: completer, budget: cfg.PromptCharBudget}
	if cfg.CacheSize > 0 && cfg.CacheTTL > 0 {
		s.cache = expirable.NewLRU[string, string](cfg.CacheSize, nil, cfg.CacheTTL)
	}
	return s
}

// NoDocuments is the answer given while the store is empty.
func (s *Synthesizer) NoDocuments() *model.AnswerRecord {
	return &model.AnswerRecord{
		Answer:   answerNoDocuments,
		Sections: []model.Section{},
		Status:   model.AnswerStatusNoDocuments,
	}
}

// Synthesize never returns an error: completion failures become a fallback answer that
// still lists the sections that would have been cited.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, retrieval model.RetrievalResult) *model.AnswerRecord {
	logger := logutil.GetLogger(ctx)
	if retrieval.Len() == 0 {
		return &model.AnswerRecord{
			Answer:   answerNoMatch,
			Sections: []model.Section{},
			Status:   model.AnswerStatusNoMatch,
		}
	}
	used := s.selectChunks(question, retrieval)
	if len(used) == 0 {
		logger.Warn("no excerpt fits prompt budget", zap.Int("budget", s.budget), zap.Int("retrieved", retrieval.Len()))
		return fallbackRecord(FailureBudget, retrieval.Chunks())
	}
	if len(used) < retrieval.Len() {
		logger.Debug("excerpts dropped to fit prompt budget", zap.Int("kept", len(used)), zap.Int("retrieved", retrieval.Len()))
	}
	prompt := BuildAnswerPrompt(question, used)
	key := cacheKey(prompt)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			logger.Debug("answer cache hit")
			return answeredRecord(cached, used)
		}
	}
	out := s.completer.Complete(ctx, prompt)
	if !out.OK() {
		return fallbackRecord(out.Reason, used)
	}
	if s.cache != nil {
		s.cache.Add(key, out.Text)
	}
	return answeredRecord(out.Text, used)
}

// selectChunks keeps the longest ranked prefix whose text, together with the question, fits
// the budget. Excerpts are never cut.
func (s *Synthesizer) selectChunks(question string, retrieval model.RetrievalResult) []model.Chunk {
	chunks := retrieval.Chunks()
	if s.budget <= 0 {
		return chunks
	}
	total := utf8.RuneCountInString(question)
	for i, ch := range chunks {
		total += utf8.RuneCountInString(ch.Text)
		if total > s.budget {
			return chunks[:i]
		}
	}
	return chunks
}

func BuildAnswerPrompt(question string, chunks []model.Chunk) string {
	var sb strings.Builder
	sb.WriteString(`You are a maintenance assistant for manufacturing equipment.
Answer the question using ONLY the numbered excerpts from the uploaded equipment manuals below.
- If the excerpts do not contain enough information, say so plainly and state what is missing.
- Do not use outside knowledge and do not guess values such as intervals, torques or part numbers.
- Name the source file of every excerpt you rely on.
- Be specific and practical.

EXCERPTS:
`)
	for i, ch := range chunks {
		fmt.Fprintf(&sb, "[%d] source: %s (section %d)\n%s\n\n", i+1, ch.Filename, ch.Position+1, strings.TrimSpace(ch.Text))
	}
	sb.WriteString("QUESTION:\n")
	sb.WriteString(question)
	sb.WriteString("\n")
	return sb.String()
}

func answeredRecord(text string, used []model.Chunk) *model.AnswerRecord {
	return &model.AnswerRecord{
		Answer:   text,
		Sections: model.SectionsOf(used),
		Status:   model.AnswerStatusAnswered,
	}
}

func fallbackRecord(reason FailureReason, chunks []model.Chunk) *model.AnswerRecord {
	return &model.AnswerRecord{
		Answer:   FallbackAnswer(reason),
		Sections: model.SectionsOf(chunks),
		Status:   model.AnswerStatusFallback,
		Reason:   string(reason),
	}
}

func cacheKey(prompt string) string {
	hash := sha256.Sum256([]byte(prompt))
	return "answer:" + hex.EncodeToString(hash[:])
}
