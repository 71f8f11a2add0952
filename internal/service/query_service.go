package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/manualqa/internal/ai"
	"github.com/xxxsen/manualqa/internal/model"
	appErr "github.com/xxxsen/manualqa/internal/pkg/errors"
	"github.com/xxxsen/manualqa/internal/repo"
	"github.com/xxxsen/manualqa/internal/retriever"
)

type QueryService struct {
	docs      *repo.DocumentRepo
	retriever *retriever.Retriever
	synth     *ai.Synthesizer
	k         int
}

func NewQueryService(docs *repo.DocumentRepo, r *retriever.Retriever, synth *ai.Synthesizer, k int) *QueryService {
	return &QueryService{docs: docs, retriever: r, synth: synth, k: k}
}

// Ask answers a question from the current store snapshot. The only error is an empty
// question; completion failures come back as fallback records.
func (s *QueryService) Ask(ctx context.Context, question string) (*model.AnswerRecord, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question is required: %w", appErr.ErrInvalidQuestion)
	}
	chunks := s.docs.AllChunks(ctx)
	if len(chunks) == 0 {
		return s.synth.NoDocuments(), nil
	}
	start := time.Now()
	result := s.retriever.Retrieve(question, chunks, s.k)
	logger := logutil.GetLogger(ctx)
	logger.Debug("retrieval finished",
		zap.Int("candidates", len(chunks)),
		zap.Int("matched", result.Len()),
		zap.Duration("duration", time.Since(start)),
	)
	record := s.synth.Synthesize(ctx, question, result)
	logger.Info("question answered",
		zap.String("status", string(record.Status)),
		zap.String("reason", record.Reason),
		zap.Int("sections", len(record.Sections)),
	)
	return record, nil
}
