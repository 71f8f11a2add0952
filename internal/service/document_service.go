package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/manualqa/internal/model"
	appErr "github.com/xxxsen/manualqa/internal/pkg/errors"
	"github.com/xxxsen/manualqa/internal/repo"
)

type DocumentService struct {
	docs *repo.DocumentRepo
}

func NewDocumentService(docs *repo.DocumentRepo) *DocumentService {
	return &DocumentService{docs: docs}
}

func (s *DocumentService) List(ctx context.Context) []model.DocumentSummary {
	return s.docs.List(ctx)
}

func (s *DocumentService) Get(ctx context.Context, filename string) (*model.Document, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, fmt.Errorf("filename is required: %w", appErr.ErrInvalid)
	}
	return s.docs.Get(ctx, filename)
}

// Delete removes a document and every chunk it owns. Queries that already took a snapshot
// keep seeing the old chunks; later ones never do.
func (s *DocumentService) Delete(ctx context.Context, filename string) error {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return fmt.Errorf("filename is required: %w", appErr.ErrInvalid)
	}
	if err := s.docs.Delete(ctx, filename); err != nil {
		return fmt.Errorf("document %s: %w", filename, err)
	}
	logutil.GetLogger(ctx).Info("document deleted", zap.String("filename", filename))
	return nil
}

func (s *DocumentService) Reset(ctx context.Context) int {
	n := s.docs.Reset(ctx)
	logutil.GetLogger(ctx).Info("document store reset", zap.Int("deleted", n))
	return n
}

func (s *DocumentService) Count(ctx context.Context) int {
	return s.docs.Count(ctx)
}
