package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/manualqa/internal/chunker"
	"github.com/xxxsen/manualqa/internal/extract"
	"github.com/xxxsen/manualqa/internal/filestore"
	"github.com/xxxsen/manualqa/internal/model"
	appErr "github.com/xxxsen/manualqa/internal/pkg/errors"
	"github.com/xxxsen/manualqa/internal/repo"
)

const (
	IngestStatusSuccess = "success"
	IngestStatusError   = "error"
)

type TextExtractor interface {
	Extract(ctx context.Context, kind extract.Kind, data []byte) (string, error)
}

// Upload is one file of a batch. Err is set by the transport when the file was rejected
// before extraction, for example an unsupported kind.
type Upload struct {
	Filename string
	Kind     extract.Kind
	Data     []byte
	Err      error
}

type IngestOutcome struct {
	Filename   string `json:"filename"`
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
	ChunkCount int    `json:"chunk_count,omitempty"`
	Size       int64  `json:"size,omitempty"`
	err        error
}

func (o IngestOutcome) Err() error {
	return o.err
}

type IngestConfig struct {
	ChunkTargetSize int
	ChunkOverlap    int
}

type IngestService struct {
	docs       *repo.DocumentRepo
	extractor  TextExtractor
	archive    filestore.Store
	targetSize int
	overlap    int
}

// NewIngestService builds the coordinator. archive may be nil, which disables archiving.
func NewIngestService(docs *repo.DocumentRepo, extractor TextExtractor, archive filestore.Store, cfg IngestConfig) *IngestService {
	return &IngestService{
		docs:       docs,
		extractor:  extractor,
		archive:    archive,
		targetSize: cfg.ChunkTargetSize,
		overlap:    cfg.ChunkOverlap,
	}
}

// Ingest chunks extracted text and registers it under filename. size is the raw upload size.
func (s *IngestService) Ingest(ctx context.Context, filename string, size int64, text string) (*model.Document, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, fmt.Errorf("filename is required: %w", appErr.ErrInvalid)
	}
	if s.docs.Exists(ctx, filename) {
		return nil, fmt.Errorf("document %q already exists, delete it first: %w", filename, appErr.ErrDuplicateDocument)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no text extracted from %q: %w", filename, appErr.ErrEmptyExtraction)
	}
	specs, err := chunker.Chunk(text, s.targetSize, s.overlap)
	if err != nil {
		return nil, fmt.Errorf("chunk %q: %v: %w", filename, err, appErr.ErrChunkingFailure)
	}
	if err := verifyChunks(text, specs, s.targetSize, s.overlap); err != nil {
		logutil.GetLogger(ctx).Error("chunker produced invalid spans", zap.String("filename", filename), zap.Error(err))
		return nil, fmt.Errorf("chunk %q: %v: %w", filename, err, appErr.ErrChunkingFailure)
	}
	doc, err := s.docs.Put(ctx, filename, size, specs)
	if err != nil {
		if errors.Is(err, appErr.ErrEmptyDocument) {
			return nil, fmt.Errorf("no text extracted from %q: %w", filename, appErr.ErrEmptyExtraction)
		}
		return nil, err
	}
	logutil.GetLogger(ctx).Info("document ingested",
		zap.String("filename", filename),
		zap.Int64("size", size),
		zap.Int("chunks", len(doc.Chunks)),
	)
	return doc, nil
}

// IngestBatch handles every upload independently; one failure never affects the others.
// Outcomes are returned in upload order.
func (s *IngestService) IngestBatch(ctx context.Context, uploads []Upload) []IngestOutcome {
	outcomes := make([]IngestOutcome, 0, len(uploads))
	for _, up := range uploads {
		outcomes = append(outcomes, s.ingestUpload(ctx, up))
	}
	return outcomes
}

func (s *IngestService) ingestUpload(ctx context.Context, up Upload) IngestOutcome {
	logger := logutil.GetLogger(ctx).With(zap.String("filename", up.Filename), zap.String("kind", up.Kind.String()))
	fail := func(err error) IngestOutcome {
		logger.Warn("upload rejected", zap.Error(err))
		return IngestOutcome{Filename: up.Filename, Status: IngestStatusError, Reason: err.Error(), err: err}
	}
	if up.Err != nil {
		return fail(up.Err)
	}
	if strings.TrimSpace(up.Filename) != "" && s.docs.Exists(ctx, strings.TrimSpace(up.Filename)) {
		return fail(fmt.Errorf("document %q already exists, delete it first: %w", up.Filename, appErr.ErrDuplicateDocument))
	}
	text, err := s.extractor.Extract(ctx, up.Kind, up.Data)
	if err != nil {
		return fail(err)
	}
	doc, err := s.Ingest(ctx, up.Filename, int64(len(up.Data)), text)
	if err != nil {
		return fail(err)
	}
	s.archiveUpload(ctx, doc, up.Data)
	return IngestOutcome{
		Filename:   doc.Filename,
		Status:     IngestStatusSuccess,
		ChunkCount: len(doc.Chunks),
		Size:       doc.Size,
	}
}

func (s *IngestService) archiveUpload(ctx context.Context, doc *model.Document, data []byte) {
	if s.archive == nil {
		return
	}
	key := filestore.ArchiveKey(doc.Filename, doc.Ctime)
	start := time.Now()
	if err := s.archive.Save(ctx, key, filestore.NewBytesFile(data), int64(len(data))); err != nil {
		logutil.GetLogger(ctx).Error("archive upload failed",
			zap.String("filename", doc.Filename),
			zap.String("store", s.archive.Type()),
			zap.Error(err),
		)
		return
	}
	logutil.GetLogger(ctx).Debug("upload archived",
		zap.String("key", key),
		zap.String("store", s.archive.Type()),
		zap.Duration("duration", time.Since(start)),
	)
}

// verifyChunks checks the chunker contract: spans are non-empty, bounded by targetSize, match
// the text at their offsets, and tile it with exactly overlap runes shared between neighbours.
func verifyChunks(text string, specs []model.ChunkSpec, targetSize, overlap int) error {
	if len(specs) == 0 {
		return fmt.Errorf("no spans for non-empty text")
	}
	runes := []rune(text)
	for i, spec := range specs {
		if spec.Start < 0 || spec.End > len(runes) || spec.Start >= spec.End {
			return fmt.Errorf("span %d has invalid range [%d, %d)", i, spec.Start, spec.End)
		}
		if n := utf8.RuneCountInString(spec.Text); n == 0 || n > targetSize {
			return fmt.Errorf("span %d has length %d, limit %d", i, n, targetSize)
		}
		if string(runes[spec.Start:spec.End]) != spec.Text {
			return fmt.Errorf("span %d text does not match offsets", i)
		}
		if i == 0 {
			if spec.Start != 0 {
				return fmt.Errorf("first span starts at %d", spec.Start)
			}
			continue
		}
		if prev := specs[i-1]; spec.Start != prev.End-overlap {
			return fmt.Errorf("span %d starts at %d, want %d", i, spec.Start, prev.End-overlap)
		}
	}
	if last := specs[len(specs)-1]; last.End != len(runes) {
		return fmt.Errorf("last span ends at %d, text has %d runes", last.End, len(runes))
	}
	return nil
}
