package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/xxxsen/manualqa/internal/ai"
	"github.com/xxxsen/manualqa/internal/extract"
	"github.com/xxxsen/manualqa/internal/filestore"
	"github.com/xxxsen/manualqa/internal/repo"
	"github.com/xxxsen/manualqa/internal/retriever"
)

type memoryArchive struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (m *memoryArchive) Type() string {
	return "memory"
}

func (m *memoryArchive) Save(ctx context.Context, key string, r filestore.ReadSeekCloser, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	m.files[key] = data
	return nil
}

type generatorFunc func(ctx context.Context, prompt string) (string, error)

func (f generatorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

type fixture struct {
	docs    *repo.DocumentRepo
	archive *memoryArchive
	ingest  *IngestService
	query   *QueryService
	manage  *DocumentService
}

func newFixture(gen ai.IGenerator, timeout time.Duration) *fixture {
	docs := repo.NewDocumentRepo()
	archive := &memoryArchive{}
	synth := ai.NewSynthesizer(ai.NewManager(gen, ai.ManagerConfig{Timeout: timeout}), ai.SynthesizerConfig{PromptCharBudget: 6000})
	return &fixture{
		docs:    docs,
		archive: archive,
		ingest:  NewIngestService(docs, extract.New(), archive, IngestConfig{ChunkTargetSize: 120, ChunkOverlap: 20}),
		query:   NewQueryService(docs, retriever.New(), synth, 3),
		manage:  NewDocumentService(docs),
	}
}
