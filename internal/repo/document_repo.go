package repo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/manualqa/internal/model"
	appErr "github.com/xxxsen/manualqa/internal/pkg/errors"
)

// DocumentRepo is the in-memory registry of uploaded documents and their chunks.
// Writers hold the write lock; List, Get and AllChunks share the read lock. No method
// calls out of the package while holding the lock.
type DocumentRepo struct {
	mu   sync.RWMutex
	docs map[string]*model.Document
	now  func() time.Time
}

func NewDocumentRepo() *DocumentRepo {
	return &DocumentRepo{
		docs: make(map[string]*model.Document),
		now:  time.Now,
	}
}

// Put stores a new document built from the chunk specs. Existing filenames are never
// overwritten; callers must Delete first.
func (r *DocumentRepo) Put(ctx context.Context, filename string, size int64, specs []model.ChunkSpec) (*model.Document, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("put %q: %w", filename, appErr.ErrEmptyDocument)
	}
	doc := &model.Document{
		Filename: filename,
		Size:     size,
		Ctime:    r.now().UnixMilli(),
		Chunks:   make([]model.Chunk, 0, len(specs)),
	}
	for i, spec := range specs {
		doc.Chunks = append(doc.Chunks, model.Chunk{
			Filename: filename,
			Position: i,
			Text:     spec.Text,
			Start:    spec.Start,
			End:      spec.End,
		})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[filename]; ok {
		return nil, fmt.Errorf("put %q: %w", filename, appErr.ErrDuplicateDocument)
	}
	r.docs[filename] = doc
	logutil.GetLogger(ctx).Debug("document stored", zap.String("filename", filename), zap.Int("chunks", len(doc.Chunks)))
	return cloneDocument(doc), nil
}

func (r *DocumentRepo) Get(ctx context.Context, filename string) (*model.Document, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[filename]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return cloneDocument(doc), nil
}

func (r *DocumentRepo) Exists(ctx context.Context, filename string) bool {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.docs[filename]
	return ok
}

func (r *DocumentRepo) Delete(ctx context.Context, filename string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[filename]; !ok {
		return appErr.ErrNotFound
	}
	delete(r.docs, filename)
	logutil.GetLogger(ctx).Debug("document deleted", zap.String("filename", filename))
	return nil
}

// DeleteBefore removes every document uploaded before cutoff and returns their filenames in
// ascending order.
func (r *DocumentRepo) DeleteBefore(ctx context.Context, cutoff time.Time) []string {
	_ = ctx
	limit := cutoff.UnixMilli()
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := make([]string, 0)
	for name, doc := range r.docs {
		if doc.Ctime < limit {
			removed = append(removed, name)
		}
	}
	for _, name := range removed {
		delete(r.docs, name)
	}
	sort.Strings(removed)
	return removed
}

// Reset drops every document and returns how many were removed.
func (r *DocumentRepo) Reset(ctx context.Context) int {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.docs)
	r.docs = make(map[string]*model.Document)
	return n
}

func (r *DocumentRepo) Count(ctx context.Context) int {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}

// List returns document summaries ordered by filename.
func (r *DocumentRepo) List(ctx context.Context) []model.DocumentSummary {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := make([]model.DocumentSummary, 0, len(r.docs))
	for _, doc := range r.docs {
		items = append(items, doc.Summary())
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Filename < items[j].Filename
	})
	return items
}

// AllChunks returns a copy of every stored chunk, ordered by filename then position, taken
// under a single read lock.
func (r *DocumentRepo) AllChunks(ctx context.Context) []model.Chunk {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.docs))
	total := 0
	for name, doc := range r.docs {
		names = append(names, name)
		total += len(doc.Chunks)
	}
	sort.Strings(names)
	chunks := make([]model.Chunk, 0, total)
	for _, name := range names {
		chunks = append(chunks, r.docs[name].Chunks...)
	}
	return chunks
}

func cloneDocument(doc *model.Document) *model.Document {
	clone := *doc
	clone.Chunks = make([]model.Chunk, len(doc.Chunks))
	copy(clone.Chunks, doc.Chunks)
	return &clone
}
