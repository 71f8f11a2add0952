// Package filestore archives the raw bytes of ingested uploads.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xxxsen/manualqa/internal/config"
)

type Store interface {
	Type() string
	Save(ctx context.Context, key string, r ReadSeekCloser, size int64) error
}

type ReadSeekCloser interface {
	Read(p []byte) (n int, err error)
	Seek(offset int64, whence int) (int64, error)
	Close() error
}

type Factory func(args interface{}) (Store, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func Register(name string, factory Factory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registryMu.Lock()
	registry[key] = factory
	registryMu.Unlock()
}

// New builds the configured store. A nil config disables archiving and returns a nil Store.
func New(cfg *config.FileStoreConfig) (Store, error) {
	if cfg == nil {
		return nil, nil
	}
	key := strings.ToLower(strings.TrimSpace(cfg.Type))
	if key == "" {
		return nil, fmt.Errorf("file_store.type is required")
	}
	registryMu.RLock()
	factory := registry[key]
	registryMu.RUnlock()
	if factory == nil {
		return nil, fmt.Errorf("unsupported file store type: %s", cfg.Type)
	}
	return factory(cfg.Data)
}

type bytesFile struct {
	*bytes.Reader
}

func (bytesFile) Close() error {
	return nil
}

// NewBytesFile wraps an in-memory upload so it can be handed to Save.
func NewBytesFile(data []byte) ReadSeekCloser {
	return bytesFile{Reader: bytes.NewReader(data)}
}

// ArchiveKey builds a flat object key for an upload.
func ArchiveKey(filename string, ctime int64) string {
	name := strings.NewReplacer("/", "_", "\\", "_").Replace(strings.TrimSpace(filename))
	return fmt.Sprintf("%d_%s", ctime, name)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("store config is required")
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode store config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode store config: %w", err)
	}
	return nil
}
