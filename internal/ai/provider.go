package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// IProvider is a completion backend. The model is chosen per call so one provider can serve
// several configured models.
type IProvider interface {
	Name() string
	// Configured reports whether the provider has the credentials it needs.
	Configured() bool
	Generate(ctx context.Context, model string, prompt string) (string, error)
}

type IGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type generator struct {
	provider IProvider
	model    string
}

func NewGenerator(p IProvider, model string) IGenerator {
	return &generator{provider: p, model: model}
}

func (g *generator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.provider.Generate(ctx, g.model, prompt)
}

type ProviderFactory func(args interface{}) (IProvider, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]ProviderFactory{}
)

func Register(name string, factory ProviderFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registryMu.Lock()
	registry[key] = factory
	registryMu.Unlock()
}

func NewProvider(name string, args interface{}) (IProvider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("ai provider name is required")
	}
	registryMu.RLock()
	factory := registry[key]
	registryMu.RUnlock()
	if factory == nil {
		return nil, fmt.Errorf("unsupported ai provider: %s", name)
	}
	return factory(args)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode ai provider config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode ai provider config: %w", err)
	}
	return nil
}
