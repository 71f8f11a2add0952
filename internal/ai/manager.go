package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// Outcome is the result of one completion call: either Text, or a failure Reason with the
// underlying error.
type Outcome struct {
	Text   string
	Reason FailureReason
	Err    error
}

func (o Outcome) OK() bool {
	return o.Reason == FailureNone
}

type Completer interface {
	Complete(ctx context.Context, prompt string) Outcome
}

type ManagerConfig struct {
	Timeout time.Duration
}

// Manager wraps the configured generator with the completion timeout. It never retries.
type Manager struct {
	gen IGenerator
	cfg ManagerConfig
}

func NewManager(gen IGenerator, cfg ManagerConfig) *Manager {
	return &Manager{gen: gen, cfg: cfg}
}

func (m *Manager) Configured() bool {
	return m != nil && m.gen != nil
}

func (m *Manager) Complete(ctx context.Context, prompt string) Outcome {
	if !m.Configured() {
		return Outcome{Reason: FailureUnavailable, Err: ErrUnavailable}
	}
	if m.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.Timeout)
		defer cancel()
	}
	start := time.Now()
	resp, err := m.gen.Generate(ctx, prompt)
	logger := logutil.GetLogger(ctx).With(zap.Duration("duration", time.Since(start)), zap.Int("prompt_chars", len(prompt)))
	if err != nil {
		reason := Classify(err)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			reason = FailureTimeout
		}
		logger.Warn("completion failed", zap.String("reason", string(reason)), zap.Error(err))
		return Outcome{Reason: reason, Err: err}
	}
	text := strings.TrimSpace(resp)
	if text == "" {
		logger.Warn("completion returned empty text")
		return Outcome{Reason: FailureMalformed, Err: fmt.Errorf("empty ai response: %w", ErrMalformed)}
	}
	logger.Debug("completion succeeded", zap.Int("answer_chars", len(text)))
	return Outcome{Text: text}
}
