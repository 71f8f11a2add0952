package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/manualqa/internal/repo"
)

// DocumentExpiryJob drops documents uploaded more than ttl ago.
type DocumentExpiryJob struct {
	docs *repo.DocumentRepo
	ttl  time.Duration
	now  func() time.Time
}

func NewDocumentExpiryJob(docs *repo.DocumentRepo, ttl time.Duration) *DocumentExpiryJob {
	return &DocumentExpiryJob{docs: docs, ttl: ttl, now: time.Now}
}

func (j *DocumentExpiryJob) Name() string {
	return "document_expiry"
}

func (j *DocumentExpiryJob) Run(ctx context.Context) error {
	if j.docs == nil || j.ttl <= 0 {
		return nil
	}
	cutoff := j.now().Add(-j.ttl)
	removed := j.docs.DeleteBefore(ctx, cutoff)
	if len(removed) > 0 {
		logutil.GetLogger(ctx).Info("expired documents removed",
			zap.Strings("filenames", removed),
			zap.Time("cutoff", cutoff),
		)
	}
	return nil
}
