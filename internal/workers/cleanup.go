// SPDX-License-Identifier: Apache-2.0

package workers

import (
	"context"
	"time"

	"github.com/hrdocs/docvault/internal/config"
	"github.com/hrdocs/docvault/internal/logger"
	"github.com/hrdocs/docvault/internal/service"
)

// cleanupWorker permanently removes documents whose soft-delete is older than
// the configured retention window: encrypted blobs first, records second.
type cleanupWorker struct {
	documents service.DocumentService
	interval  time.Duration
	retention time.Duration
	logger    *logger.Logger
	now       func() time.Time
}

func newCleanupWorker(cfg config.Workers, documents service.DocumentService, logger *logger.Logger) *cleanupWorker {
	return &cleanupWorker{
		documents: documents,
		interval:  cfg.CleanupInterval,
		retention: cfg.Retention,
		logger:    logger,
		now:       time.Now,
	}
}

// Run starts the periodic purge in a background goroutine. A non-positive
// interval disables the worker.
func (c *cleanupWorker) Run() {
	if c.interval <= 0 {
		c.logger.Info().Msg("cleanup worker disabled")
		return
	}

	c.logger.Info().
		Dur("interval", c.interval).
		Dur("retention", c.retention).
		Msg("cleanup worker started")

	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for range ticker.C {
			c.purge(context.Background())
		}
	}()
}

func (c *cleanupWorker) purge(ctx context.Context) {
	cutoff := c.now().Add(-c.retention)

	purged, err := c.documents.PurgeExpired(ctx, cutoff)
	if err != nil {
		c.logger.Err(err).Msg("purging expired documents failed")
		return
	}
	if purged > 0 {
		c.logger.Info().Int("purged", purged).Msg("expired documents removed")
	}
}
