package workers

import (
	"github.com/hrdocs/docvault/internal/config"
	"github.com/hrdocs/docvault/internal/logger"
	"github.com/hrdocs/docvault/internal/service"
)

type Workers struct {
	workers []Worker
}

// NewWorkers assembles the application's background workers. Currently that
// is the soft-delete cleanup worker alone.
func NewWorkers(cfg config.Workers, documents service.DocumentService, logger *logger.Logger) *Workers {
	return &Workers{
		workers: []Worker{
			newCleanupWorker(cfg, documents, logger.GetChildLogger()),
		},
	}
}

func (w *Workers) Run() {
	for _, worker := range w.workers {
		worker.Run()
	}
}
