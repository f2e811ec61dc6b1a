// SPDX-License-Identifier: Apache-2.0

package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hrdocs/docvault/internal/config"
	"github.com/hrdocs/docvault/internal/logger"
	"github.com/hrdocs/docvault/internal/service"
)

// mockWorker tracks how many times Run was called.
type mockWorker struct {
	runCount int
}

func (m *mockWorker) Run() {
	m.runCount++
}

func TestWorkers_Run_AllWorkersAreCalled(t *testing.T) {
	w1 := &mockWorker{}
	w2 := &mockWorker{}

	ws := &Workers{workers: []Worker{w1, w2}}
	ws.Run()

	for i, w := range []*mockWorker{w1, w2} {
		if w.runCount != 1 {
			t.Errorf("worker[%d]: expected runCount=1, got %d", i, w.runCount)
		}
	}
}

func TestWorkers_Run_Nil(t *testing.T) {
	ws := &Workers{}

	// Should not panic when workers field is nil
	ws.Run()
}

// purgeRecorder implements service.DocumentService for the cleanup worker;
// only PurgeExpired is reachable.
type purgeRecorder struct {
	service.DocumentService

	cutoffs []time.Time
	purged  int
	err     error
}

func (p *purgeRecorder) PurgeExpired(_ context.Context, cutoff time.Time) (int, error) {
	p.cutoffs = append(p.cutoffs, cutoff)
	return p.purged, p.err
}

func TestCleanupWorker_PurgeUsesRetentionCutoff(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	recorder := &purgeRecorder{purged: 2}

	worker := newCleanupWorker(config.Workers{
		CleanupInterval: time.Hour,
		Retention:       30 * 24 * time.Hour,
	}, recorder, logger.Nop())
	worker.now = func() time.Time { return now }

	worker.purge(context.Background())

	if len(recorder.cutoffs) != 1 {
		t.Fatalf("expected one purge call, got %d", len(recorder.cutoffs))
	}
	want := now.Add(-30 * 24 * time.Hour)
	if !recorder.cutoffs[0].Equal(want) {
		t.Errorf("expected cutoff %v, got %v", want, recorder.cutoffs[0])
	}
}

func TestCleanupWorker_PurgeErrorIsSwallowed(t *testing.T) {
	recorder := &purgeRecorder{err: errors.New("db down")}

	worker := newCleanupWorker(config.Workers{CleanupInterval: time.Hour}, recorder, logger.Nop())

	// purge logs and returns; the ticker loop must survive a failed pass
	worker.purge(context.Background())

	if len(recorder.cutoffs) != 1 {
		t.Fatalf("expected one purge call, got %d", len(recorder.cutoffs))
	}
}

func TestCleanupWorker_DisabledWithoutInterval(t *testing.T) {
	recorder := &purgeRecorder{}

	worker := newCleanupWorker(config.Workers{}, recorder, logger.Nop())
	worker.Run()

	// no goroutine was started, so no purge can ever fire
	time.Sleep(10 * time.Millisecond)
	if len(recorder.cutoffs) != 0 {
		t.Errorf("expected no purge calls, got %d", len(recorder.cutoffs))
	}
}
