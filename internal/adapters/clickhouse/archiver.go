package clickhouse

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/market-intel/internal/audit"
	"github.com/selivandex/market-intel/pkg/logger"
)

// Archiver buffers audit entries and writes them to ClickHouse in batches.
// It implements audit.Sink, so Archive never blocks on the database.
type Archiver struct {
	repo        *Repository
	buffer      []audit.Entry
	bufferMu    sync.Mutex
	maxBatch    int
	flushTicker *time.Ticker
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// NewArchiver creates new audit archiver
func NewArchiver(repo *Repository, maxBatch int, maxWait time.Duration) *Archiver {
	ctx, cancel := context.WithCancel(context.Background())

	a := &Archiver{
		repo:     repo,
		buffer:   make([]audit.Entry, 0, maxBatch),
		maxBatch: maxBatch,
		ctx:      ctx,
		cancel:   cancel,
	}

	a.flushTicker = time.NewTicker(maxWait)

	a.wg.Add(1)
	go a.autoFlush()

	return a
}

// Archive adds an audit entry to the buffer
func (a *Archiver) Archive(entry audit.Entry) {
	a.bufferMu.Lock()
	a.buffer = append(a.buffer, entry)
	shouldFlush := len(a.buffer) >= a.maxBatch
	a.bufferMu.Unlock()

	if shouldFlush {
		a.flush()
	}
}

// autoFlush flushes buffer periodically
func (a *Archiver) autoFlush() {
	defer a.wg.Done()

	for {
		select {
		case <-a.flushTicker.C:
			a.flush()
		case <-a.ctx.Done():
			// Final flush before exit
			a.flush()
			return
		}
	}
}

// flush writes buffered entries to ClickHouse via repository
func (a *Archiver) flush() {
	a.bufferMu.Lock()
	if len(a.buffer) == 0 {
		a.bufferMu.Unlock()
		return
	}

	toWrite := make([]audit.Entry, len(a.buffer))
	copy(toWrite, a.buffer)
	a.buffer = a.buffer[:0]
	a.bufferMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.repo.SaveAuditEntries(ctx, toWrite); err != nil {
		logger.Error("failed to flush audit batch to ClickHouse",
			zap.Int("entries", len(toWrite)),
			zap.Error(err),
		)
		return
	}

	logger.Debug("flushed audit batch to ClickHouse",
		zap.Int("entries", len(toWrite)),
	)
}

// Close stops the archiver and flushes remaining data
func (a *Archiver) Close() error {
	a.flushTicker.Stop()
	a.cancel()
	a.wg.Wait()
	return nil
}
