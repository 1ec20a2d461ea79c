package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"solar_estimator/internal/repository"
	"solar_estimator/pkg/logger"
)

// BatchWriter buffers audit records and writes them in batches so
// estimate requests never block on the audit store
type BatchWriter struct {
	writer        repository.AuditWriter
	batchSize     int
	flushInterval time.Duration

	mu     sync.Mutex
	buffer []repository.AuditRecord
	stop   chan struct{}
	wg     sync.WaitGroup

	// Stats
	batchesWritten uint64
	recordsWritten uint64
	failedBatches  uint64
	lastFlushTime  time.Time
}

// NewBatchWriter creates a batch writer and starts its auto-flush loop
func NewBatchWriter(writer repository.AuditWriter, batchSize int, flushInterval time.Duration) *BatchWriter {
	bw := &BatchWriter{
		writer:        writer,
		batchSize:     batchSize,
		flushInterval: flushInterval,
		buffer:        make([]repository.AuditRecord, 0, batchSize),
		stop:          make(chan struct{}),
		lastFlushTime: time.Now(),
	}

	bw.wg.Add(1)
	go bw.autoFlush()

	logger.Infof("✓ Audit batch writer started: %d size, %v interval", batchSize, flushInterval)
	return bw
}

// Add buffers a record and flushes if the batch is full
func (bw *BatchWriter) Add(record repository.AuditRecord) {
	bw.mu.Lock()
	bw.buffer = append(bw.buffer, record)
	shouldFlush := len(bw.buffer) >= bw.batchSize
	bw.mu.Unlock()

	if shouldFlush {
		bw.Flush()
	}
}

// Flush writes all buffered records to the audit store
func (bw *BatchWriter) Flush() {
	bw.mu.Lock()
	if len(bw.buffer) == 0 {
		bw.mu.Unlock()
		return
	}

	toWrite := make([]repository.AuditRecord, len(bw.buffer))
	copy(toWrite, bw.buffer)
	bw.buffer = bw.buffer[:0]
	bw.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startTime := time.Now()

	if err := bw.writer.Write(ctx, toWrite); err != nil {
		// Audit is best-effort: log and drop rather than back-pressure requests
		atomic.AddUint64(&bw.failedBatches, 1)
		logger.Errorf("Audit batch write failed: %d records: %v", len(toWrite), err)
		return
	}

	atomic.AddUint64(&bw.batchesWritten, 1)
	atomic.AddUint64(&bw.recordsWritten, uint64(len(toWrite)))
	bw.lastFlushTime = time.Now()

	logger.Debugf("✓ Flushed %d audit records in %v",
		len(toWrite), time.Since(startTime).Round(time.Millisecond))
}

// Size returns current buffer size
func (bw *BatchWriter) Size() int {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	return len(bw.buffer)
}

// autoFlush periodically flushes the buffer
func (bw *BatchWriter) autoFlush() {
	defer bw.wg.Done()
	ticker := time.NewTicker(bw.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			bw.Flush()
		case <-bw.stop:
			bw.Flush() // Final flush before shutdown
			return
		}
	}
}

// Stats returns writer statistics
func (bw *BatchWriter) Stats() map[string]interface{} {
	return map[string]interface{}{
		"batches_written": atomic.LoadUint64(&bw.batchesWritten),
		"records_written": atomic.LoadUint64(&bw.recordsWritten),
		"failed_batches":  atomic.LoadUint64(&bw.failedBatches),
		"buffer_size":     bw.Size(),
		"last_flush_time": bw.lastFlushTime.Format("15:04:05"),
	}
}

// Close stops the batch writer and flushes remaining records
func (bw *BatchWriter) Close() {
	close(bw.stop)
	bw.wg.Wait()
	logger.Info(fmt.Sprintf("✓ Audit batch writer closed. Total: %d batches, %d records",
		atomic.LoadUint64(&bw.batchesWritten),
		atomic.LoadUint64(&bw.recordsWritten)))
}
