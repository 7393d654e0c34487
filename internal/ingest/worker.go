package ingest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wolfman30/vitalwatch/pkg/logging"
)

const (
	defaultWorkerCount     = 2
	defaultReceiveWaitSecs = 20
	defaultReceiveBatch    = 10
	maxWaitSeconds         = 20
	maxReceiveBatchSize    = 10
	deleteTimeoutSeconds   = 5
)

type workerConfig struct {
	workers          int
	receiveWaitSecs  int
	receiveBatchSize int
	maxReceives      int
}

// WorkerOption customizes worker behavior.
type WorkerOption func(*workerConfig)

// WithWorkerCount sets the number of concurrent consumer goroutines.
func WithWorkerCount(count int) WorkerOption {
	return func(cfg *workerConfig) {
		if count > 0 {
			cfg.workers = count
		}
	}
}

// WithReceiveWaitSeconds sets the long-poll wait duration.
func WithReceiveWaitSeconds(seconds int) WorkerOption {
	return func(cfg *workerConfig) {
		if seconds < 0 {
			return
		}
		if seconds > maxWaitSeconds {
			seconds = maxWaitSeconds
		}
		cfg.receiveWaitSecs = seconds
	}
}

// WithReceiveBatchSize sets how many messages to fetch per poll.
func WithReceiveBatchSize(size int) WorkerOption {
	return func(cfg *workerConfig) {
		if size <= 0 {
			return
		}
		if size > maxReceiveBatchSize {
			size = maxReceiveBatchSize
		}
		cfg.receiveBatchSize = size
	}
}

// WithMaxReceives drops an event that keeps failing after it has been
// received n times. Zero leaves retries to the queue's redrive policy.
func WithMaxReceives(n int) WorkerOption {
	return func(cfg *workerConfig) {
		if n >= 0 {
			cfg.maxReceives = n
		}
	}
}

// Worker consumes ingestion events from a queue.
type Worker struct {
	handler *Handler
	queue   queueClient
	logger  *logging.Logger
	cfg     workerConfig
	wg      sync.WaitGroup
}

func NewWorker(handler *Handler, queue queueClient, logger *logging.Logger, opts ...WorkerOption) *Worker {
	if handler == nil {
		panic("ingest: handler cannot be nil")
	}
	if queue == nil {
		panic("ingest: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	cfg := workerConfig{
		workers:          defaultWorkerCount,
		receiveWaitSecs:  defaultReceiveWaitSecs,
		receiveBatchSize: defaultReceiveBatch,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Worker{handler: handler, queue: queue, logger: logger, cfg: cfg}
}

// Start launches worker goroutines until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	for i := 0; i < w.cfg.workers; i++ {
		w.wg.Add(1)
		go w.run(ctx, i+1)
	}
}

// Wait blocks until all worker goroutines exit.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context, workerID int) {
	defer w.wg.Done()
	w.logger.Debug("ingest worker started", "worker_id", workerID)

	backoff := time.Second
	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("ingest worker stopping", "worker_id", workerID)
			return
		default:
		}

		messages, err := w.queue.Receive(ctx, w.cfg.receiveBatchSize, w.cfg.receiveWaitSecs)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			w.logger.Error("failed to receive vitals events", "error", err, "worker_id", workerID)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 5*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		for _, msg := range messages {
			w.handleMessage(ctx, msg)
		}
	}
}

// handleMessage deletes the message unless the failure is worth a redelivery.
func (w *Worker) handleMessage(ctx context.Context, msg queueMessage) {
	_, err := w.handler.HandleBody(ctx, msg.Body)
	if err != nil {
		logger := w.logger.ForPatient(msg.PatientID).With("msg_id", msg.ID, "receive_count", msg.ReceiveCount)
		switch {
		case Permanent(err):
			logger.Error("dropping unprocessable vitals event", "error", err)
		case w.cfg.maxReceives > 0 && msg.ReceiveCount >= w.cfg.maxReceives:
			logger.Error("giving up on vitals event after repeated failures", "error", err)
		default:
			logger.Error("vitals event failed, leaving for redelivery", "error", err)
			return
		}
	}
	w.deleteMessage(context.Background(), msg.ReceiptHandle)
}

func (w *Worker) deleteMessage(ctx context.Context, receiptHandle string) {
	if receiptHandle == "" {
		return
	}
	deleteCtx, cancel := context.WithTimeout(ctx, deleteTimeoutSeconds*time.Second)
	defer cancel()
	if err := w.queue.Delete(deleteCtx, receiptHandle); err != nil {
		w.logger.Error("failed to delete vitals event", "error", err)
	}
}
