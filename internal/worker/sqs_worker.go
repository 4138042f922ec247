package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kingrain94/tenant-auth-api/internal/domain"
	"github.com/kingrain94/tenant-auth-api/internal/metrics"
	"github.com/kingrain94/tenant-auth-api/internal/repository"
	"github.com/kingrain94/tenant-auth-api/internal/service/queue"
	"github.com/kingrain94/tenant-auth-api/pkg/logger"
)

// EventQueue is the consumer side of the security event queue
type EventQueue interface {
	ReceiveMessages(ctx context.Context, maxMessages int32, waitTimeSeconds int32) ([]queue.ReceivedMessage, error)
	DeleteMessage(ctx context.Context, receiptHandle *string) error
}

// SQSWorker moves security events from the queue into the per-tenant
// OpenSearch indices.
type SQSWorker struct {
	queue        EventQueue
	events       repository.SecurityEventRepository
	metrics      *metrics.Collector
	logger       *logger.Logger
	workerCount  int
	pollInterval time.Duration
	maxMessages  int32
	waitTime     int32
	shutdownChan chan struct{}
	waitGroup    sync.WaitGroup
}

func NewSQSWorker(
	queue EventQueue,
	events repository.SecurityEventRepository,
	metrics *metrics.Collector,
	logger *logger.Logger,
	workerCount int,
	pollInterval time.Duration,
) *SQSWorker {
	return &SQSWorker{
		queue:        queue,
		events:       events,
		metrics:      metrics,
		logger:       logger,
		workerCount:  workerCount,
		pollInterval: pollInterval,
		maxMessages:  10, // Process up to 10 messages at a time
		waitTime:     20, // Long polling: wait up to 20 seconds for messages
		shutdownChan: make(chan struct{}),
	}
}

func (w *SQSWorker) Start() {
	w.logger.Info("Starting SQS workers...")

	for i := 0; i < w.workerCount; i++ {
		w.waitGroup.Add(1)
		go w.runWorker(i)
	}
}

func (w *SQSWorker) Stop() {
	w.logger.Info("Stopping SQS workers...")
	close(w.shutdownChan)
	w.waitGroup.Wait()
	w.logger.Info("All SQS workers stopped")
}

func (w *SQSWorker) runWorker(workerID int) {
	defer w.waitGroup.Done()

	w.logger.Infof("Worker %d started", workerID)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.shutdownChan:
			w.logger.Infof("Worker %d shutting down", workerID)
			return
		case <-ticker.C:
			if err := w.processMessages(context.Background()); err != nil {
				w.logger.Errorf("Worker %d failed to process messages: %v", workerID, err)
			}
		}
	}
}

// processMessages indexes one received batch with a single bulk request.
// Messages are deleted only after the bulk request succeeded; bodies that
// cannot be decoded or carry an unknown type are dropped right away.
func (w *SQSWorker) processMessages(ctx context.Context) error {
	messages, err := w.queue.ReceiveMessages(ctx, w.maxMessages, w.waitTime)
	if err != nil {
		return fmt.Errorf("failed to receive messages: %w", err)
	}

	var (
		events  []domain.SecurityEvent
		handles []*string
	)
	for _, msg := range messages {
		if msg.Err != nil {
			w.logger.Warn("Dropping undecodable message", zap.Error(msg.Err))
			w.deleteMessage(ctx, msg.ReceiptHandle)
			continue
		}
		if msg.Message.Type != queue.MessageTypeSecurityEvent {
			w.logger.Warn("Dropping message of unknown type", zap.String("type", string(msg.Message.Type)))
			w.deleteMessage(ctx, msg.ReceiptHandle)
			continue
		}
		events = append(events, msg.Message.Events...)
		handles = append(handles, msg.ReceiptHandle)
	}

	if len(handles) == 0 {
		return nil
	}

	if len(events) > 0 {
		if err := w.events.BulkIndex(ctx, events); err != nil {
			for _, e := range events {
				w.metrics.RecordSecurityEvent(string(e.Type), "index_failed")
			}
			return fmt.Errorf("failed to index %d security events: %w", len(events), err)
		}
		for _, e := range events {
			w.metrics.RecordSecurityEvent(string(e.Type), "indexed")
		}
	}

	for _, handle := range handles {
		w.deleteMessage(ctx, handle)
	}
	return nil
}

func (w *SQSWorker) deleteMessage(ctx context.Context, handle *string) {
	if err := w.queue.DeleteMessage(ctx, handle); err != nil {
		w.logger.Errorf("Failed to delete message: %v", err)
	}
}
