package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrQueueFull is returned by TryEnqueue when the buffer has no free slot.
var ErrQueueFull = errors.New("queue full")

// ErrQueueStopped is returned when enqueueing before Start or after Stop.
var ErrQueueStopped = errors.New("queue stopped")

// Handler processes one queued item.
type Handler[T any] func(context.Context, T) error

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

type envelope[T any] struct {
	item    T
	attempt int
}

// Queue is an in-memory work queue drained by a fixed set of goroutines.
// Stop lets workers finish everything already buffered.
type Queue[T any] struct {
	name    string
	handler Handler[T]

	workers    int
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger

	items   chan envelope[T]
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.RWMutex
	started bool
	stopped bool
}

// NewQueue builds a new queue with the provided handler.
func NewQueue[T any](name string, handler Handler[T], cfg QueueConfig) *Queue[T] {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 64
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 100 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue[T]{
		name:       name,
		handler:    handler,
		workers:    cfg.Workers,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
		items:      make(chan envelope[T], cfg.BufferSize),
	}
}

// Start launches the workers. Later calls are no-ops.
func (q *Queue[T]) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.started = true
	q.logger.Info("queue started", zap.String("queue", q.name), zap.Int("workers", q.workers))
}

// Stop refuses new items, waits for buffered ones to be handled and then
// releases the workers.
func (q *Queue[T]) Stop() {
	q.mu.Lock()
	if !q.started || q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	close(q.items)
	q.mu.Unlock()

	q.wg.Wait()
	q.cancel()
	q.logger.Info("queue stopped", zap.String("queue", q.name))
}

// TryEnqueue hands item to the workers without blocking.
func (q *Queue[T]) TryEnqueue(item T) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if !q.started || q.stopped {
		return fmt.Errorf("queue %s: %w", q.name, ErrQueueStopped)
	}
	select {
	case q.items <- envelope[T]{item: item}:
		return nil
	default:
		return fmt.Errorf("queue %s: %w", q.name, ErrQueueFull)
	}
}

func (q *Queue[T]) worker() {
	defer q.wg.Done()
	for env := range q.items {
		q.process(env)
	}
}

func (q *Queue[T]) process(env envelope[T]) {
	for {
		err := q.handler(q.ctx, env.item)
		if err == nil {
			return
		}
		env.attempt++
		if env.attempt > q.maxRetries {
			q.logger.Error("queue item dropped after retries", zap.String("queue", q.name), zap.Int("attempts", env.attempt), zap.Error(err))
			return
		}
		q.logger.Warn("queue item failed, retrying", zap.String("queue", q.name), zap.Int("attempt", env.attempt), zap.Error(err))
		time.Sleep(q.retryDelay * time.Duration(env.attempt))
	}
}
