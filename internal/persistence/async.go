package persistence

import (
	"context"
	"errors"
	"sync"

	"github.com/folioforge/go-folio/internal/lifecycle"
	"github.com/folioforge/go-folio/internal/logging"
	"github.com/folioforge/go-folio/pkg/interfaces"
)

const defaultQueueSize = 64

var (
	ErrQueueFull   = errors.New("persistence: async mirror queue is full")
	ErrMirrorClose = errors.New("persistence: async mirror is closed")
)

// AsyncMirror hands changes to a single background goroutine so store
// mutations never wait on I/O. Changes are applied in the order received.
// Failures of the wrapped mirror are reported to the desync recorder.
type AsyncMirror struct {
	next   lifecycle.Mirror
	desync lifecycle.DesyncRecorder
	logger interfaces.Logger

	queue chan asyncItem
	done  chan struct{}

	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

type asyncItem struct {
	ctx     context.Context
	change  lifecycle.Change
	barrier chan struct{}
}

// AsyncOption configures an AsyncMirror.
type AsyncOption func(*asyncConfig)

type asyncConfig struct {
	size   int
	desync lifecycle.DesyncRecorder
	logger interfaces.Logger
}

func WithQueueSize(size int) AsyncOption {
	return func(c *asyncConfig) {
		if size > 0 {
			c.size = size
		}
	}
}

func WithAsyncDesyncRecorder(recorder lifecycle.DesyncRecorder) AsyncOption {
	return func(c *asyncConfig) {
		c.desync = recorder
	}
}

func WithAsyncLogger(logger interfaces.Logger) AsyncOption {
	return func(c *asyncConfig) {
		c.logger = logging.Ensure(logger)
	}
}

// NewAsyncMirror starts the dispatch goroutine. Call Close to drain it.
func NewAsyncMirror(next lifecycle.Mirror, opts ...AsyncOption) *AsyncMirror {
	cfg := asyncConfig{size: defaultQueueSize, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(&cfg)
	}
	m := &AsyncMirror{
		next:   next,
		desync: cfg.desync,
		logger: cfg.logger,
		queue:  make(chan asyncItem, cfg.size),
		done:   make(chan struct{}),
	}
	go m.run()
	return m
}

// Apply enqueues the change. It fails only when the queue is full or closed,
// in which case the caller records the desync.
func (m *AsyncMirror) Apply(ctx context.Context, change lifecycle.Change) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrMirrorClose
	}
	select {
	case m.queue <- asyncItem{ctx: context.WithoutCancel(ctx), change: change}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Flush waits until every change queued before the call has been applied
// or ctx ends.
func (m *AsyncMirror) Flush(ctx context.Context) error {
	barrier := make(chan struct{})
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		<-m.done
		return nil
	}
	select {
	case m.queue <- asyncItem{barrier: barrier}:
		m.mu.RUnlock()
	case <-ctx.Done():
		m.mu.RUnlock()
		return ctx.Err()
	}
	select {
	case <-barrier:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting changes and waits for the queue to drain.
func (m *AsyncMirror) Close() error {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		close(m.queue)
		m.mu.Unlock()
	})
	<-m.done
	return nil
}

func (m *AsyncMirror) run() {
	defer close(m.done)
	for item := range m.queue {
		if item.barrier != nil {
			close(item.barrier)
			continue
		}
		m.dispatch(item)
	}
}

func (m *AsyncMirror) dispatch(item asyncItem) {
	err := m.next.Apply(item.ctx, item.change)
	if err == nil {
		return
	}
	m.logger.Warn("persistence.async.apply_failed", "op", item.change.Op, "error", err)
	if m.desync == nil {
		return
	}
	if recErr := m.desync.RecordDesync(item.ctx, item.change, err); recErr != nil {
		m.logger.Error("persistence.async.desync_record_failed", "op", item.change.Op, "error", recErr)
	}
}
