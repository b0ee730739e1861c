// Package events delivers screening progress notifications without ever
// blocking the pipeline that emits them.
package events

import (
	"context"
	stdErrors "errors"
	"sync"
	"sync/atomic"
	"time"

	"resumescreen/internal/errors"
)

// Milestone event names
const (
	ResumeStarted   = "resume.started"
	ResumeParsed    = "resume.parsed"
	ResumeAnalyzing = "resume.analyzing"
	ResumeCompleted = "resume.completed"
	ResumeFailed    = "resume.failed"

	BatchStarted   = "batch.started"
	BatchProgress  = "batch.progress"
	BatchCompleted = "batch.completed"
)

// ResumeProgress is the payload of single-resume events
type ResumeProgress struct {
	ResumeID string `json:"resumeId"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`
}

// BatchItemProgress is the payload of batch events
type BatchItemProgress struct {
	BatchID  string `json:"batchId"`
	Current  int    `json:"current"`
	Total    int    `json:"total"`
	FileName string `json:"fileName,omitempty"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`
}

// Emitter sends one named event
type Emitter interface {
	Emit(ctx context.Context, name string, payload any) error
}

// Envelope is the wire form of an event
type Envelope struct {
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// LogEmitter writes events to the structured log
type LogEmitter struct {
	logger *errors.Logger
}

// NewLogEmitter creates an emitter that logs at debug level
func NewLogEmitter(logger *errors.Logger) *LogEmitter {
	return &LogEmitter{logger: logger}
}

// Emit logs the event
func (e *LogEmitter) Emit(_ context.Context, name string, payload any) error {
	e.logger.Debug("Progress event", "event", name, "payload", payload)
	return nil
}

// MultiEmitter fans an event out to several emitters and joins their errors
type MultiEmitter []Emitter

// Emit calls every emitter even when earlier ones fail
func (m MultiEmitter) Emit(ctx context.Context, name string, payload any) error {
	var errs []error
	for _, e := range m {
		if err := e.Emit(ctx, name, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return stdErrors.Join(errs...)
}

// NopEmitter discards every event
type NopEmitter struct{}

// Emit does nothing
func (NopEmitter) Emit(context.Context, string, any) error { return nil }

const defaultBufferSize = 64

type queued struct {
	name    string
	payload any
}

// Dispatcher makes any Emitter fire-and-forget. Events go through a buffered
// queue to a single delivery goroutine, so they arrive in emission order.
// When the queue is full the event is dropped with a warning.
type Dispatcher struct {
	target  Emitter
	queue   chan queued
	logger  *errors.Logger
	timeout time.Duration

	mu      sync.RWMutex
	closed  bool
	done    chan struct{}
	dropped atomic.Int64
}

// NewDispatcher starts the delivery goroutine. Close must be called to stop it.
func NewDispatcher(target Emitter, bufferSize int, logger *errors.Logger) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	d := &Dispatcher{
		target:  target,
		queue:   make(chan queued, bufferSize),
		logger:  logger,
		timeout: 10 * time.Second,
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Emit enqueues the event and returns immediately. It never fails.
func (d *Dispatcher) Emit(_ context.Context, name string, payload any) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil
	}

	select {
	case d.queue <- queued{name: name, payload: payload}:
	default:
		d.dropped.Add(1)
		d.logger.Warn("Event queue full, dropping event", "event", name)
	}
	return nil
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for ev := range d.queue {
		// Delivery outlives the request that emitted the event
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := d.target.Emit(ctx, ev.name, ev.payload); err != nil {
			d.logger.LogError(err, "Failed to deliver event", "event", ev.name)
		}
		cancel()
	}
}

// Close stops accepting events and waits until queued ones are delivered
// or ctx expires
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dropped returns how many events were discarded because the queue was full
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}
