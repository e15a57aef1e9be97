package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var (
	ErrQueueFull       = errors.New("event queue full")
	ErrPublisherClosed = errors.New("event publisher closed")
)

// AsyncConfig bounds the background delivery of events
type AsyncConfig struct {
	// Buffer is the number of events held while the broker is slow; defaults to 256
	Buffer  int
	// Timeout bounds each delivery to the wrapped publisher; defaults to 5s
	Timeout time.Duration
}

// AsyncPublisher hands events to a background worker. Publish never waits on the broker:
// it enqueues or, when the buffer is full, drops the event and returns ErrQueueFull.
type AsyncPublisher struct {
	next    EventPublisher
	queue   chan *Event
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewAsyncPublisher(next EventPublisher, cfg AsyncConfig, logger *slog.Logger) *AsyncPublisher {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 256
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &AsyncPublisher{
		next:    next,
		queue:   make(chan *Event, cfg.Buffer),
		timeout: cfg.Timeout,
		logger:  logger,
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *AsyncPublisher) Publish(ctx context.Context, event *Event) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPublisherClosed
	}
	select {
	case p.queue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

func (p *AsyncPublisher) run() {
	defer close(p.done)
	for event := range p.queue {
		p.deliver(event)
	}
}

func (p *AsyncPublisher) deliver(event *Event) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.next.Publish(ctx, event); err != nil {
		p.logger.Warn("Failed to deliver event", "event_id", event.ID, "type", event.Type, "error", err)
	}
}

// Close stops accepting events, delivers what is queued and closes the wrapped publisher
func (p *AsyncPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.done
	return p.next.Close()
}
