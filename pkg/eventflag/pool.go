package eventflag

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/randalmurphal/eventflag/pkg/eventflag/observability"
)

// NewUID returns a fresh correlation uid for Pool registrations.
func NewUID() string {
	return fmt.Sprintf("evt-%s", uuid.New().String()[:8])
}

// Pool tracks in-flight latches by correlation uid.
//
// The typical shape is request/reply: the requesting side registers a uid
// and waits, and whoever observes the reply resolves that uid with the
// payload. Resolving removes the entry, so each uid is consumed exactly
// once.
type Pool struct {
	mu      sync.Mutex
	pending map[string]*Latch[[]byte]
	closed  bool

	logger *slog.Logger
	spans  observability.SpanManager
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithPoolLogger sets the logger for registration and resolution events.
// A nil logger (the default) disables logging.
func WithPoolLogger(logger *slog.Logger) PoolOption {
	return func(p *Pool) {
		p.logger = logger
	}
}

// WithPoolTracer sets the span manager used to trace keyed waits.
// Default: observability.NoopSpanManager{}
func WithPoolTracer(spans observability.SpanManager) PoolOption {
	return func(p *Pool) {
		if spans != nil {
			p.spans = spans
		}
	}
}

// NewPool creates an empty pool.
func NewPool(opts ...PoolOption) *Pool {
	p := &Pool{
		pending: make(map[string]*Latch[[]byte]),
		spans:   observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Register creates a latch for uid. The uid must be unique among pending
// waits; use NewUID to generate one.
func (p *Pool) Register(uid string) (*Latch[[]byte], error) {
	if uid == "" {
		return nil, ErrUIDRequired
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPoolClosed
	}
	if _, exists := p.pending[uid]; exists {
		return nil, fmt.Errorf("register %q: %w", uid, ErrDuplicateUID)
	}

	latch := NewLatch[[]byte]()
	p.pending[uid] = latch

	if p.logger != nil {
		p.logger.Debug("wait registered", slog.String("uid", uid))
	}
	return latch, nil
}

// Resolve delivers a payload to the wait registered under uid and removes
// it from the pool.
func (p *Pool) Resolve(uid string, payload []byte) error {
	latch, err := p.take(uid)
	if err != nil {
		return err
	}

	latch.Resolve(payload)
	if p.logger != nil {
		p.logger.Debug("wait resolved",
			slog.String("uid", uid),
			slog.Int("payload_bytes", len(payload)),
		)
	}
	return nil
}

// Fail delivers an error to the wait registered under uid and removes it
// from the pool.
func (p *Pool) Fail(uid string, cause error) error {
	latch, err := p.take(uid)
	if err != nil {
		return err
	}

	latch.Fail(cause)
	if p.logger != nil {
		p.logger.Debug("wait failed",
			slog.String("uid", uid),
			slog.String("error", cause.Error()),
		)
	}
	return nil
}

// Wait blocks on the latch registered under uid until it is resolved,
// failed, or ctx is done. The wait is traced as a span.
func (p *Pool) Wait(ctx context.Context, uid string) ([]byte, error) {
	p.mu.Lock()
	latch, exists := p.pending[uid]
	p.mu.Unlock()

	if !exists {
		return nil, fmt.Errorf("wait %q: %w", uid, ErrNotFound)
	}

	ctx, span := p.spans.StartWaitSpan(ctx, uid)
	payload, err := latch.Wait(ctx)
	p.spans.EndSpanWithError(span, err)
	return payload, err
}

// Forget drops the wait registered under uid without resolving it. Any
// goroutine blocked on its latch keeps waiting; Forget only ends the
// pool's tracking.
func (p *Pool) Forget(uid string) {
	p.mu.Lock()
	delete(p.pending, uid)
	p.mu.Unlock()
}

// Len returns the number of pending waits.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Close fails every pending wait with ErrPoolClosed and rejects further
// registrations. Idempotent.
func (p *Pool) Close() {
	p.mu.Lock()
	pending := p.pending
	p.pending = make(map[string]*Latch[[]byte])
	p.closed = true
	p.mu.Unlock()

	for uid, latch := range pending {
		latch.Fail(ErrPoolClosed)
		if p.logger != nil {
			p.logger.Debug("wait failed", slog.String("uid", uid),
				slog.String("error", ErrPoolClosed.Error()))
		}
	}
}

// take removes and returns the latch for uid.
func (p *Pool) take(uid string) (*Latch[[]byte], error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	latch, exists := p.pending[uid]
	if !exists {
		return nil, fmt.Errorf("%q: %w", uid, ErrNotFound)
	}
	delete(p.pending, uid)
	return latch, nil
}
