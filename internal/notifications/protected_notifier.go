package notifications

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker open")

type circuitState string

const (
	stateClosed   circuitState = "closed"
	stateOpen     circuitState = "open"
	stateHalfOpen circuitState = "half_open"
)

// ResultObserver receives one outcome per send attempt.
type ResultObserver interface {
	ObserveNotification(kind, result string)
}

type ProtectedNotifierConfig struct {
	Timeout          time.Duration // hard timeout per send
	FailureThreshold int           // consecutive failures to open circuit
	Cooldown         time.Duration // how long to stay open before half-open
	HalfOpenMaxCalls int           // allow N trial calls in half-open
}

// ProtectedNotifier bounds every send with a timeout and stops calling a
// failing provider until the cooldown passes.
type ProtectedNotifier struct {
	inner    Notifier
	cfg      ProtectedNotifierConfig
	observer ResultObserver
	now      func() time.Time

	mu                  sync.Mutex
	state               circuitState
	consecutiveFailures int
	openedAt            time.Time
	halfOpenInFlight    int
}

func NewProtectedNotifier(inner Notifier, cfg ProtectedNotifierConfig, observer ResultObserver) *ProtectedNotifier {
	//defaults
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 15 * time.Second
	}
	if cfg.HalfOpenMaxCalls <= 0 {
		cfg.HalfOpenMaxCalls = 1
	}

	return &ProtectedNotifier{
		inner:    inner,
		cfg:      cfg,
		observer: observer,
		now:      time.Now,
		state:    stateClosed,
	}
}

func (n *ProtectedNotifier) SendRegistrationConfirmation(ctx context.Context, in Notice) error {
	return n.call(ctx, KindRegistrationConfirmation, func(ctx context.Context) error {
		return n.inner.SendRegistrationConfirmation(ctx, in)
	})
}

func (n *ProtectedNotifier) SendUnregistrationNotice(ctx context.Context, in Notice) error {
	return n.call(ctx, KindUnregistrationNotice, func(ctx context.Context) error {
		return n.inner.SendUnregistrationNotice(ctx, in)
	})
}

// State reports the breaker position, mostly for tests and health output.
func (n *ProtectedNotifier) State() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return string(n.state)
}

func (n *ProtectedNotifier) call(ctx context.Context, kind string, send func(context.Context) error) error {
	// fail-fast gate
	if !n.allowRequest() {
		n.observe(kind, "circuit_open")
		return ErrCircuitOpen
	}

	sendCtx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	err := send(sendCtx)
	n.afterRequest(err)

	if err != nil {
		n.observe(kind, "failed")
		return err
	}
	n.observe(kind, "sent")
	return nil
}

func (n *ProtectedNotifier) observe(kind, result string) {
	if n.observer != nil {
		n.observer.ObserveNotification(kind, result)
	}
}

func (n *ProtectedNotifier) allowRequest() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch n.state {
	case stateClosed:
		return true
	case stateOpen:
		// cooldown has passed? move to half open
		if n.now().Sub(n.openedAt) >= n.cfg.Cooldown {
			n.state = stateHalfOpen
			n.halfOpenInFlight = 1
			return true
		}
		return false
	case stateHalfOpen:
		if n.halfOpenInFlight >= n.cfg.HalfOpenMaxCalls {
			return false
		}
		n.halfOpenInFlight++
		return true
	default:
		return true
	}
}

func (n *ProtectedNotifier) afterRequest(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	// half-open call just finished
	if n.state == stateHalfOpen && n.halfOpenInFlight > 0 {
		n.halfOpenInFlight--
	}

	if err == nil {
		n.consecutiveFailures = 0
		n.state = stateClosed
		return
	}

	n.consecutiveFailures++

	// if half-open failed, reopen immediately
	if n.state == stateHalfOpen {
		n.state = stateOpen
		n.openedAt = n.now()
		return
	}

	if n.consecutiveFailures >= n.cfg.FailureThreshold {
		n.state = stateOpen
		n.openedAt = n.now()
	}
}
