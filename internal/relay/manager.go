package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/storm-bulletin-notifier/internal/domain"
	"github.com/couchcryptid/storm-bulletin-notifier/internal/observability"
)

// State is the connection lifecycle phase. ShuttingDown and Closed are
// terminal: once shutdown starts no other transition wins.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateShuttingDown
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateShuttingDown:
		return "shutting_down"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Conn is an established watcher connection delivering messages in order.
type Conn interface {
	Read() (domain.Message, error)
	Close() error
}

// Dialer opens a watcher connection.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context) (Conn, error)

// Dial calls f.
func (f DialerFunc) Dial(ctx context.Context) (Conn, error) { return f(ctx) }

// Handler consumes decoded watcher messages.
type Handler interface {
	Handle(ctx context.Context, msg domain.Message)
}

// Manager keeps one connection to the watcher alive: dial, read until the
// transport fails, broadcast the loss, wait out the retry delay, dial again.
// Context cancellation ends the loop with a farewell broadcast instead of a
// reconnect.
type Manager struct {
	dialer     Dialer
	handler    Handler
	sender     Sender
	allHooks   []string
	retryDelay time.Duration
	clock      clockwork.Clock
	logger     *slog.Logger
	metrics    *observability.Metrics

	shutdownOnce sync.Once

	mu           sync.Mutex
	state        State
	conn         Conn
	shuttingDown bool
}

// NewManager creates a Manager over the given transport and dispatch.
func NewManager(dialer Dialer, handler Handler, sender Sender, allHooks []string, retryDelay time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Manager {
	return &Manager{
		dialer:     dialer,
		handler:    handler,
		sender:     sender,
		allHooks:   allHooks,
		retryDelay: retryDelay,
		clock:      clockwork.NewRealClock(),
		logger:     logger,
		metrics:    metrics,
	}
}

// SetClock replaces the retry timer clock. Tests inject a fake clock.
func (m *Manager) SetClock(c clockwork.Clock) {
	m.clock = c
}

// State reports the current lifecycle phase.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CheckReadiness returns nil while connected to the watcher, or an error
// describing the current phase.
func (m *Manager) CheckReadiness(_ context.Context) error {
	if s := m.State(); s != StateConnected {
		return fmt.Errorf("not connected to watcher (state %s)", s)
	}
	return nil
}

// Run drives the connection loop until ctx is cancelled. It always returns
// nil: transport failures are retried, not surfaced.
func (m *Manager) Run(ctx context.Context) error {
	// A blocked Read only unblocks when the socket closes, so shutdown has
	// to reach in from the side.
	stop := context.AfterFunc(ctx, func() { m.beginShutdown(ctx) })
	defer stop()

	for {
		if m.stopping(ctx) {
			return m.finish(ctx)
		}

		m.setState(StateConnecting)
		conn, err := m.dialer.Dial(ctx)
		if err != nil {
			if m.stopping(ctx) {
				return m.finish(ctx)
			}
			m.logger.Error("watcher dial failed", "error", err, "retry_in", m.retryDelay)
			m.setState(StateDisconnected)
			m.sender.Send(ctx, m.allHooks, noticeConnectionLost)
			if m.waitRetry(ctx) {
				m.metrics.Reconnects.Inc()
			}
			continue
		}

		if !m.adopt(conn) {
			conn.Close()
			return m.finish(ctx)
		}
		m.metrics.Connected.Set(1)
		m.logger.Info("connected to watcher, awaiting messages")
		m.sender.Send(ctx, m.allHooks, noticeConnected)

		err = m.readLoop(ctx, conn)

		m.metrics.Connected.Set(0)
		m.release()
		conn.Close()

		if m.stopping(ctx) {
			m.logger.Info("socket closed, shutting down")
			return m.finish(ctx)
		}

		m.logger.Error("watcher connection lost", "error", err, "retry_in", m.retryDelay)
		m.setState(StateDisconnected)
		m.sender.Send(ctx, m.allHooks, noticeConnectionLost)
		if m.waitRetry(ctx) {
			m.metrics.Reconnects.Inc()
		}
	}
}

// readLoop dispatches messages until the transport fails. A frame that fails
// to decode is logged and dropped; the stream continues.
func (m *Manager) readLoop(ctx context.Context, conn Conn) error {
	for {
		msg, err := conn.Read()
		if err != nil {
			if errors.Is(err, domain.ErrMalformedMessage) {
				m.metrics.DecodeErrors.Inc()
				m.logger.Error("message receive failed", "error", err)
				continue
			}
			return err
		}
		m.handler.Handle(ctx, msg)
	}
}

// beginShutdown runs exactly once; concurrent callers block until the
// farewell is out. The parent context is already dead by the time this runs,
// hence WithoutCancel for the final broadcast.
func (m *Manager) beginShutdown(ctx context.Context) {
	m.shutdownOnce.Do(func() {
		m.mu.Lock()
		m.shuttingDown = true
		m.state = StateShuttingDown
		conn := m.conn
		m.mu.Unlock()

		m.logger.Info("termination signal received, shutting down")
		m.sender.Send(context.WithoutCancel(ctx), m.allHooks, noticeNotifierShutdown)
		if conn != nil {
			conn.Close()
		}
	})
}

// finish makes sure the farewell went out, marks the manager closed, and
// ends the run loop.
func (m *Manager) finish(ctx context.Context) error {
	m.beginShutdown(ctx)
	m.mu.Lock()
	m.state = StateClosed
	m.mu.Unlock()
	return nil
}

// stopping reports whether the loop should wind down instead of retrying.
func (m *Manager) stopping(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shuttingDown
}

// waitRetry blocks for the retry delay. Returns false if shutdown
// interrupted the wait.
func (m *Manager) waitRetry(ctx context.Context) bool {
	timer := m.clock.NewTimer(m.retryDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}

// adopt records the live connection unless shutdown already started.
func (m *Manager) adopt(conn Conn) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shuttingDown {
		return false
	}
	m.conn = conn
	m.state = StateConnected
	return true
}

func (m *Manager) release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conn = nil
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shuttingDown {
		return
	}
	m.state = s
}
