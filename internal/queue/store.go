// Package queue appends serialized jobs to a Redis list. The Store owns the
// single client shared by every request and its connect/close lifecycle.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
)

// DefaultName is the list the email worker consumes.
const DefaultName = "email_queue"

// ErrClosed is returned by Append once Close has been called.
var ErrClosed = errors.New("queue store closed")

// ConnectionError is returned when the startup ping fails.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("queue: connect %s: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// AppendError is returned when a push to the named list fails.
type AppendError struct {
	Queue string
	Err   error
}

func (e *AppendError) Error() string {
	return fmt.Sprintf("queue: append to %s: %v", e.Queue, e.Err)
}

func (e *AppendError) Unwrap() error { return e.Err }

// State is the connection lifecycle state.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateClosing
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
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Store pushes jobs onto Redis lists. It is safe for concurrent use; the
// underlying client multiplexes commands over its own connection pool.
type Store struct {
	client *redis.Client
	addr   string
	logger *slog.Logger

	state     atomic.Int32
	closeOnce sync.Once
	closeErr  error
}

// New creates a Store. No network traffic happens until Connect or Append.
func New(opts *redis.Options, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		client: redis.NewClient(opts),
		addr:   opts.Addr,
		logger: logger,
	}
}

// State reports the current connection state.
func (s *Store) State() State { return State(s.state.Load()) }

// Connect pings the store once. A failure leaves the Store disconnected but
// usable: a later successful Append marks it connected.
func (s *Store) Connect(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(StateDisconnected), int32(StateConnecting)) {
		return nil
	}
	if err := s.client.Ping(ctx).Err(); err != nil {
		s.state.CompareAndSwap(int32(StateConnecting), int32(StateDisconnected))
		cerr := &ConnectionError{Addr: s.addr, Err: err}
		s.logger.Error("queue store unreachable, continuing degraded", "addr", s.addr, "error", err)
		return cerr
	}
	s.state.CompareAndSwap(int32(StateConnecting), int32(StateConnected))
	s.logger.Info("connected to queue store", "addr", s.addr)
	return nil
}

// Append pushes payload onto the tail of the named list with a single RPUSH.
// Consumers pop from the head, so entries are delivered in push order.
func (s *Store) Append(ctx context.Context, name string, payload []byte) error {
	switch s.State() {
	case StateClosing, StateClosed:
		return &AppendError{Queue: name, Err: ErrClosed}
	}
	n, err := s.client.RPush(ctx, name, payload).Result()
	if err != nil {
		return &AppendError{Queue: name, Err: err}
	}
	if s.state.CompareAndSwap(int32(StateDisconnected), int32(StateConnected)) {
		s.logger.Info("queue store reachable again", "addr", s.addr)
	}
	s.logger.Debug("job appended", "queue", name, "length", n)
	return nil
}

// Len returns the number of entries in the named list.
func (s *Store) Len(ctx context.Context, name string) (int64, error) {
	n, err := s.client.LLen(ctx, name).Result()
	if err != nil {
		return 0, fmt.Errorf("queue: len %s: %w", name, err)
	}
	return n, nil
}

// Ping verifies the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if st := s.State(); st == StateClosing || st == StateClosed {
		return ErrClosed
	}
	return s.client.Ping(ctx).Err()
}

// Close disconnects from the store. Only the first call does any work; later
// calls return the first result.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		s.state.Store(int32(StateClosing))
		s.closeErr = s.client.Close()
		s.state.Store(int32(StateClosed))
		if s.closeErr != nil {
			s.logger.Error("closing queue store", "error", s.closeErr)
			return
		}
		s.logger.Info("queue store closed")
	})
	return s.closeErr
}
