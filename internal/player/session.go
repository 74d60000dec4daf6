// Package player drives a long-lived mpv instance over its JSON IPC socket.
package player

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os/exec"
	"sync"
	"time"

	"github.com/mmcdole/hifi/internal/domain"
)

const (
	// maxMessageSize bounds a single IPC line (track-list events can be large)
	maxMessageSize = 4 << 20
	quitTimeout    = 2 * time.Second
)

// ipcRequest is one line sent to mpv
type ipcRequest struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

// ipcMessage is one line received from mpv: either a reply or an event
type ipcMessage struct {
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
	RequestID *int64          `json:"request_id"`
	Event     string          `json:"event"`
}

// Session is a connection to a single mpv instance.
// It is created once at startup and closed on exit.
type Session struct {
	conn   net.Conn
	proc   *exec.Cmd // nil when attached to an external mpv
	logger *slog.Logger

	// timeout bounds each command so a player that stops replying
	// fails the command instead of blocking the caller
	timeout time.Duration

	writeMu sync.Mutex

	mu      sync.Mutex
	nextID  int64
	pending map[int64]chan ipcMessage
	closed  bool

	done chan struct{}
}

// newSession wraps an established IPC connection and starts reading replies
func newSession(conn net.Conn, proc *exec.Cmd, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		conn:    conn,
		proc:    proc,
		logger:  logger,
		pending: make(map[int64]chan ipcMessage),
		done:    make(chan struct{}),
	}
	go s.readLoop()
	return s
}

// readLoop dispatches replies to waiting commands until the connection ends
func (s *Session) readLoop() {
	defer func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.done)
	}()

	scanner := bufio.NewScanner(s.conn)
	scanner.Buffer(make([]byte, 64*1024), maxMessageSize)

	for scanner.Scan() {
		var msg ipcMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			s.logger.Warn("malformed mpv IPC message", "error", err)
			continue
		}

		if msg.Event != "" {
			s.logger.Debug("mpv event", "event", msg.Event)
			continue
		}
		if msg.RequestID == nil {
			continue
		}

		s.mu.Lock()
		ch, ok := s.pending[*msg.RequestID]
		delete(s.pending, *msg.RequestID)
		s.mu.Unlock()

		if ok {
			ch <- msg
		}
	}

	if err := scanner.Err(); err != nil {
		s.logger.Warn("mpv IPC connection ended", "error", err)
	} else {
		s.logger.Info("mpv IPC connection closed")
	}
}

// Command sends a raw mpv command and waits for its reply data
func (s *Session) Command(ctx context.Context, args ...any) (json.RawMessage, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: empty command", domain.ErrPlayerCommand)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, domain.ErrPlayerUnavailable
	}
	s.nextID++
	id := s.nextID
	ch := make(chan ipcMessage, 1)
	s.pending[id] = ch
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
	}()

	line, err := json.Marshal(ipcRequest{Command: args, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPlayerCommand, err)
	}
	line = append(line, '\n')

	if err := s.write(ctx, line); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPlayerUnavailable, err)
	}

	s.logger.Debug("mpv command", "command", args[0], "requestID", id)

	select {
	case msg := <-ch:
		if msg.Error != "success" {
			return nil, fmt.Errorf("%w: %v: %s", domain.ErrPlayerCommand, args[0], msg.Error)
		}
		return msg.Data, nil
	case <-s.done:
		return nil, domain.ErrPlayerUnavailable
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v: no reply: %w", domain.ErrPlayerCommand, args[0], ctx.Err())
		}
		return nil, ctx.Err()
	}
}

// write sends one line, honoring the context deadline
func (s *Session) write(ctx context.Context, line []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	deadline, _ := ctx.Deadline()
	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	_, err := s.conn.Write(line)
	return err
}

// GetProperty reads an mpv property into dest
func (s *Session) GetProperty(ctx context.Context, name string, dest any) error {
	data, err := s.Command(ctx, "get_property", name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("%w: property %s: %v", domain.ErrPlayerCommand, name, err)
	}
	return nil
}

// SetProperty sets an mpv property
func (s *Session) SetProperty(ctx context.Context, name string, value any) error {
	_, err := s.Command(ctx, "set_property", name, value)
	return err
}

// IsIdle reports mpv's idle-active property: true when nothing is loaded or playing
func (s *Session) IsIdle(ctx context.Context) (bool, error) {
	var idle bool
	if err := s.GetProperty(ctx, "idle-active", &idle); err != nil {
		return false, err
	}
	return idle, nil
}

// LoadFile issues loadfile for a URL or local path with the given mode
func (s *Session) LoadFile(ctx context.Context, target string, mode domain.LoadMode) error {
	_, err := s.Command(ctx, "loadfile", target, string(mode))
	return err
}

// Done is closed when the IPC connection ends
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close ends the session. A spawned mpv is asked to quit and then reaped.
func (s *Session) Close() error {
	if s.proc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), quitTimeout)
		if _, err := s.Command(ctx, "quit"); err != nil {
			s.logger.Debug("mpv quit command failed", "error", err)
		}
		cancel()
	}

	err := s.conn.Close()
	<-s.done

	if s.proc != nil {
		reap(s.proc, quitTimeout, s.logger)
	}
	return err
}
