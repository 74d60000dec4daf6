package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"time"
)

const dialInterval = 50 * time.Millisecond

// Options configures how the player session is started
type Options struct {
	Command        string   // mpv binary, looked up in PATH
	Args           []string // additional arguments for mpv
	Socket         string   // JSON IPC socket path
	Spawn          bool     // false attaches to an mpv already listening on Socket
	StartupTimeout time.Duration
	CommandTimeout time.Duration // per IPC reply; zero waits on the caller's context only

	// Player-level properties applied once the session is up
	MsgLevel          string // e.g. "all=info"
	LogFile           string
	ProtocolWhitelist string // demuxer-lavf-o value, e.g. "protocol_whitelist=[file,https]"
}

// Start creates the process-wide player session.
// Any failure here is a startup failure; the caller should treat it as fatal.
func Start(ctx context.Context, opts Options, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var proc *exec.Cmd
	if opts.Spawn {
		p, err := spawn(opts, logger)
		if err != nil {
			return nil, err
		}
		proc = p
	}

	conn, err := dialSocket(ctx, opts.Socket, opts.StartupTimeout)
	if err != nil {
		if proc != nil {
			_ = proc.Process.Kill()
			reap(proc, quitTimeout, logger)
		}
		return nil, fmt.Errorf("failed to connect to mpv at %s: %w", opts.Socket, err)
	}

	s := newSession(conn, proc, logger)
	s.timeout = opts.CommandTimeout
	if err := s.configure(ctx, opts); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to configure mpv: %w", err)
	}

	logger.Info("player session started", "socket", opts.Socket, "spawned", proc != nil)
	return s, nil
}

// spawn launches mpv in idle mode with its IPC server on opts.Socket
func spawn(opts Options, logger *slog.Logger) (*exec.Cmd, error) {
	path, err := exec.LookPath(opts.Command)
	if err != nil {
		return nil, fmt.Errorf("player %q not found: %w", opts.Command, err)
	}

	// A stale socket from a previous run would be dialed before mpv recreates it
	if err := os.Remove(opts.Socket); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to remove stale socket: %w", err)
	}

	args := []string{
		"--idle=yes",
		"--no-terminal",
		"--input-ipc-server=" + opts.Socket,
	}
	args = append(args, opts.Args...)

	logger.Info("launching player", "command", path, "args", args)

	cmd := exec.Command(path, args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start player: %w", err)
	}
	return cmd, nil
}

// dialSocket retries until the IPC socket accepts a connection or the timeout expires
func dialSocket(ctx context.Context, path string, timeout time.Duration) (net.Conn, error) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	ticker := time.NewTicker(dialInterval)
	defer ticker.Stop()

	for {
		conn, err := d.DialContext(ctx, "unix", path)
		if err == nil {
			return conn, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w (last error: %v)", ctx.Err(), err)
		case <-ticker.C:
		}
	}
}

// configure applies player-level properties in order, skipping unset ones
func (s *Session) configure(ctx context.Context, opts Options) error {
	props := []struct {
		name  string
		value string
	}{
		{"msg-level", opts.MsgLevel},
		{"log-file", opts.LogFile},
		{"demuxer-lavf-o", opts.ProtocolWhitelist},
	}

	for _, p := range props {
		if p.value == "" {
			continue
		}
		if err := s.SetProperty(ctx, p.name, p.value); err != nil {
			return fmt.Errorf("set %s: %w", p.name, err)
		}
		s.logger.Debug("player property set", "name", p.name, "value", p.value)
	}
	return nil
}

// reap waits for the process to exit, killing it after timeout
func reap(cmd *exec.Cmd, timeout time.Duration, logger *slog.Logger) {
	exited := make(chan error, 1)
	go func() {
		exited <- cmd.Wait()
	}()

	select {
	case err := <-exited:
		if err != nil {
			logger.Debug("player exited", "error", err)
		}
	case <-time.After(timeout):
		logger.Warn("player did not exit, killing", "pid", cmd.Process.Pid)
		_ = cmd.Process.Kill()
		<-exited
	}
}
