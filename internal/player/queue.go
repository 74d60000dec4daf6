package player

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mmcdole/hifi/internal/domain"
)

// controlSurface is the part of the session the queue needs (consumer-defined interface)
type controlSurface interface {
	IsIdle(ctx context.Context) (bool, error)
	LoadFile(ctx context.Context, target string, mode domain.LoadMode) error
}

// Queue decides replace vs. append and hands media references to the player
type Queue struct {
	player       controlSurface
	playlistPath string
	logger       *slog.Logger
}

// NewQueue creates a queue controller. playlistPath is the fixed hand-off file
// for playlist documents; each queued document replaces the previous one.
func NewQueue(player controlSurface, playlistPath string, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		player:       player,
		playlistPath: playlistPath,
		logger:       logger,
	}
}

// PlaylistPath returns the hand-off file used for playlist documents
func (q *Queue) PlaylistPath() string {
	return q.playlistPath
}

// QueueURL replaces the current item when the player is idle and appends otherwise.
// The idle read and the load are not atomic: playback may finish in between,
// in which case the URL is appended to an idle player. That outcome is accepted.
func (q *Queue) QueueURL(ctx context.Context, url string) (domain.LoadMode, error) {
	idle, err := q.player.IsIdle(ctx)
	if err != nil {
		q.logger.Error("failed to read player idle state", "error", err)
		return "", fmt.Errorf("read idle state: %w", err)
	}

	mode := domain.LoadAppend
	if idle {
		mode = domain.LoadReplace
	}

	if err := q.player.LoadFile(ctx, url, mode); err != nil {
		q.logger.Error("loadfile failed", "error", err, "target", url, "mode", mode)
		return "", fmt.Errorf("load %s: %w", mode, err)
	}

	q.logger.Info("queued media", "target", url, "mode", mode)
	return mode, nil
}

// QueuePlaylistDocument materializes the document at the playlist path and queues that path
func (q *Queue) QueuePlaylistDocument(ctx context.Context, document string) (domain.LoadMode, error) {
	if err := writePlaylist(q.playlistPath, document); err != nil {
		q.logger.Error("failed to write playlist document", "error", err, "path", q.playlistPath)
		return "", err
	}
	return q.QueueURL(ctx, q.playlistPath)
}

// writePlaylist replaces path with document plus a trailing newline.
// The content is synced to a sibling temp file and renamed into place,
// so a reader sees either the previous file or the complete new one.
func writePlaylist(path, document string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create playlist directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create playlist file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // No-op after a successful rename

	if _, err := tmp.WriteString(document + "\n"); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write playlist file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync playlist file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close playlist file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set playlist permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace playlist file: %w", err)
	}
	return nil
}
