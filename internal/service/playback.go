package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/hifi/internal/domain"
	"github.com/mmcdole/hifi/internal/manifest"
)

// mediaQueue abstracts the player queue controller (consumer-defined interface)
type mediaQueue interface {
	QueueURL(ctx context.Context, url string) (domain.LoadMode, error)
	QueuePlaylistDocument(ctx context.Context, document string) (domain.LoadMode, error)
	PlaylistPath() string
}

// recorder persists queued tracks (consumer-defined interface)
type recorder interface {
	Record(rec domain.PlayRecord) error
}

// PlaybackService resolves tracks to manifests and queues them on the player
type PlaybackService struct {
	manifests domain.ManifestRepository
	queue     mediaQueue
	history   recorder // optional
	logger    *slog.Logger
	now       func() time.Time
}

// NewPlaybackService creates a new playback service. history may be nil.
func NewPlaybackService(
	manifests domain.ManifestRepository,
	queue mediaQueue,
	history recorder,
	logger *slog.Logger,
) *PlaybackService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlaybackService{
		manifests: manifests,
		queue:     queue,
		history:   history,
		logger:    logger,
		now:       time.Now,
	}
}

// Play runs one resolution: quality selection, manifest fetch, decode,
// classification, then queueing. Any failure aborts this track only.
func (s *PlaybackService) Play(ctx context.Context, track domain.Track) (*domain.QueuedMedia, error) {
	quality := SelectQuality(track)
	log := s.logger.With("trackID", track.ID, "quality", quality)

	encoded, err := s.manifests.FetchManifest(ctx, track.ID, quality)
	if err != nil {
		log.Error("failed to fetch manifest", "error", err)
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}

	decoded, err := manifest.Decode(encoded)
	if err != nil {
		log.Error("failed to decode manifest", "error", err, "len", len(encoded))
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	m, err := manifest.Classify(decoded)
	if err != nil {
		log.Warn("unusable manifest", "error", err, "kind", m.Kind)
		return nil, err
	}

	result := &domain.QueuedMedia{
		Track:   track,
		Quality: quality,
		Kind:    m.Kind,
	}

	switch m.Kind {
	case domain.ManifestPlaylistDocument:
		result.Target = s.queue.PlaylistPath()
		result.Mode, err = s.queue.QueuePlaylistDocument(ctx, m.Document)
	case domain.ManifestURLList:
		log.Debug("url manifest", "mimeType", m.MimeType, "codecs", m.Codecs, "urls", len(m.URLs))
		result.Target = m.URLs[0]
		result.Mode, err = s.queue.QueueURL(ctx, result.Target)
	default:
		return nil, domain.ErrUnrecognizedManifest
	}
	if err != nil {
		return nil, fmt.Errorf("queue track: %w", err)
	}

	log.Info("track queued", "title", track.Title, "kind", m.Kind, "mode", result.Mode)

	if s.history != nil {
		if err := s.history.Record(domain.NewPlayRecord(result, s.now())); err != nil {
			log.Warn("failed to record history", "error", err)
		}
	}

	return result, nil
}
