package domain

import "context"

// SearchRepository provides free-text search against the catalogue
type SearchRepository interface {
	// Search returns tracks ranked by the remote service
	Search(ctx context.Context, query string) ([]Track, error)
}

// ManifestRepository resolves tracks to encoded manifests
type ManifestRepository interface {
	// FetchManifest returns the encoded manifest for a track at a quality tier
	FetchManifest(ctx context.Context, trackID int64, quality string) (string, error)
}

// HistoryStore persists queued tracks
type HistoryStore interface {
	Record(rec PlayRecord) error
	Recent(n int) ([]PlayRecord, error)
	Close() error
}
