package domain

import (
	"fmt"
	"time"
)

// Audio quality tiers understood by the manifest resolver
const (
	QualityLossless      = "LOSSLESS"
	QualityHiResLossless = "HI_RES_LOSSLESS"
)

// TagHiResLossless marks a track that has a hi-res encode available
const TagHiResLossless = "HIRES_LOSSLESS"

// Track represents a selectable search result
type Track struct {
	ID           int64    // Catalogue track identifier
	Title        string   // Display title
	Artist       string   // Primary artist name
	AudioQuality string   // Advertised quality tier, e.g. "LOSSLESS"
	Tags         []string // mediaMetadata tags, e.g. "HIRES_LOSSLESS"
}

// HasTag reports whether the track carries the given metadata tag
func (t Track) HasTag(tag string) bool {
	for _, v := range t.Tags {
		if v == tag {
			return true
		}
	}
	return false
}

// DisplayName returns "Title - Artist" for lists and status lines
func (t Track) DisplayName() string {
	return fmt.Sprintf("%s - %s", t.Title, t.Artist)
}

// ManifestKind is the structural type of a decoded manifest
type ManifestKind int

const (
	ManifestUnrecognized ManifestKind = iota
	ManifestPlaylistDocument
	ManifestURLList
)

// String returns a short name for logs and history
func (k ManifestKind) String() string {
	switch k {
	case ManifestPlaylistDocument:
		return "playlist"
	case ManifestURLList:
		return "urls"
	default:
		return "unrecognized"
	}
}

// Manifest is a decoded manifest resolved to exactly one shape.
// Document is set for ManifestPlaylistDocument, URLs for ManifestURLList.
type Manifest struct {
	Kind     ManifestKind
	Document string   // Verbatim playlist text (XML)
	URLs     []string // Direct stream URLs in resolver order

	// Informational fields carried by URL-list manifests
	MimeType       string
	Codecs         string
	EncryptionType string
}

// LoadMode is the queue discipline passed to the player's loadfile command
type LoadMode string

const (
	LoadReplace LoadMode = "replace"
	LoadAppend  LoadMode = "append"
)

// QueuedMedia describes the outcome of a single playback request
type QueuedMedia struct {
	Track   Track
	Quality string       // Effective quality used for the fetch
	Kind    ManifestKind // Shape of the resolved manifest
	Target  string       // URL or playlist path handed to the player
	Mode    LoadMode
}

// PlayRecord is a persisted history entry for a queued track
type PlayRecord struct {
	TrackID  int64     `json:"trackId"`
	Title    string    `json:"title"`
	Artist   string    `json:"artist"`
	Quality  string    `json:"quality"`
	Kind     string    `json:"kind"`
	Mode     LoadMode  `json:"mode"`
	QueuedAt time.Time `json:"queuedAt"`
}

// NewPlayRecord builds a history entry from a queue result
func NewPlayRecord(m *QueuedMedia, at time.Time) PlayRecord {
	return PlayRecord{
		TrackID:  m.Track.ID,
		Title:    m.Track.Title,
		Artist:   m.Track.Artist,
		Quality:  m.Quality,
		Kind:     m.Kind.String(),
		Mode:     m.Mode,
		QueuedAt: at,
	}
}
