package api

import "github.com/mmcdole/hifi/internal/domain"

// MapTracks converts search records to domain tracks
func MapTracks(items []TrackItem) []domain.Track {
	tracks := make([]domain.Track, 0, len(items))
	for _, item := range items {
		tracks = append(tracks, MapTrack(item))
	}
	return tracks
}

// MapTrack converts one search record, filling display defaults for missing fields
func MapTrack(item TrackItem) domain.Track {
	t := domain.Track{
		ID:           item.ID,
		Title:        item.Title,
		Artist:       item.Artist.Name,
		AudioQuality: item.AudioQuality,
		Tags:         item.MediaMetadata.Tags,
	}
	if t.Title == "" {
		t.Title = "Unknown Title"
	}
	if t.Artist == "" {
		t.Artist = "Unknown Artist"
	}
	if t.AudioQuality == "" {
		t.AudioQuality = domain.QualityLossless
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t
}
