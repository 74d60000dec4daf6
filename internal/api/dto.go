package api

// SearchResponse is the root of a search endpoint response
type SearchResponse struct {
	Data struct {
		Items []TrackItem `json:"items"`
	} `json:"data"`
}

// TrackItem is a single search result record
type TrackItem struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	AudioQuality string `json:"audioQuality"`
	Artist       struct {
		Name string `json:"name"`
	} `json:"artist"`
	MediaMetadata struct {
		Tags []string `json:"tags"`
	} `json:"mediaMetadata"`
}

// TrackResponse is the root of a manifest resolver response
type TrackResponse struct {
	Data struct {
		TrackID          int64  `json:"trackId,omitempty"`
		AudioQuality     string `json:"audioQuality,omitempty"`
		ManifestMimeType string `json:"manifestMimeType,omitempty"`
		Manifest         string `json:"manifest"`
	} `json:"data"`
}
