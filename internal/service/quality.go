package service

import "github.com/mmcdole/hifi/internal/domain"

// SelectQuality returns the quality tier to request for a track.
// Tracks tagged with a hi-res encode are elevated to HI_RES_LOSSLESS;
// everything else uses the advertised tier.
func SelectQuality(track domain.Track) string {
	if track.HasTag(domain.TagHiResLossless) {
		return domain.QualityHiResLossless
	}
	return track.AudioQuality
}
