package service

import (
	"testing"

	"github.com/mmcdole/hifi/internal/domain"
)

func TestSelectQuality(t *testing.T) {
	tests := []struct {
		name  string
		track domain.Track
		want  string
	}{
		{
			name:  "advertised tier without sentinel",
			track: domain.Track{AudioQuality: domain.QualityLossless, Tags: []string{"LOSSLESS"}},
			want:  domain.QualityLossless,
		},
		{
			name:  "sentinel elevates tier",
			track: domain.Track{AudioQuality: domain.QualityLossless, Tags: []string{"LOSSLESS", "HIRES_LOSSLESS"}},
			want:  domain.QualityHiResLossless,
		},
		{
			name:  "other advertised tier kept",
			track: domain.Track{AudioQuality: "HIGH", Tags: []string{}},
			want:  "HIGH",
		},
		{
			name:  "no tags",
			track: domain.Track{AudioQuality: domain.QualityLossless},
			want:  domain.QualityLossless,
		},
		{
			name:  "sentinel is an exact match",
			track: domain.Track{AudioQuality: domain.QualityLossless, Tags: []string{"hires_lossless", "HI_RES_LOSSLESS"}},
			want:  domain.QualityLossless,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectQuality(tt.track); got != tt.want {
				t.Errorf("SelectQuality() = %q, want %q", got, tt.want)
			}
		})
	}
}
