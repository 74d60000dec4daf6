package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/hifi/internal/domain"
)

// SearchService runs catalogue searches and trims them to a selectable list
type SearchService struct {
	repo   domain.SearchRepository
	limit  int
	rerank bool
	logger *slog.Logger
}

// NewSearchService creates a new search service
func NewSearchService(repo domain.SearchRepository, limit int, rerank bool, logger *slog.Logger) *SearchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchService{
		repo:   repo,
		limit:  limit,
		rerank: rerank,
		logger: logger,
	}
}

// Search returns at most limit tracks for the query.
// Server order is kept unless re-ranking is enabled.
func (s *SearchService) Search(ctx context.Context, query string) ([]domain.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	s.logger.Debug("searching", "query", query)

	results, err := s.repo.Search(ctx, query)
	if err != nil {
		s.logger.Error("search failed", "error", err, "query", query)
		return nil, err
	}

	if s.rerank {
		results = rankResults(results, query)
	}

	if s.limit > 0 && len(results) > s.limit {
		results = results[:s.limit]
	}

	s.logger.Debug("search complete", "query", query, "results", len(results))
	return results, nil
}

// rankResults orders tracks by match score, keeping server order for ties
func rankResults(tracks []domain.Track, query string) []domain.Track {
	if len(tracks) == 0 {
		return tracks
	}

	query = strings.ToLower(query)

	type rankedTrack struct {
		track domain.Track
		score int
	}

	ranked := make([]rankedTrack, len(tracks))
	for i, t := range tracks {
		ranked[i] = rankedTrack{track: t, score: matchScore(t, query)}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score < ranked[j].score
	})

	out := make([]domain.Track, len(ranked))
	for i, r := range ranked {
		out[i] = r.track
	}
	return out
}

// matchScore scores a track against a lowercase query. Lower is better.
func matchScore(t domain.Track, query string) int {
	title := strings.ToLower(t.Title)
	full := title + " " + strings.ToLower(t.Artist)

	switch {
	case title == query || full == query:
		return 0
	case strings.HasPrefix(title, query):
		return 10
	case strings.Contains(full, query):
		return 50
	case fuzzy.Match(query, full):
		// Subsequence match, e.g. "arnd wrld"
		return 75
	}

	return 100 + fuzzy.LevenshteinDistance(query, full)
}
