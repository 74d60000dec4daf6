package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mmcdole/hifi/internal/domain"
)

type fakeSearchRepo struct {
	tracks   []domain.Track
	err      error
	gotQuery string
}

func (r *fakeSearchRepo) Search(ctx context.Context, query string) ([]domain.Track, error) {
	r.gotQuery = query
	return r.tracks, r.err
}

func tracksNamed(titles ...string) []domain.Track {
	out := make([]domain.Track, len(titles))
	for i, title := range titles {
		out[i] = domain.Track{ID: int64(i + 1), Title: title, Artist: "Artist"}
	}
	return out
}

func TestSearchLimitsResults(t *testing.T) {
	repo := &fakeSearchRepo{tracks: tracksNamed("a", "b", "c", "d", "e", "f", "g")}
	svc := NewSearchService(repo, 5, false, nil)

	got, err := svc.Search(context.Background(), "  one more time ")
	if err != nil {
		t.Fatal(err)
	}
	if repo.gotQuery != "one more time" {
		t.Errorf("query = %q, want trimmed", repo.gotQuery)
	}
	if len(got) != 5 {
		t.Fatalf("got %d results, want 5", len(got))
	}
	for i, tr := range got {
		if tr.ID != int64(i+1) {
			t.Errorf("result %d has id %d, server order not kept", i, tr.ID)
		}
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	repo := &fakeSearchRepo{tracks: tracksNamed("a")}
	svc := NewSearchService(repo, 5, false, nil)

	got, err := svc.Search(context.Background(), "   ")
	if err != nil || got != nil {
		t.Errorf("Search(blank) = %v, %v; want nil, nil", got, err)
	}
	if repo.gotQuery != "" {
		t.Error("blank query must not reach the server")
	}
}

func TestSearchPropagatesError(t *testing.T) {
	repo := &fakeSearchRepo{err: domain.ErrServerOffline}
	svc := NewSearchService(repo, 5, false, nil)

	if _, err := svc.Search(context.Background(), "x"); !errors.Is(err, domain.ErrServerOffline) {
		t.Errorf("error = %v, want ErrServerOffline", err)
	}
}

func TestSearchRerank(t *testing.T) {
	repo := &fakeSearchRepo{tracks: tracksNamed(
		"Harder Better Faster Stronger (Live)",
		"Something Else Entirely",
		"Harder Better Faster Stronger",
	)}
	svc := NewSearchService(repo, 2, true, nil)

	got, err := svc.Search(context.Background(), "harder better faster stronger")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	if got[0].ID != 3 {
		t.Errorf("exact title should rank first, got %q", got[0].Title)
	}
	if got[1].ID != 1 {
		t.Errorf("prefix match should rank second, got %q", got[1].Title)
	}
}

func TestMatchScoreOrdering(t *testing.T) {
	track := domain.Track{Title: "Around the World", Artist: "Daft Punk"}

	exact := matchScore(track, "around the world")
	prefix := matchScore(track, "around")
	contains := matchScore(track, "daft punk")
	subsequence := matchScore(track, "arnd wrld")
	distant := matchScore(track, "zzzz")

	if !(exact < prefix && prefix < contains && contains < subsequence && subsequence < distant) {
		t.Errorf("scores out of order: exact=%d prefix=%d contains=%d subsequence=%d distant=%d",
			exact, prefix, contains, subsequence, distant)
	}
}
