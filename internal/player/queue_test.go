package player

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mmcdole/hifi/internal/domain"
)

type loadCall struct {
	target  string
	mode    domain.LoadMode
	content string // playlist file content at the moment of the call
}

// fakeSurface records load commands and snapshots the playlist file
type fakeSurface struct {
	idle     bool
	idleErr  error
	loadErr  error
	snapshot string // path to read when loadfile arrives
	calls    []loadCall
}

func (f *fakeSurface) IsIdle(ctx context.Context) (bool, error) {
	return f.idle, f.idleErr
}

func (f *fakeSurface) LoadFile(ctx context.Context, target string, mode domain.LoadMode) error {
	call := loadCall{target: target, mode: mode}
	if f.snapshot != "" {
		data, _ := os.ReadFile(f.snapshot)
		call.content = string(data)
	}
	f.calls = append(f.calls, call)
	return f.loadErr
}

func TestQueueURLMode(t *testing.T) {
	tests := []struct {
		name string
		idle bool
		want domain.LoadMode
	}{
		{"idle replaces", true, domain.LoadReplace},
		{"active appends", false, domain.LoadAppend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			surface := &fakeSurface{idle: tt.idle}
			q := NewQueue(surface, filepath.Join(t.TempDir(), "q.mpd"), nil)

			mode, err := q.QueueURL(context.Background(), "https://example/stream.m4a")
			if err != nil {
				t.Fatalf("QueueURL error: %v", err)
			}
			if mode != tt.want {
				t.Errorf("mode = %q, want %q", mode, tt.want)
			}
			if len(surface.calls) != 1 {
				t.Fatalf("got %d load calls, want 1", len(surface.calls))
			}
			if surface.calls[0].target != "https://example/stream.m4a" || surface.calls[0].mode != tt.want {
				t.Errorf("load call = %+v", surface.calls[0])
			}
		})
	}
}

func TestQueueURLIdleReadFailure(t *testing.T) {
	surface := &fakeSurface{idleErr: domain.ErrPlayerUnavailable}
	q := NewQueue(surface, filepath.Join(t.TempDir(), "q.mpd"), nil)

	_, err := q.QueueURL(context.Background(), "https://example/a")
	if !errors.Is(err, domain.ErrPlayerUnavailable) {
		t.Errorf("error = %v, want ErrPlayerUnavailable", err)
	}
	if len(surface.calls) != 0 {
		t.Errorf("load issued despite idle read failure: %+v", surface.calls)
	}
}

func TestQueueURLLoadFailure(t *testing.T) {
	surface := &fakeSurface{idle: true, loadErr: domain.ErrPlayerCommand}
	q := NewQueue(surface, filepath.Join(t.TempDir(), "q.mpd"), nil)

	if _, err := q.QueueURL(context.Background(), "https://example/a"); !errors.Is(err, domain.ErrPlayerCommand) {
		t.Errorf("error = %v, want ErrPlayerCommand", err)
	}
}

func TestQueuePlaylistDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mpv_queue.mpd")
	surface := &fakeSurface{idle: true, snapshot: path}
	q := NewQueue(surface, path, nil)

	doc := `<?xml version="1.0"?><MPD>...</MPD>`
	mode, err := q.QueuePlaylistDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("QueuePlaylistDocument error: %v", err)
	}
	if mode != domain.LoadReplace {
		t.Errorf("mode = %q, want replace", mode)
	}

	if len(surface.calls) != 1 {
		t.Fatalf("got %d load calls, want 1", len(surface.calls))
	}
	call := surface.calls[0]
	if call.target != path {
		t.Errorf("target = %q, want %q", call.target, path)
	}
	if call.content != doc+"\n" {
		t.Errorf("file content at load = %q, want %q", call.content, doc+"\n")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != doc+"\n" {
		t.Errorf("file content = %q", data)
	}
}

func TestQueuePlaylistDocumentOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mpv_queue.mpd")
	surface := &fakeSurface{idle: false}
	q := NewQueue(surface, path, nil)

	long := "<?xml version=\"1.0\"?>\n<MPD>\n" + "<Period id=\"a-very-long-first-period\"/>\n</MPD>"
	short := "<?xml?><MPD/>"

	for _, doc := range []string{long, short} {
		if _, err := q.QueuePlaylistDocument(context.Background(), doc); err != nil {
			t.Fatalf("QueuePlaylistDocument error: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != short+"\n" {
		t.Errorf("file content = %q, want only the latest document", data)
	}

	// No temp files are left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1", len(entries))
	}

	if surface.calls[1].mode != domain.LoadAppend {
		t.Errorf("second mode = %q, want append", surface.calls[1].mode)
	}
}

func TestQueuePlaylistDocumentWriteFailure(t *testing.T) {
	// A directory at the playlist path makes the rename fail
	path := filepath.Join(t.TempDir(), "occupied")
	if err := os.MkdirAll(filepath.Join(path, "child"), 0755); err != nil {
		t.Fatal(err)
	}
	surface := &fakeSurface{idle: true}
	q := NewQueue(surface, path, nil)

	if _, err := q.QueuePlaylistDocument(context.Background(), "<?xml?>"); err == nil {
		t.Fatal("expected write error")
	}
	if len(surface.calls) != 0 {
		t.Errorf("load issued despite write failure: %+v", surface.calls)
	}
}
