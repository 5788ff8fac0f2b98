package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mwantia/nfosync/pkg/nfo"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatalf("Failed to create %s: %v", name, err)
		}
	}
}

func TestVideoPriority(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "A01.nfo", "A01.avi", "A01.MKV", "A01.srt", "B02.mp4")

	r := NewResolver(nil)
	path, ext := r.Video(filepath.Join(dir, "A01.nfo"), "A01")

	if path != filepath.Join(dir, "A01.MKV") {
		t.Errorf("Expected A01.MKV, got '%s'", path)
	}
	if ext != "mkv" {
		t.Errorf("Expected video type 'mkv', got '%s'", ext)
	}
}

func TestVideoCustomOrder(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "A01.nfo", "A01.mp4", "A01.avi")

	r := NewResolver([]string{".avi", "mp4"})
	path, ext := r.Video(filepath.Join(dir, "A01.nfo"), "A01")

	if path != filepath.Join(dir, "A01.avi") || ext != "avi" {
		t.Errorf("Expected A01.avi, got '%s' (%s)", path, ext)
	}
}

func TestVideoPrefersExactCase(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "A01.nfo", "a01.nfo", "A01.mp4", "a01.mp4")
	if entries, _ := os.ReadDir(dir); len(entries) != 4 {
		t.Skip("Filesystem is case-insensitive")
	}

	r := NewResolver(nil)
	for _, code := range []string{"A01", "a01"} {
		path, _ := r.Video(filepath.Join(dir, code+".nfo"), code)
		if want := filepath.Join(dir, code+".mp4"); path != want {
			t.Errorf("Expected '%s' for code %s, got '%s'", want, code, path)
		}
	}
}

func TestVideoAbsent(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "A01.nfo")
	if err := os.Mkdir(filepath.Join(dir, "A01.mp4"), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	path, ext := NewResolver(nil).Video(filepath.Join(dir, "A01.nfo"), "A01")
	if path != "" || ext != "" {
		t.Errorf("Expected no video, got '%s' (%s)", path, ext)
	}
}

func TestResolveFallbacks(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "A01.nfo", "A01.mp4", "A01-poster.png", "fanart.jpg", "folder.webp")

	res := NewResolver(nil).Resolve(filepath.Join(dir, "A01.nfo"), "A01", &nfo.Metadata{Title: "Alpha"})

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"video", res.VideoPath, filepath.Join(dir, "A01.mp4")},
		{"poster", res.PosterPath, filepath.Join(dir, "A01-poster.png")},
		{"fanart", res.FanartPath, filepath.Join(dir, "fanart.jpg")},
		{"thumb", res.ThumbPath, filepath.Join(dir, "A01-poster.png")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, tt.got)
			}
		})
	}
}

func TestResolvePrefersHints(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "A01.nfo", "art/cover-big.jpg", "Custom-Thumb.JPG", "A01-poster.jpg")

	meta := &nfo.Metadata{
		Title:      "Alpha",
		PosterHint: "art/cover-big.jpg",
		ThumbHint:  "custom-thumb.jpg",
	}
	res := NewResolver(nil).Resolve(filepath.Join(dir, "A01.nfo"), "A01", meta)

	if res.PosterPath != filepath.Join(dir, "art", "cover-big.jpg") {
		t.Errorf("Expected poster from hint, got '%s'", res.PosterPath)
	}
	if res.ThumbPath != filepath.Join(dir, "Custom-Thumb.JPG") {
		t.Errorf("Expected thumb from hint, got '%s'", res.ThumbPath)
	}
}

func TestResolveIgnoresEscapingHints(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "movie")
	touch(t, parent, "outside.jpg", "movie/A01.nfo")

	meta := &nfo.Metadata{
		Title:      "Alpha",
		PosterHint: "../outside.jpg",
		FanartHint: filepath.Join(parent, "outside.jpg"),
	}
	res := NewResolver(nil).Resolve(filepath.Join(dir, "A01.nfo"), "A01", meta)

	if res.PosterPath != "" {
		t.Errorf("Expected escaping poster hint to be ignored, got '%s'", res.PosterPath)
	}
	if res.FanartPath != "" {
		t.Errorf("Expected absolute fanart hint to be ignored, got '%s'", res.FanartPath)
	}
}

func TestResolveAllAbsent(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "A01.nfo")

	res := NewResolver(nil).Resolve(filepath.Join(dir, "A01.nfo"), "A01", nil)

	if res.VideoPath != "" || res.PosterPath != "" || res.FanartPath != "" || res.ThumbPath != "" {
		t.Errorf("Expected empty resolution, got %+v", res)
	}
	if len(res.ActorThumbs) != 0 {
		t.Errorf("Expected no actor thumbs, got %v", res.ActorThumbs)
	}
}

func TestResolveActorThumbs(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "A01.nfo", ".actors/Jane_Doe.jpg", "john.png")

	meta := &nfo.Metadata{
		Title: "Alpha",
		Actors: []nfo.Actor{
			{Name: "Jane Doe"},
			{Name: "John Roe", Thumb: "john.png"},
			{Name: "Nobody"},
		},
	}
	res := NewResolver(nil).Resolve(filepath.Join(dir, "A01.nfo"), "A01", meta)

	if res.ActorThumbs["Jane Doe"] != filepath.Join(dir, ".actors", "Jane_Doe.jpg") {
		t.Errorf("Expected Jane Doe thumb from .actors, got '%s'", res.ActorThumbs["Jane Doe"])
	}
	if res.ActorThumbs["John Roe"] != filepath.Join(dir, "john.png") {
		t.Errorf("Expected John Roe thumb from hint, got '%s'", res.ActorThumbs["John Roe"])
	}
	if _, ok := res.ActorThumbs["Nobody"]; ok {
		t.Error("Expected no thumb for Nobody")
	}
}
