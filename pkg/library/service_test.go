package library

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	config "github.com/mwantia/nfosync/internal/config/server"
	"github.com/mwantia/nfosync/pkg/assets"
	"github.com/mwantia/nfosync/pkg/db/store"
	"github.com/mwantia/nfosync/pkg/log"
	"github.com/mwantia/nfosync/pkg/nfo"
)

const alphaSidecar = `<?xml version="1.0" encoding="UTF-8"?>
<movie>
  <title>Alpha</title>
  <plot>First plot</plot>
  <genre>Drama</genre>
  <genre>Action</genre>
  <tag>x</tag>
</movie>`

func setupTestService(t *testing.T, cfg ServiceConfig) (*Service, *store.SQLiteStore) {
	t.Helper()

	logger := log.NewLoggerServiceWithWriter("test", config.LogServerConfig{}, io.Discard)
	catalog, err := store.NewSQLiteStore(store.SQLiteConfig{
		Path:   filepath.Join(t.TempDir(), "catalog.db"),
		Logger: logger,
	})
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := catalog.Connect(ctx); err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	if err := catalog.Migrate(ctx); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	t.Cleanup(func() {
		catalog.Close()
	})

	return NewService(catalog, assets.NewResolver(nil), logger, cfg), catalog
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func sorted(names []string) []string {
	out := append([]string(nil), names...)
	sort.Strings(out)
	return out
}

func TestSyncItemFromDisk(t *testing.T) {
	svc, _ := setupTestService(t, ServiceConfig{})
	ctx := context.Background()

	dir := t.TempDir()
	sidecar := filepath.Join(dir, "A01.nfo")
	writeFile(t, sidecar, alphaSidecar)
	writeFile(t, filepath.Join(dir, "A01.mp4"), "video")
	writeFile(t, filepath.Join(dir, "A01-poster.jpg"), "image")

	item, err := svc.SyncItemFromDisk(ctx, "A01", sidecar)
	if err != nil {
		t.Fatalf("SyncItemFromDisk failed: %v", err)
	}

	if item.Title != "Alpha" {
		t.Errorf("Expected title 'Alpha', got '%s'", item.Title)
	}
	if item.Description != "First plot" {
		t.Errorf("Expected description 'First plot', got '%s'", item.Description)
	}
	if item.VideoType != "mp4" {
		t.Errorf("Expected video type 'mp4', got '%s'", item.VideoType)
	}
	if item.VideoPath != filepath.Join(dir, "A01.mp4") {
		t.Errorf("Expected video path next to sidecar, got '%s'", item.VideoPath)
	}
	if item.FileSize != int64(len("video")) {
		t.Errorf("Expected legacy file size of the video, got %d", item.FileSize)
	}

	full, err := svc.GetFullMetadata(ctx, "A01")
	if err != nil {
		t.Fatalf("GetFullMetadata failed: %v", err)
	}
	if got := sorted(full.Cached.GenreNames()); len(got) != 2 || got[0] != "Action" || got[1] != "Drama" {
		t.Errorf("Expected genres [Action Drama], got %v", got)
	}
	if got := full.Cached.TagNames(); len(got) != 1 || got[0] != "x" {
		t.Errorf("Expected tags [x], got %v", got)
	}
	if full.Fresh.Title != "Alpha" {
		t.Errorf("Expected fresh title 'Alpha', got '%s'", full.Fresh.Title)
	}

	poster, ok, err := svc.PosterPath(ctx, "A01")
	if err != nil || !ok || poster != filepath.Join(dir, "A01-poster.jpg") {
		t.Errorf("Expected poster A01-poster.jpg, got '%s' (%v, %v)", poster, ok, err)
	}

	fanart, ok, err := svc.FanartPath(ctx, "A01")
	if err != nil || ok || fanart != "" {
		t.Errorf("Expected no fanart, got '%s' (%v, %v)", fanart, ok, err)
	}
}

func TestSyncReplacesTags(t *testing.T) {
	svc, _ := setupTestService(t, ServiceConfig{})
	ctx := context.Background()

	sidecar := filepath.Join(t.TempDir(), "A01.nfo")
	writeFile(t, sidecar, alphaSidecar)
	if _, err := svc.SyncItemFromDisk(ctx, "A01", sidecar); err != nil {
		t.Fatalf("First sync failed: %v", err)
	}

	writeFile(t, sidecar, `<movie><title>Alpha</title><genre>Drama</genre></movie>`)
	if _, err := svc.SyncItemFromDisk(ctx, "A01", sidecar); err != nil {
		t.Fatalf("Second sync failed: %v", err)
	}

	full, err := svc.GetFullMetadata(ctx, "A01")
	if err != nil {
		t.Fatalf("GetFullMetadata failed: %v", err)
	}
	if got := full.Cached.GenreNames(); len(got) != 1 || got[0] != "Drama" {
		t.Errorf("Expected genres [Drama], got %v", got)
	}
	if len(full.Cached.Tags) != 0 {
		t.Errorf("Expected no tags, got %v", full.Cached.TagNames())
	}
}

func TestSyncParseFailureKeepsPreviousState(t *testing.T) {
	svc, catalog := setupTestService(t, ServiceConfig{})
	ctx := context.Background()

	sidecar := filepath.Join(t.TempDir(), "A01.nfo")
	writeFile(t, sidecar, alphaSidecar)
	if _, err := svc.SyncItemFromDisk(ctx, "A01", sidecar); err != nil {
		t.Fatalf("First sync failed: %v", err)
	}

	writeFile(t, sidecar, "<movie><title>Broken")
	_, err := svc.SyncItemFromDisk(ctx, "A01", sidecar)

	var serr *SyncError
	if !errors.As(err, &serr) {
		t.Fatalf("Expected *SyncError, got %v", err)
	}
	if serr.Stage != StageParsing {
		t.Errorf("Expected stage '%s', got '%s'", StageParsing, serr.Stage)
	}
	var perr *nfo.ParseError
	if !errors.As(err, &perr) {
		t.Errorf("Expected wrapped *nfo.ParseError, got %v", err)
	}

	item, err := catalog.FindItemByCode(ctx, "A01")
	if err != nil {
		t.Fatalf("FindItemByCode failed: %v", err)
	}
	if item.Title != "Alpha" || len(item.Genres) != 2 {
		t.Errorf("Expected previous state to survive, got title '%s' genres %v", item.Title, item.GenreNames())
	}
}

func TestSyncMissingSidecar(t *testing.T) {
	svc, _ := setupTestService(t, ServiceConfig{})

	_, err := svc.SyncItemFromDisk(context.Background(), "A01", filepath.Join(t.TempDir(), "A01.nfo"))

	var serr *SyncError
	if !errors.As(err, &serr) || serr.Stage != StageResolving {
		t.Fatalf("Expected resolving *SyncError, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected wrapped os.ErrNotExist, got %v", err)
	}
}

func TestSyncMovedSidecarUpdatesSameRow(t *testing.T) {
	svc, catalog := setupTestService(t, ServiceConfig{})
	ctx := context.Background()

	first := filepath.Join(t.TempDir(), "A01.nfo")
	second := filepath.Join(t.TempDir(), "moved", "A01.nfo")
	writeFile(t, first, alphaSidecar)
	writeFile(t, second, alphaSidecar)

	a, err := svc.SyncItemFromDisk(ctx, "A01", first)
	if err != nil {
		t.Fatalf("First sync failed: %v", err)
	}
	b, err := svc.SyncItemFromDisk(ctx, "A01", second)
	if err != nil {
		t.Fatalf("Second sync failed: %v", err)
	}

	if a.ID != b.ID {
		t.Errorf("Expected same row, got %d and %d", a.ID, b.ID)
	}
	if b.SidecarPath != second {
		t.Errorf("Expected sidecar path '%s', got '%s'", second, b.SidecarPath)
	}
	if total, _ := catalog.CountItems(ctx); total != 1 {
		t.Errorf("Expected 1 item, got %d", total)
	}
}

func TestSyncTitleFallsBackToCode(t *testing.T) {
	svc, _ := setupTestService(t, ServiceConfig{})

	sidecar := filepath.Join(t.TempDir(), "Z99.nfo")
	writeFile(t, sidecar, `<movie><uniqueid type="local">Z99</uniqueid></movie>`)

	item, err := svc.SyncItemFromDisk(context.Background(), "Z99", sidecar)
	if err != nil {
		t.Fatalf("SyncItemFromDisk failed: %v", err)
	}
	if item.Title != "Z99" {
		t.Errorf("Expected title 'Z99', got '%s'", item.Title)
	}
}

func TestIncrementalSyncTouchesUnchangedItem(t *testing.T) {
	svc, catalog := setupTestService(t, ServiceConfig{Incremental: true})
	ctx := context.Background()

	first := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)
	svc.now = func() time.Time { return first }

	sidecar := filepath.Join(t.TempDir(), "A01.nfo")
	writeFile(t, sidecar, alphaSidecar)
	if _, err := svc.SyncItemFromDisk(ctx, "A01", sidecar); err != nil {
		t.Fatalf("First sync failed: %v", err)
	}

	svc.now = func() time.Time { return second }
	if _, err := svc.SyncItemFromDisk(ctx, "A01", sidecar); err != nil {
		t.Fatalf("Second sync failed: %v", err)
	}

	item, err := catalog.FindItemByCode(ctx, "A01")
	if err != nil {
		t.Fatalf("FindItemByCode failed: %v", err)
	}
	if !item.LastSyncedAt.Equal(second) {
		t.Errorf("Expected last_synced_at %v, got %v", second, item.LastSyncedAt)
	}
	if item.Title != "Alpha" || len(item.Genres) != 2 || len(item.Tags) != 1 {
		t.Errorf("Expected unchanged content, got title '%s' genres %v tags %v",
			item.Title, item.GenreNames(), item.TagNames())
	}
}

func TestGetFullMetadataNotFound(t *testing.T) {
	svc, _ := setupTestService(t, ServiceConfig{})

	_, err := svc.GetFullMetadata(context.Background(), "missing")

	var nerr *NotFoundError
	if !errors.As(err, &nerr) {
		t.Fatalf("Expected *NotFoundError, got %v", err)
	}
	if !errors.Is(err, ErrItemNotFound) {
		t.Errorf("Expected ErrItemNotFound, got %v", err)
	}
}

func TestGetFullMetadataSourceMissing(t *testing.T) {
	svc, _ := setupTestService(t, ServiceConfig{})
	ctx := context.Background()

	sidecar := filepath.Join(t.TempDir(), "A01.nfo")
	writeFile(t, sidecar, alphaSidecar)
	if _, err := svc.SyncItemFromDisk(ctx, "A01", sidecar); err != nil {
		t.Fatalf("SyncItemFromDisk failed: %v", err)
	}
	if err := os.Remove(sidecar); err != nil {
		t.Fatalf("Failed to remove sidecar: %v", err)
	}

	_, err := svc.GetFullMetadata(ctx, "A01")
	if !errors.Is(err, ErrSourceMissing) {
		t.Fatalf("Expected ErrSourceMissing, got %v", err)
	}

	if _, _, err := svc.ThumbPath(ctx, "A01"); !errors.Is(err, ErrSourceMissing) {
		t.Errorf("Expected ThumbPath to report ErrSourceMissing, got %v", err)
	}
}

func TestListItems(t *testing.T) {
	svc, _ := setupTestService(t, ServiceConfig{})
	ctx := context.Background()

	dir := t.TempDir()
	for _, code := range []string{"A01", "B02"} {
		sidecar := filepath.Join(dir, code+".nfo")
		writeFile(t, sidecar, alphaSidecar)
		if _, err := svc.SyncItemFromDisk(ctx, code, sidecar); err != nil {
			t.Fatalf("SyncItemFromDisk %s failed: %v", code, err)
		}
	}

	items, total, err := svc.ListItems(ctx, store.ItemQuery{Query: "B0"})
	if err != nil {
		t.Fatalf("ListItems failed: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].Code != "B02" {
		t.Errorf("Expected only B02, got total=%d items=%v", total, items)
	}
}
