// Package library keeps catalog items in step with their sidecars on disk.
package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mwantia/nfosync/pkg/assets"
	"github.com/mwantia/nfosync/pkg/db/models"
	"github.com/mwantia/nfosync/pkg/db/store"
	"github.com/mwantia/nfosync/pkg/log"
	"github.com/mwantia/nfosync/pkg/metrics"
	"github.com/mwantia/nfosync/pkg/nfo"
)

// FullMetadata combines the catalog row with a fresh read of the sidecar.
type FullMetadata struct {
	Cached *models.MediaItem `json:"cached" yaml:"cached"`
	Fresh  *nfo.Metadata     `json:"fresh"  yaml:"fresh"`
	Assets assets.Resolved   `json:"assets" yaml:"assets"`
}

// ServiceConfig tunes sync behavior
type ServiceConfig struct {
	// Incremental only refreshes last_synced_at when the stored fingerprint
	// matches the files on disk.
	Incremental bool
}

// Service synchronizes single items between disk and catalog. It is safe
// for concurrent use.
type Service struct {
	catalog  store.CatalogStore
	resolver *assets.Resolver
	logger   log.LoggerService
	cfg      ServiceConfig
	now      func() time.Time
}

func NewService(catalog store.CatalogStore, resolver *assets.Resolver, logger log.LoggerService, cfg ServiceConfig) *Service {
	return &Service{
		catalog:  catalog,
		resolver: resolver,
		logger:   logger,
		cfg:      cfg,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

type fingerprint struct {
	sidecarPath    string
	sidecarModTime time.Time
	sidecarSize    int64
	videoPath      string
	videoType      string
	videoModTime   time.Time
	videoSize      int64
}

func (f fingerprint) matches(item *models.MediaItem) bool {
	return item.SidecarPath == f.sidecarPath &&
		item.SidecarModTime.Equal(f.sidecarModTime) &&
		item.SidecarSize == f.sidecarSize &&
		item.VideoPath == f.videoPath &&
		item.VideoModTime.Equal(f.videoModTime) &&
		item.VideoSize == f.videoSize
}

// SyncItemFromDisk reads the sidecar at sidecarPath and writes its state to
// the catalog under code. A failure in any stage leaves the catalog as it was.
func (s *Service) SyncItemFromDisk(ctx context.Context, code, sidecarPath string) (*models.MediaItem, error) {
	fail := func(stage Stage, err error) (*models.MediaItem, error) {
		metrics.SyncTotal.WithLabelValues("failed").Inc()
		return nil, &SyncError{Code: code, Path: sidecarPath, Stage: stage, Err: err}
	}

	start := time.Now()
	fp, err := s.resolve(code, sidecarPath)
	metrics.SyncDuration.WithLabelValues(string(StageResolving)).Observe(time.Since(start).Seconds())
	if err != nil {
		return fail(StageResolving, err)
	}

	syncedAt := s.now()

	if s.cfg.Incremental {
		existing, err := s.catalog.FindItemByCode(ctx, code)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return fail(StageResolving, err)
		}
		if existing != nil && fp.matches(existing) {
			if err := s.catalog.TouchItem(ctx, code, syncedAt); err != nil {
				return fail(StagePersisting, err)
			}
			existing.LastSyncedAt = syncedAt
			metrics.SyncTotal.WithLabelValues("unchanged").Inc()
			s.logger.Debug("Item '%s' unchanged since last sync", code)
			return existing, nil
		}
	}

	start = time.Now()
	meta, err := nfo.Parse(sidecarPath)
	metrics.SyncDuration.WithLabelValues(string(StageParsing)).Observe(time.Since(start).Seconds())
	if err != nil {
		return fail(StageParsing, err)
	}

	start = time.Now()
	item, err := s.catalog.UpsertItem(ctx, buildUpsert(code, fp, meta, syncedAt))
	metrics.SyncDuration.WithLabelValues(string(StagePersisting)).Observe(time.Since(start).Seconds())
	if err != nil {
		return fail(StagePersisting, err)
	}

	metrics.SyncTotal.WithLabelValues("updated").Inc()
	s.logger.Debug("Synchronized item '%s' from '%s'", code, sidecarPath)
	return item, nil
}

func (s *Service) resolve(code, sidecarPath string) (fingerprint, error) {
	info, err := os.Stat(sidecarPath)
	if err != nil {
		return fingerprint{}, err
	}
	if !info.Mode().IsRegular() {
		return fingerprint{}, fmt.Errorf("sidecar '%s' is not a regular file", sidecarPath)
	}

	fp := fingerprint{
		sidecarPath:    sidecarPath,
		sidecarModTime: info.ModTime().UTC(),
		sidecarSize:    info.Size(),
	}

	videoPath, videoType := s.resolver.Video(sidecarPath, code)
	if videoPath != "" {
		if vinfo, err := os.Stat(videoPath); err == nil {
			fp.videoPath = videoPath
			fp.videoType = videoType
			fp.videoModTime = vinfo.ModTime().UTC()
			fp.videoSize = vinfo.Size()
		}
	}

	return fp, nil
}

func buildUpsert(code string, fp fingerprint, meta *nfo.Metadata, syncedAt time.Time) store.ItemUpsert {
	title := meta.Title
	if title == "" {
		title = code
	}

	item := models.MediaItem{
		Code:           code,
		Title:          title,
		OriginalTitle:  meta.OriginalTitle,
		Description:    meta.Plot,
		Outline:        meta.Outline,
		Tagline:        meta.Tagline,
		Year:           meta.Year,
		Rating:         meta.Rating,
		UserRating:     meta.UserRating,
		Votes:          meta.Votes,
		Runtime:        meta.Runtime,
		Premiered:      meta.Premiered,
		Country:        meta.Country,
		Director:       meta.Director,
		Studio:         meta.Studio,
		MPAA:           meta.MPAA,
		SidecarPath:    fp.sidecarPath,
		VideoPath:      fp.videoPath,
		VideoType:      fp.videoType,
		SidecarModTime: fp.sidecarModTime,
		SidecarSize:    fp.sidecarSize,
		VideoModTime:   fp.videoModTime,
		VideoSize:      fp.videoSize,
		LastSyncedAt:   syncedAt,
	}

	// Legacy fingerprint tracks the video when there is one
	if fp.videoPath != "" {
		item.FileModTime, item.FileSize = fp.videoModTime, fp.videoSize
	} else {
		item.FileModTime, item.FileSize = fp.sidecarModTime, fp.sidecarSize
	}

	for _, a := range meta.Actors {
		item.Actors = append(item.Actors, models.Actor{
			Name:  a.Name,
			Role:  a.Role,
			Thumb: a.Thumb,
			Order: a.Order,
		})
	}

	return store.ItemUpsert{
		Item:       item,
		GenreNames: meta.Genres,
		TagNames:   meta.Tags,
	}
}

// GetFullMetadata returns the cataloged item together with a fresh parse of
// its sidecar and the assets resolved from it.
func (s *Service) GetFullMetadata(ctx context.Context, code string) (*FullMetadata, error) {
	item, err := s.catalog.FindItemByCode(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{Code: code, Err: ErrItemNotFound}
	}
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(item.SidecarPath); errors.Is(err, os.ErrNotExist) {
		return nil, &NotFoundError{Code: code, Path: item.SidecarPath, Err: ErrSourceMissing}
	}

	fresh, err := nfo.Parse(item.SidecarPath)
	if err != nil {
		return nil, err
	}

	return &FullMetadata{
		Cached: item,
		Fresh:  fresh,
		Assets: s.resolver.Resolve(item.SidecarPath, code, fresh),
	}, nil
}

// PosterPath returns the poster for code, or false when there is none.
func (s *Service) PosterPath(ctx context.Context, code string) (string, bool, error) {
	return s.assetPath(ctx, code, func(r assets.Resolved) string { return r.PosterPath })
}

// FanartPath returns the fanart for code, or false when there is none.
func (s *Service) FanartPath(ctx context.Context, code string) (string, bool, error) {
	return s.assetPath(ctx, code, func(r assets.Resolved) string { return r.FanartPath })
}

// ThumbPath returns the thumbnail for code, or false when there is none.
func (s *Service) ThumbPath(ctx context.Context, code string) (string, bool, error) {
	return s.assetPath(ctx, code, func(r assets.Resolved) string { return r.ThumbPath })
}

func (s *Service) assetPath(ctx context.Context, code string, pick func(assets.Resolved) string) (string, bool, error) {
	full, err := s.GetFullMetadata(ctx, code)
	if err != nil {
		return "", false, err
	}

	path := pick(full.Assets)
	return path, path != "", nil
}

// ListItems returns one page of cataloged items and the total match count.
func (s *Service) ListItems(ctx context.Context, query store.ItemQuery) ([]models.MediaItem, int64, error) {
	return s.catalog.ListItems(ctx, query)
}
