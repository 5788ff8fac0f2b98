package store

import (
	"context"
	"time"

	"github.com/mwantia/nfosync/pkg/db/models"
)

// CatalogStore defines the interface for catalog operations
type CatalogStore interface {
	// Lifecycle
	Connect(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error
	Health(ctx context.Context) error

	// Item operations
	FindItemByCode(ctx context.Context, code string) (*models.MediaItem, error)
	UpsertItem(ctx context.Context, upsert ItemUpsert) (*models.MediaItem, error)
	TouchItem(ctx context.Context, code string, syncedAt time.Time) error
	ListItems(ctx context.Context, query ItemQuery) ([]models.MediaItem, int64, error)
	CountItems(ctx context.Context) (int64, error)

	// Genre and tag operations
	FindOrCreateGenre(ctx context.Context, name string) (*models.Genre, error)
	FindOrCreateTag(ctx context.Context, name string) (*models.Tag, error)
	ListGenres(ctx context.Context) ([]models.Genre, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
}

// ItemUpsert carries everything a sync writes for one code. The ID, Genres
// and Tags fields of Item are ignored; associations come from the name lists.
type ItemUpsert struct {
	Item       models.MediaItem
	GenreNames []string
	TagNames   []string
}

// ItemQuery selects a page of items. Query matches code or title.
type ItemQuery struct {
	Query    string
	Page     int
	PageSize int
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

func (q ItemQuery) normalize() ItemQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	return q
}
