package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	config "github.com/mwantia/nfosync/internal/config/server"
	"github.com/mwantia/nfosync/pkg/db/migrations"
	"github.com/mwantia/nfosync/pkg/db/models"
	"github.com/mwantia/nfosync/pkg/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// SQLiteStore implements CatalogStore using SQLite
type SQLiteStore struct {
	db     *gorm.DB
	path   string
	cfg    SQLiteConfig
	logger log.LoggerService
}

// DB returns the underlying GORM database instance
func (s *SQLiteStore) DB() *gorm.DB {
	return s.db
}

// Migrator returns a versioned migrator bound to this store
func (s *SQLiteStore) Migrator() *migrations.Migrator {
	return migrations.NewMigrator(s.db)
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	Path         string
	MaxOpenConns int
	BusyTimeout  time.Duration
	LogLevel     logger.LogLevel
	Retry        RetryConfig
	Logger       log.LoggerService
}

// SQLiteConfigFromServer converts the catalog section of the server config
func SQLiteConfigFromServer(cfg config.CatalogServerConfig, l log.LoggerService) (SQLiteConfig, error) {
	result := SQLiteConfig{
		Path:         cfg.SQLite.Path,
		MaxOpenConns: cfg.SQLite.MaxOpenConns,
		LogLevel:     ParseGormLogLevel(cfg.SQLite.LogLevel),
		Retry: RetryConfig{
			MaxRetries: cfg.Retry.MaxRetries,
		},
		Logger: l,
	}

	durations := []struct {
		name  string
		value string
		dest  *time.Duration
	}{
		{"catalog.sqlite.busy_timeout", cfg.SQLite.BusyTimeout, &result.BusyTimeout},
		{"catalog.retry.initial_backoff", cfg.Retry.InitialBackoff, &result.Retry.InitialBackoff},
		{"catalog.retry.max_backoff", cfg.Retry.MaxBackoff, &result.Retry.MaxBackoff},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return result, fmt.Errorf("invalid %s '%s': %w", d.name, d.value, err)
		}
		*d.dest = parsed
	}

	return result, nil
}

// NewSQLiteStore creates a new SQLite-backed catalog store
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = 1
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	if cfg.Retry.InitialBackoff <= 0 || cfg.Retry.MaxBackoff <= 0 {
		defaults := DefaultRetryConfig()
		cfg.Retry.InitialBackoff = defaults.InitialBackoff
		cfg.Retry.MaxBackoff = defaults.MaxBackoff
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewLoggerServiceWithWriter("catalog", config.LogServerConfig{}, io.Discard)
	}

	// Default to silent logging
	if cfg.LogLevel == 0 {
		cfg.LogLevel = logger.Silent
	}

	db, err := gorm.Open(sqlite.Open(dsn(cfg)), &gorm.Config{
		Logger:         NewGormLogger(cfg.Logger.Named("gorm"), cfg.LogLevel),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		path:   cfg.Path,
		cfg:    cfg,
		logger: cfg.Logger,
	}, nil
}

func dsn(cfg SQLiteConfig) string {
	sep := "?"
	if strings.Contains(cfg.Path, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)",
		cfg.Path, sep, cfg.BusyTimeout.Milliseconds())
}

// Connect initializes the database connection
func (s *SQLiteStore) Connect(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	// Configure connection pool; SQLite only supports 1 writer
	sqlDB.SetMaxOpenConns(s.cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(s.cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}

// Migrate runs all pending versioned migrations
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	return s.Migrator().Migrate(ctx)
}

// Health checks database connectivity
func (s *SQLiteStore) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Item operations

func (s *SQLiteStore) FindItemByCode(ctx context.Context, code string) (*models.MediaItem, error) {
	var item models.MediaItem
	err := withAssociations(s.db.WithContext(ctx)).
		Where("code = ?", code).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StoreError{Op: "find_item", Err: err}
	}
	return &item, nil
}

// UpsertItem writes one item and its genre and tag sets in a single
// transaction. Retried as a whole on transient conflicts.
func (s *SQLiteStore) UpsertItem(ctx context.Context, upsert ItemUpsert) (*models.MediaItem, error) {
	if upsert.Item.Code == "" {
		return nil, &StoreError{Op: "upsert_item", Err: errors.New("item code is required")}
	}

	var saved models.MediaItem
	err := withRetry(ctx, s.logger, s.cfg.Retry, "upsert_item", func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			item, err := s.upsertItemRow(tx, upsert.Item)
			if err != nil {
				return err
			}

			genres := make([]models.Genre, 0, len(upsert.GenreNames))
			for _, name := range upsert.GenreNames {
				genre, err := findOrCreateNamed(tx, name, func(n string) *models.Genre {
					return &models.Genre{Name: n}
				})
				if err != nil {
					return err
				}
				genres = append(genres, *genre)
			}

			tags := make([]models.Tag, 0, len(upsert.TagNames))
			for _, name := range upsert.TagNames {
				tag, err := findOrCreateNamed(tx, name, func(n string) *models.Tag {
					return &models.Tag{Name: n}
				})
				if err != nil {
					return err
				}
				tags = append(tags, *tag)
			}

			if err := replaceAssociation(tx, item, "Genres", genres); err != nil {
				return fmt.Errorf("failed to replace genres: %w", err)
			}
			if err := replaceAssociation(tx, item, "Tags", tags); err != nil {
				return fmt.Errorf("failed to replace tags: %w", err)
			}

			item.Genres = genres
			item.Tags = tags
			saved = *item
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return &saved, nil
}

func (s *SQLiteStore) upsertItemRow(tx *gorm.DB, fields models.MediaItem) (*models.MediaItem, error) {
	var existing models.MediaItem
	err := tx.Where("code = ?", fields.Code).First(&existing).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	item := fields
	item.ID = existing.ID
	item.CreatedAt = existing.CreatedAt
	item.Genres = nil
	item.Tags = nil

	if err := tx.Omit(clause.Associations).Save(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *SQLiteStore) TouchItem(ctx context.Context, code string, syncedAt time.Time) error {
	var affected int64
	err := withRetry(ctx, s.logger, s.cfg.Retry, "touch_item", func() error {
		result := s.db.WithContext(ctx).
			Model(&models.MediaItem{}).
			Where("code = ?", code).
			UpdateColumn("last_synced_at", syncedAt.UTC())
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ListItems(ctx context.Context, query ItemQuery) ([]models.MediaItem, int64, error) {
	query = query.normalize()

	base := s.db.WithContext(ctx).Model(&models.MediaItem{})
	if q := strings.TrimSpace(query.Query); q != "" {
		pattern := "%" + q + "%"
		base = base.Where("code LIKE ? OR title LIKE ?", pattern, pattern)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, &StoreError{Op: "count_items", Err: err}
	}

	var items []models.MediaItem
	err := withAssociations(base.Session(&gorm.Session{})).
		Order("code ASC").
		Limit(query.PageSize).
		Offset((query.Page - 1) * query.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, &StoreError{Op: "list_items", Err: err}
	}

	return items, total, nil
}

func (s *SQLiteStore) CountItems(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.MediaItem{}).Count(&total).Error; err != nil {
		return 0, &StoreError{Op: "count_items", Err: err}
	}
	return total, nil
}

// Genre and tag operations

func (s *SQLiteStore) FindOrCreateGenre(ctx context.Context, name string) (*models.Genre, error) {
	var genre *models.Genre
	err := withRetry(ctx, s.logger, s.cfg.Retry, "find_or_create_genre", func() error {
		var err error
		genre, err = findOrCreateNamed(s.db.WithContext(ctx), name, func(n string) *models.Genre {
			return &models.Genre{Name: n}
		})
		return err
	})
	return genre, err
}

func (s *SQLiteStore) FindOrCreateTag(ctx context.Context, name string) (*models.Tag, error) {
	var tag *models.Tag
	err := withRetry(ctx, s.logger, s.cfg.Retry, "find_or_create_tag", func() error {
		var err error
		tag, err = findOrCreateNamed(s.db.WithContext(ctx), name, func(n string) *models.Tag {
			return &models.Tag{Name: n}
		})
		return err
	})
	return tag, err
}

func (s *SQLiteStore) ListGenres(ctx context.Context) ([]models.Genre, error) {
	var genres []models.Genre
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&genres).Error; err != nil {
		return nil, &StoreError{Op: "list_genres", Err: err}
	}
	return genres, nil
}

func (s *SQLiteStore) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, &StoreError{Op: "list_tags", Err: err}
	}
	return tags, nil
}

// findOrCreateNamed selects a row by name and inserts it when missing. A
// concurrent insert of the same name is absorbed by ON CONFLICT DO NOTHING
// and the re-select.
func findOrCreateNamed[T any](db *gorm.DB, name string, newRow func(string) *T) (*T, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("name must not be empty")
	}

	var row T
	err := db.Where("name = ?", name).First(&row).Error
	if err == nil {
		return &row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := newRow(name)
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(created).Error
	if err != nil {
		return nil, err
	}

	var reloaded T
	if err := db.Where("name = ?", name).First(&reloaded).Error; err != nil {
		return nil, err
	}
	return &reloaded, nil
}

func replaceAssociation[T any](tx *gorm.DB, item *models.MediaItem, name string, values []T) error {
	association := tx.Model(item).Association(name)
	if len(values) == 0 {
		return association.Clear()
	}
	return association.Replace(values)
}

func withAssociations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Genres", func(db *gorm.DB) *gorm.DB {
			return db.Order("genres.name ASC")
		}).
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tags.name ASC")
		})
}
