package models

import (
	"time"

	"gorm.io/gorm"
)

// MediaItem is the catalog record of one sidecar, keyed by its code.
type MediaItem struct {
	ID   uint   `gorm:"primaryKey" json:"id" yaml:"id"`
	Code string `gorm:"type:text;not null;uniqueIndex:idx_items_code" json:"code" yaml:"code"`

	// Descriptive metadata
	Title         string   `gorm:"type:text;not null;index:idx_items_title" json:"title" yaml:"title"`
	OriginalTitle string   `gorm:"type:text" json:"original_title,omitempty" yaml:"original_title,omitempty"`
	Description   string   `gorm:"type:text" json:"description,omitempty" yaml:"description,omitempty"`
	Outline       string   `gorm:"type:text" json:"outline,omitempty" yaml:"outline,omitempty"`
	Tagline       string   `gorm:"type:text" json:"tagline,omitempty" yaml:"tagline,omitempty"`
	Year          *int     `json:"year,omitempty" yaml:"year,omitempty"`
	Rating        *float64 `json:"rating,omitempty" yaml:"rating,omitempty"`
	UserRating    *float64 `json:"user_rating,omitempty" yaml:"user_rating,omitempty"`
	Votes         *int     `json:"votes,omitempty" yaml:"votes,omitempty"`
	Runtime       *int     `json:"runtime,omitempty" yaml:"runtime,omitempty"`
	Premiered     string   `gorm:"type:text" json:"premiered,omitempty" yaml:"premiered,omitempty"`
	Country       string   `gorm:"type:text" json:"country,omitempty" yaml:"country,omitempty"`
	Director      string   `gorm:"type:text" json:"director,omitempty" yaml:"director,omitempty"`
	Studio        string   `gorm:"type:text" json:"studio,omitempty" yaml:"studio,omitempty"`
	MPAA          string   `gorm:"type:text" json:"mpaa,omitempty" yaml:"mpaa,omitempty"`
	Actors        []Actor  `gorm:"type:text;serializer:json" json:"actors,omitempty" yaml:"actors,omitempty"`

	// Source files; empty video fields mean no video was found
	SidecarPath string `gorm:"type:text;not null" json:"sidecar_path" yaml:"sidecar_path"`
	VideoPath   string `gorm:"type:text" json:"video_path,omitempty" yaml:"video_path,omitempty"`
	VideoType   string `gorm:"type:text" json:"video_type,omitempty" yaml:"video_type,omitempty"`

	// Derived from VideoPath whenever the row is loaded or saved
	HasVideo bool `gorm:"-:all" json:"has_video" yaml:"has_video"`

	// Change detection fingerprint
	SidecarModTime time.Time `json:"sidecar_mod_time" yaml:"sidecar_mod_time"`
	SidecarSize    int64     `json:"sidecar_size" yaml:"sidecar_size"`
	VideoModTime   time.Time `json:"video_mod_time" yaml:"video_mod_time"`
	VideoSize      int64     `json:"video_size" yaml:"video_size"`

	// Legacy combined fingerprint kept for older catalogs
	FileModTime time.Time `json:"file_mod_time" yaml:"file_mod_time"`
	FileSize    int64     `json:"file_size" yaml:"file_size"`

	LastSyncedAt time.Time `gorm:"index:idx_items_synced" json:"last_synced_at" yaml:"last_synced_at"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" yaml:"updated_at"`

	// Relationships
	Genres []Genre `gorm:"many2many:media_item_genres;constraint:OnDelete:CASCADE" json:"genres" yaml:"genres"`
	Tags   []Tag   `gorm:"many2many:media_item_tags;constraint:OnDelete:CASCADE" json:"tags" yaml:"tags"`
}

// Actor is stored inline on the item as JSON.
type Actor struct {
	Name  string `json:"name" yaml:"name"`
	Role  string `json:"role,omitempty" yaml:"role,omitempty"`
	Thumb string `json:"thumb,omitempty" yaml:"thumb,omitempty"`
	Order *int   `json:"order,omitempty" yaml:"order,omitempty"`
}

func (m *MediaItem) AfterFind(tx *gorm.DB) error {
	m.HasVideo = m.VideoPath != ""
	return nil
}

func (m *MediaItem) AfterSave(tx *gorm.DB) error {
	m.HasVideo = m.VideoPath != ""
	return nil
}

// GenreNames returns the names of the attached genres in stored order.
func (m *MediaItem) GenreNames() []string {
	names := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		names = append(names, g.Name)
	}
	return names
}

// TagNames returns the names of the attached tags in stored order.
func (m *MediaItem) TagNames() []string {
	names := make([]string, 0, len(m.Tags))
	for _, t := range m.Tags {
		names = append(names, t.Name)
	}
	return names
}
