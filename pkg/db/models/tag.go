package models

import "time"

// Tag is a shared, uniquely named free-form label.
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id" yaml:"id"`
	Name string `gorm:"type:text;not null;uniqueIndex:idx_tags_name" json:"name" yaml:"name"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
