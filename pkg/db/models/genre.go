package models

import "time"

// Genre is a shared, uniquely named category.
type Genre struct {
	ID   uint   `gorm:"primaryKey" json:"id" yaml:"id"`
	Name string `gorm:"type:text;not null;uniqueIndex:idx_genres_name" json:"name" yaml:"name"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
