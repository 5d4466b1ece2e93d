package models

import (
	"fmt"
	"time"
)

// Category is the media item classification that decides its storage folder
type Category string

const (
	CategoryMovie  Category = "Movie"
	CategorySeries Category = "Series"
)

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	return c == CategoryMovie || c == CategorySeries
}

// ParseCategory converts user input into a Category
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("invalid category %q: must be %q or %q", s, CategoryMovie, CategorySeries)
	}
	return c, nil
}

// MediaItem represents a movie or series record
type MediaItem struct {
	ID            int       `json:"id" db:"id"`
	Title         string    `json:"title" db:"title"`
	Description   string    `json:"description" db:"description"`
	Category      Category  `json:"category" db:"category"`
	Genre         string    `json:"genre" db:"genre"`
	Duration      string    `json:"duration" db:"duration"`
	VideoFileName string    `json:"videoFileName" db:"video_file_name"`
	ThumbnailURL  string    `json:"thumbnailUrl" db:"thumbnail_url"`
	ActorIDs      []int     `json:"actorIds"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// MediaItemInput is the editable part of a media item as submitted by the admin form
type MediaItemInput struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Category      Category `json:"category"`
	Genre         string   `json:"genre"`
	Duration      string   `json:"duration"`
	VideoFileName string   `json:"videoFileName"`
	ThumbnailURL  string   `json:"thumbnailUrl"`
	ActorIDs      []int    `json:"actorIds"`
}

// MediaListFilter narrows a media list query
type MediaListFilter struct {
	Category Category
	Page     int
	Count    int
}
