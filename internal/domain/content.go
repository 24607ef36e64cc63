package domain

import "github.com/google/uuid"

type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// HeroBanner is one slide of the homepage hero slider.
type HeroBanner struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Subtitle string    `json:"subtitle"`
	ImageURL string    `json:"imageUrl"`
	LinkURL  string    `json:"linkUrl"`
	Position int       `json:"position"`
	IsActive bool      `json:"isActive"`
}

// CategoryMedia is the image or video shown for a category tile.
type CategoryMedia struct {
	CategoryID uuid.UUID `json:"categoryId"`
	URL        string    `json:"url"`
	MediaType  MediaType `json:"mediaType"`
}

// AttitudeSection is the free-form brand block of the homepage.
type AttitudeSection struct {
	Title  string   `json:"title"`
	Text   string   `json:"text"`
	Images []string `json:"images"`
}

// Homepage aggregates all editable homepage content.
type Homepage struct {
	HeroBanners   []HeroBanner    `json:"heroBanners"`
	CategoryMedia []CategoryMedia `json:"categoryMedia"`
	Attitude      AttitudeSection `json:"attitude"`
}
