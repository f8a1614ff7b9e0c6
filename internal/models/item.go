package models

import (
	"encoding/json"
	"time"
)

// Item content types.
const (
	ItemTypeLink    = "link"
	ItemTypeArticle = "article"
	ItemTypeVideo   = "video"
	ItemTypeNote    = "note"
)

// ValidItemType reports whether t is one of the enumerated content types.
func ValidItemType(t string) bool {
	switch t {
	case ItemTypeLink, ItemTypeArticle, ItemTypeVideo, ItemTypeNote:
		return true
	}
	return false
}

// ItemMetadata holds data scraped from an item's URL.
type ItemMetadata struct {
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Thumbnail   string     `json:"thumbnail,omitempty"`
	Author      string     `json:"author,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	Duration    int        `json:"duration,omitempty"` // seconds, for videos
}

// Item represents a single saved piece of content inside a brain.
type Item struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	URL         string        `json:"url,omitempty"`
	Content     string        `json:"content,omitempty"`
	Description string        `json:"description"`
	Type        string        `json:"type"`
	Tags        []string      `json:"tags"`
	UserID      string        `json:"userId"`
	BrainID     string        `json:"brainId"`
	Metadata    *ItemMetadata `json:"metadata,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`

	// Stored as JSON object strings
	TagsJSON     string `json:"-"`
	MetadataJSON string `json:"-"`
}

// PrepareForDB marshals the tags and metadata into their JSON string form before saving.
func (i *Item) PrepareForDB() error {
	if i.Tags == nil {
		i.Tags = []string{}
	}
	tags, err := json.Marshal(i.Tags)
	if err != nil {
		return err
	}
	i.TagsJSON = string(tags)

	i.MetadataJSON = ""
	if i.Metadata != nil {
		meta, err := json.Marshal(i.Metadata)
		if err != nil {
			return err
		}
		i.MetadataJSON = string(meta)
	}
	return nil
}

// PrepareForAPI unmarshals the JSON string columns for API responses.
func (i *Item) PrepareForAPI() error {
	i.Tags = []string{}
	if i.TagsJSON != "" {
		if err := json.Unmarshal([]byte(i.TagsJSON), &i.Tags); err != nil {
			return err
		}
	}
	i.Metadata = nil
	if i.MetadataJSON != "" {
		var meta ItemMetadata
		if err := json.Unmarshal([]byte(i.MetadataJSON), &meta); err != nil {
			return err
		}
		i.Metadata = &meta
	}
	return nil
}
