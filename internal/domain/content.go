package domain

import (
	"context"
	"errors"
	"time"
)

// ErrContentNotFound is returned when the content repository has no document for a lookup
var ErrContentNotFound = errors.New("content not found")

// SiteSettings holds the site-wide copy shown in header and footer
type SiteSettings struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Address     string   `json:"address"`
	SocialLinks []string `json:"socialLinks"`
}

// Page is a content-managed page addressed by slug
type Page struct {
	Slug        string          `json:"slug"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Body        []PortableBlock `json:"body,omitempty"`
	UpdatedAt   time.Time       `json:"_updatedAt"`
}

// PortableBlock is one block of rich text as stored in the content repository
type PortableBlock struct {
	Type  string `json:"_type"`
	Style string `json:"style,omitempty"`
	Text  string `json:"text,omitempty"`
}

// NewsItem is an entry of the news listing
type NewsItem struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Excerpt     string    `json:"excerpt,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}

// ContentUsecase serves content-managed data to the frontend
type ContentUsecase interface {
	// GetSiteSettings never fails: a static copy is returned when the repository is down.
	GetSiteSettings(ctx context.Context, locale Locale) SiteSettings
	// ListNews never fails: an empty list is returned when the repository is down.
	ListNews(ctx context.Context, locale Locale, limit int) []NewsItem
	// GetPage fails when the page cannot be loaded.
	GetPage(ctx context.Context, locale Locale, slug string) (*Page, error)
}
