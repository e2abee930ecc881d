package blog

import (
	"time"

	"github.com/divinestore/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
)

// CreatePostInput is the admin payload for a new post. A blank slug is
// derived from the title; a zero PublishedAt means now.
type CreatePostInput struct {
	Slug        string    `json:"slug" validate:"omitempty,max=120"`
	Title       string    `json:"title" validate:"required,max=200"`
	Excerpt     string    `json:"excerpt" validate:"required,max=600"`
	Content     string    `json:"content" validate:"required"`
	ImageURL    *string   `json:"image_url,omitempty" validate:"omitempty,url"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}

// PostSummary is one entry of the blog index.
type PostSummary struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Excerpt     string    `json:"excerpt"`
	ImageURL    *string   `json:"image_url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// PostDTO is a full article.
type PostDTO struct {
	PostSummary
	Content string `json:"content"`
}

// ListResult is one page of the blog index.
type ListResult struct {
	Posts      []PostSummary `json:"posts"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

func summaryFromModel(p *models.BlogPost) PostSummary {
	return PostSummary{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       p.Title,
		Excerpt:     p.Excerpt,
		ImageURL:    p.ImageURL,
		PublishedAt: p.PublishedAt.UTC(),
	}
}

func fromModel(p *models.BlogPost) *PostDTO {
	return &PostDTO{PostSummary: summaryFromModel(p), Content: p.Content}
}
