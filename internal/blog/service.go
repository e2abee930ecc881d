// Package blog serves the devotional articles signed-in shoppers can read.
package blog

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/divinestore/storefront-backend/pkg/db/models"
	pkgerrors "github.com/divinestore/storefront-backend/pkg/errors"
	"github.com/divinestore/storefront-backend/pkg/pagination"
)

const maxSlugLen = 120

var (
	slugRe     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	slugJoinRe = regexp.MustCompile(`[^a-z0-9]+`)
)

type Service interface {
	CreatePost(ctx context.Context, input CreatePostInput) (*PostDTO, error)
	GetPost(ctx context.Context, slug string) (*PostDTO, error)
	ListPosts(ctx context.Context, page pagination.Params) (*ListResult, error)
	DeletePost(ctx context.Context, slug string) error
}

type postRepository interface {
	Create(ctx context.Context, post *models.BlogPost) error
	FindBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	DeleteBySlug(ctx context.Context, slug string) error
	List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.BlogPost, error)
}

type service struct {
	repo postRepository
	now  func() time.Time
}

// NewService builds the blog service. clock may be nil.
func NewService(repo postRepository, clock func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("blog repository required")
	}
	if clock == nil {
		clock = time.Now
	}
	return &service{repo: repo, now: clock}, nil
}

func (s *service) CreatePost(ctx context.Context, input CreatePostInput) (*PostDTO, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = Slugify(title)
	}
	if err := validateSlug(slug); err != nil {
		return nil, err
	}

	published := input.PublishedAt
	if published.IsZero() {
		published = s.now()
	}
	post := &models.BlogPost{
		Slug:        slug,
		Title:       title,
		Excerpt:     strings.TrimSpace(input.Excerpt),
		Content:     strings.TrimSpace(input.Content),
		ImageURL:    input.ImageURL,
		PublishedAt: published.UTC(),
	}
	if post.Excerpt == "" || post.Content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "excerpt and content are required")
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}
	return fromModel(post), nil
}

func (s *service) GetPost(ctx context.Context, slug string) (*PostDTO, error) {
	slug = strings.TrimSpace(slug)
	if err := validateSlug(slug); err != nil {
		return nil, err
	}
	post, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return fromModel(post), nil
}

func (s *service) ListPosts(ctx context.Context, page pagination.Params) (*ListResult, error) {
	cursor, err := pagination.ParseCursor(page.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(page.Limit)

	rows, err := s.repo.List(ctx, pagination.LimitWithBuffer(limit), cursor)
	if err != nil {
		return nil, err
	}
	rows, last := pagination.Split(rows, limit)

	result := &ListResult{Posts: make([]PostSummary, 0, len(rows))}
	if last != nil {
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.PublishedAt, ID: last.ID})
	}
	for i := range rows {
		result.Posts = append(result.Posts, summaryFromModel(&rows[i]))
	}
	return result, nil
}

func (s *service) DeletePost(ctx context.Context, slug string) error {
	slug = strings.TrimSpace(slug)
	if err := validateSlug(slug); err != nil {
		return err
	}
	return s.repo.DeleteBySlug(ctx, slug)
}

// Slugify lowercases a title and joins its alphanumeric runs with hyphens.
func Slugify(title string) string {
	slug := strings.Trim(slugJoinRe.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	return slug
}

func validateSlug(slug string) error {
	if slug == "" || len(slug) > maxSlugLen || !slugRe.MatchString(slug) {
		return pkgerrors.New(pkgerrors.CodeValidation, "slug must be lowercase words joined by hyphens")
	}
	return nil
}
