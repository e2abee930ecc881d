package blog

import (
	"context"

	"github.com/divinestore/storefront-backend/internal/repo"
	"github.com/divinestore/storefront-backend/pkg/db"
	"github.com/divinestore/storefront-backend/pkg/db/models"
	pkgerrors "github.com/divinestore/storefront-backend/pkg/errors"
	"github.com/divinestore/storefront-backend/pkg/pagination"
	"gorm.io/gorm"
)

const postNotFound = "blog post not found"

// Repository persists blog posts.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, post *models.BlogPost) error {
	if err := r.DB(ctx).Create(post).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "a post with this slug already exists")
		}
		return repo.MapError(err, postNotFound, "create blog post")
	}
	return nil
}

func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	var post models.BlogPost
	if err := r.DB(ctx).First(&post, "slug = ?", slug).Error; err != nil {
		return nil, repo.MapError(err, postNotFound, "load blog post")
	}
	return &post, nil
}

func (r *Repository) DeleteBySlug(ctx context.Context, slug string) error {
	return r.DeleteScoped(ctx, &models.BlogPost{}, repo.Where("slug = ?", slug), postNotFound, "delete blog post")
}

// List pages through posts, most recently published first.
func (r *Repository) List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.BlogPost, error) {
	query := r.DB(ctx).Model(&models.BlogPost{})
	if cursor != nil {
		query = query.Where("(published_at < ?) OR (published_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.BlogPost
	if err := query.Order("published_at DESC").Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, repo.MapError(err, postNotFound, "list blog posts")
	}
	return rows, nil
}
