package product

import (
	"context"
	"strings"

	"github.com/divinestore/storefront-backend/internal/repo"
	"github.com/divinestore/storefront-backend/pkg/db/models"
	"github.com/divinestore/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const productNotFound = "product not found"

// Repository persists catalog products.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts the product.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	if err := r.DB(ctx).Create(product).Error; err != nil {
		return repo.MapError(err, productNotFound, "create product")
	}
	return nil
}

// FindByID loads a product.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, repo.MapError(err, productNotFound, "load product")
	}
	return &product, nil
}

// Save writes every column of an existing product.
func (r *Repository) Save(ctx context.Context, product *models.Product) error {
	if err := r.DB(ctx).Save(product).Error; err != nil {
		return repo.MapError(err, productNotFound, "update product")
	}
	return nil
}

// Delete removes the product; a missing row is NOT_FOUND.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DeleteScoped(ctx, &models.Product{}, repo.Where("id = ?", id), productNotFound, "delete product")
}

// List returns one page of products, newest first, plus one extra row when a
// further page exists.
func (r *Repository) List(ctx context.Context, filters ListFilters, limit int, cursor *pagination.Cursor) ([]models.Product, error) {
	query := r.DB(ctx).Model(&models.Product{})

	if category := strings.TrimSpace(filters.Category); category != "" {
		query = query.Where("LOWER(category) = ?", strings.ToLower(category))
	}
	if q := strings.TrimSpace(filters.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ?", like, like, like)
	}
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Product
	if err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, repo.MapError(err, productNotFound, "list products")
	}
	return rows, nil
}

// Categories returns the distinct category names in alphabetical order.
func (r *Repository) Categories(ctx context.Context) ([]string, error) {
	var names []string
	err := r.DB(ctx).
		Model(&models.Product{}).
		Distinct("category").
		Order("category").
		Pluck("category", &names).Error
	if err != nil {
		return nil, repo.MapError(err, productNotFound, "list categories")
	}
	return names, nil
}
