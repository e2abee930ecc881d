package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/divinestore/storefront-backend/pkg/db/models"
	dbtypes "github.com/divinestore/storefront-backend/pkg/db/types"
	pkgerrors "github.com/divinestore/storefront-backend/pkg/errors"
	"github.com/divinestore/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service exposes catalog reads and admin-only catalog writes.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, input ListInput) (*ListResult, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	Categories(ctx context.Context) ([]string, error)
}

// CreateProductInput holds the payload to create a product.
type CreateProductInput struct {
	Name          string           `json:"name" validate:"required,max=200"`
	Description   string           `json:"description" validate:"required"`
	Images        []string         `json:"images" validate:"omitempty,dive,url"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	Category      string           `json:"category" validate:"required,max=80"`
	Tags          []string         `json:"tags" validate:"omitempty,dive,min=1,max=40"`
	Material      *string          `json:"material,omitempty"`
	Certification *string          `json:"certification,omitempty"`
	Origin        *string          `json:"origin,omitempty"`
	BeadCount     *int             `json:"bead_count,omitempty" validate:"omitempty,gt=0"`
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name          *string          `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description   *string          `json:"description,omitempty"`
	Images        *[]string        `json:"images,omitempty" validate:"omitempty,dive,url"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	ClearDiscount bool             `json:"clear_discount,omitempty"`
	Category      *string          `json:"category,omitempty" validate:"omitempty,min=1,max=80"`
	Tags          *[]string        `json:"tags,omitempty" validate:"omitempty,dive,min=1,max=40"`
	Material      *string          `json:"material,omitempty"`
	Certification *string          `json:"certification,omitempty"`
	Origin        *string          `json:"origin,omitempty"`
	BeadCount     *int             `json:"bead_count,omitempty" validate:"omitempty,gt=0"`
}

type productRepository interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Save(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters ListFilters, limit int, cursor *pagination.Cursor) ([]models.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

type service struct {
	repo productRepository
}

// NewService constructs a product service instance.
func NewService(repo productRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	product := &models.Product{
		Name:          strings.TrimSpace(input.Name),
		Description:   strings.TrimSpace(input.Description),
		Images:        dbtypes.StringList(cleanList(input.Images)),
		Price:         input.Price,
		OriginalPrice: input.OriginalPrice,
		Category:      strings.TrimSpace(input.Category),
		Tags:          dbtypes.StringList(tagSet(input.Tags)),
		Material:      trimmedPtr(input.Material),
		Certification: trimmedPtr(input.Certification),
		Origin:        trimmedPtr(input.Origin),
		BeadCount:     input.BeadCount,
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	dto := NewProductDTO(product)
	return &dto, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := NewProductDTO(product)
	return &dto, nil
}

func (s *service) ListProducts(ctx context.Context, input ListInput) (*ListResult, error) {
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(input.Pagination.Limit)

	rows, err := s.repo.List(ctx, input.Filters, pagination.LimitWithBuffer(limit), cursor)
	if err != nil {
		return nil, err
	}

	rows, last := pagination.Split(rows, limit)
	result := &ListResult{Products: make([]ProductDTO, 0, len(rows))}
	if last != nil {
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	for i := range rows {
		result.Products = append(result.Products, NewProductDTO(&rows[i]))
	}
	return result, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applyUpdateToProduct(product, input)
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, product); err != nil {
		return nil, err
	}
	dto := NewProductDTO(product)
	return &dto, nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	names, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func applyUpdateToProduct(product *models.Product, input UpdateProductInput) {
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	if input.Images != nil {
		product.Images = dbtypes.StringList(cleanList(*input.Images))
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.ClearDiscount {
		product.OriginalPrice = nil
	} else if input.OriginalPrice != nil {
		value := *input.OriginalPrice
		product.OriginalPrice = &value
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
	}
	if input.Tags != nil {
		product.Tags = dbtypes.StringList(tagSet(*input.Tags))
	}
	if input.Material != nil {
		product.Material = trimmedPtr(input.Material)
	}
	if input.Certification != nil {
		product.Certification = trimmedPtr(input.Certification)
	}
	if input.Origin != nil {
		product.Origin = trimmedPtr(input.Origin)
	}
	if input.BeadCount != nil {
		product.BeadCount = input.BeadCount
	}
}

// validateProduct enforces the write-time catalog invariants, including that a
// struck-through price is always higher than the selling price.
func validateProduct(p *models.Product) error {
	switch {
	case p.Name == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	case p.Description == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	case p.Category == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	case !p.Price.IsPositive():
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be greater than zero")
	case p.Price.Exponent() < -2 && !p.Price.Equal(p.Price.Round(2)):
		return pkgerrors.New(pkgerrors.CodeValidation, "price supports at most two decimal places")
	case p.OriginalPrice != nil && !p.OriginalPrice.GreaterThan(p.Price):
		return pkgerrors.New(pkgerrors.CodeValidation, "original_price must be greater than price")
	case p.BeadCount != nil && *p.BeadCount <= 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "bead_count must be positive")
	}
	return nil
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// tagSet trims tags and drops repeats, compared case-insensitively. The first
// spelling of each tag wins.
func tagSet(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range cleanList(values) {
		key := strings.ToLower(v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
