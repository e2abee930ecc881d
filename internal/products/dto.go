package product

import (
	"time"

	"github.com/divinestore/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductDTO represents the product payload returned to clients.
type ProductDTO struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Images        []string         `json:"images"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	HasDiscount   bool             `json:"has_discount"`
	Category      string           `json:"category"`
	Tags          []string         `json:"tags"`
	Details       DetailsDTO       `json:"details"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// DetailsDTO groups the optional material and provenance fields shown on the detail page.
type DetailsDTO struct {
	Material      *string `json:"material,omitempty"`
	Certification *string `json:"certification,omitempty"`
	Origin        *string `json:"origin,omitempty"`
	BeadCount     *int    `json:"bead_count,omitempty"`
}

// NewProductDTO maps the model to its public shape.
func NewProductDTO(p *models.Product) ProductDTO {
	images := []string(p.Images)
	if images == nil {
		images = []string{}
	}
	tags := []string(p.Tags)
	if tags == nil {
		tags = []string{}
	}
	return ProductDTO{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Images:        images,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		HasDiscount:   p.HasDiscount(),
		Category:      p.Category,
		Tags:          tags,
		Details: DetailsDTO{
			Material:      p.Material,
			Certification: p.Certification,
			Origin:        p.Origin,
			BeadCount:     p.BeadCount,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
