package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbtypes "github.com/divinestore/storefront-backend/pkg/db/types"
)

// Product is a catalog listing. Images keep their display order.
type Product struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Name          string             `gorm:"column:name;not null"`
	Description   string             `gorm:"column:description;not null"`
	Images        dbtypes.StringList `gorm:"column:images;type:jsonb;not null"`
	Price         decimal.Decimal    `gorm:"column:price;type:numeric(12,2);not null"`
	OriginalPrice *decimal.Decimal   `gorm:"column:original_price;type:numeric(12,2)"`
	Category      string             `gorm:"column:category;not null;index"`
	Tags          dbtypes.StringList `gorm:"column:tags;type:jsonb;not null"`
	Material      *string            `gorm:"column:material"`
	Certification *string            `gorm:"column:certification"`
	Origin        *string            `gorm:"column:origin"`
	BeadCount     *int               `gorm:"column:bead_count"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// HasDiscount reports whether the listing should show a struck-through price.
func (p Product) HasDiscount() bool {
	return p.OriginalPrice != nil && p.OriginalPrice.GreaterThan(p.Price)
}
