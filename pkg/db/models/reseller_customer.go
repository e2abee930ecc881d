package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResellerCustomer belongs to exactly one reseller. The composite primary key
// means a row can only be addressed together with its owner.
type ResellerCustomer struct {
	ResellerID      uuid.UUID `gorm:"column:reseller_id;type:uuid;primaryKey"`
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name            string    `gorm:"column:name;not null"`
	Email           string    `gorm:"column:email;not null"`
	Mobile          string    `gorm:"column:mobile;not null"`
	ShippingAddress string    `gorm:"column:shipping_address;not null"`
	Pincode         string    `gorm:"column:pincode;type:char(6);not null"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (ResellerCustomer) TableName() string { return "reseller_customers" }

func (c *ResellerCustomer) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
