package customers

import (
	"time"

	"github.com/divinestore/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
)

// CustomerDTO is the customer payload returned to the owning reseller.
type CustomerDTO struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Mobile          string    `json:"mobile"`
	ShippingAddress string    `json:"shipping_address"`
	Pincode         string    `json:"pincode"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// FromModel maps the persistence row to the DTO.
func FromModel(c *models.ResellerCustomer) CustomerDTO {
	return CustomerDTO{
		ID:              c.ID,
		Name:            c.Name,
		Email:           c.Email,
		Mobile:          c.Mobile,
		ShippingAddress: c.ShippingAddress,
		Pincode:         c.Pincode,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// CreateInput is the payload for a new customer.
type CreateInput struct {
	Name            string `json:"name" validate:"required,max=120"`
	Email           string `json:"email" validate:"required,email"`
	Mobile          string `json:"mobile" validate:"required,max=20"`
	ShippingAddress string `json:"shipping_address" validate:"required,max=500"`
	Pincode         string `json:"pincode" validate:"required,pincode"`
}

// UpdateInput holds optional customer changes.
type UpdateInput struct {
	Name            *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Email           *string `json:"email,omitempty" validate:"omitempty,email"`
	Mobile          *string `json:"mobile,omitempty" validate:"omitempty,min=1,max=20"`
	ShippingAddress *string `json:"shipping_address,omitempty" validate:"omitempty,min=1,max=500"`
	Pincode         *string `json:"pincode,omitempty" validate:"omitempty,pincode"`
}
