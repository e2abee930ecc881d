package profiles

import (
	"time"

	"github.com/divinestore/storefront-backend/pkg/db/models"
	"github.com/divinestore/storefront-backend/pkg/enums"
	"github.com/google/uuid"
)

// ProfileDTO is the profile payload returned to clients.
type ProfileDTO struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	DisplayName   string     `json:"display_name"`
	Role          enums.Role `json:"role"`
	Mobile        *string    `json:"mobile,omitempty"`
	GovernmentID1 *string    `json:"government_id1,omitempty"`
	GovernmentID2 *string    `json:"government_id2,omitempty"`
	Address       *string    `json:"address,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// FromModel maps the persistence model to the public DTO.
func FromModel(p *models.Profile) *ProfileDTO {
	if p == nil {
		return nil
	}
	return &ProfileDTO{
		ID:            p.ID,
		Email:         p.Email,
		DisplayName:   p.DisplayName,
		Role:          p.Role,
		Mobile:        p.Mobile,
		GovernmentID1: p.GovernmentID1,
		GovernmentID2: p.GovernmentID2,
		Address:       p.Address,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// CreateInput describes a new profile row.
type CreateInput struct {
	ID            uuid.UUID
	Email         string
	DisplayName   string
	Role          enums.Role
	Mobile        *string
	GovernmentID1 *string
	GovernmentID2 *string
	Address       *string
}

// ToModel builds the profile model, normalizing the email.
func (in CreateInput) ToModel() *models.Profile {
	return &models.Profile{
		ID:            in.ID,
		Email:         normalizeEmail(in.Email),
		DisplayName:   trimmed(in.DisplayName),
		Role:          in.Role,
		Mobile:        trimmedPtr(in.Mobile),
		GovernmentID1: trimmedPtr(in.GovernmentID1),
		GovernmentID2: trimmedPtr(in.GovernmentID2),
		Address:       trimmedPtr(in.Address),
	}
}

// UpdateSelfInput holds the fields a profile owner may change. Role is absent on purpose.
type UpdateSelfInput struct {
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,min=1,max=120"`
	Mobile      *string `json:"mobile,omitempty" validate:"omitempty,max=20"`
	Address     *string `json:"address,omitempty" validate:"omitempty,max=500"`
}
