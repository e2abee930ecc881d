package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/divinestore/storefront-backend/pkg/enums"
)

// Profile is the role-tagged application record keyed by identity id.
type Profile struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Email         string     `gorm:"column:email;type:text;not null;uniqueIndex"`
	DisplayName   string     `gorm:"column:display_name;not null"`
	Role          enums.Role `gorm:"column:role;type:text;not null"`
	Mobile        *string    `gorm:"column:mobile"`
	GovernmentID1 *string    `gorm:"column:government_id1"`
	GovernmentID2 *string    `gorm:"column:government_id2"`
	Address       *string    `gorm:"column:address"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Profile) TableName() string { return "profiles" }
