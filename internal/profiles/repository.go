package profiles

import (
	"context"
	"strings"

	"github.com/divinestore/storefront-backend/internal/repo"
	"github.com/divinestore/storefront-backend/pkg/db/models"
	"github.com/divinestore/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const profileNotFound = "profile not found"

// Repository persists profiles.
type Repository struct {
	repo.Base
}

// NewRepository binds a profile repository to the provided connection or transaction.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts the profile. The id must already be set to the owning identity's id.
func (r *Repository) Create(ctx context.Context, profile *models.Profile) error {
	if err := r.DB(ctx).Create(profile).Error; err != nil {
		return repo.MapError(err, profileNotFound, "create profile")
	}
	return nil
}

// FindByID loads a profile by identity id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.DB(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, repo.MapError(err, profileNotFound, "load profile")
	}
	return &profile, nil
}

// FindByEmail loads a profile by its lower-cased email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var profile models.Profile
	err := r.DB(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&profile).Error
	if err != nil {
		return nil, repo.MapError(err, profileNotFound, "load profile by email")
	}
	return &profile, nil
}

// List returns every profile, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Profile, error) {
	var rows []models.Profile
	if err := r.DB(ctx).Order("created_at DESC").Order("id").Find(&rows).Error; err != nil {
		return nil, repo.MapError(err, profileNotFound, "list profiles")
	}
	return rows, nil
}

// Update applies the column map to the profile and returns the fresh row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Profile, error) {
	if len(fields) > 0 {
		if err := r.UpdateScoped(ctx, &models.Profile{}, repo.Where("id = ?", id), fields, profileNotFound, "update profile"); err != nil {
			return nil, err
		}
	}
	return r.FindByID(ctx, id)
}

// UpdateRole changes the profile's role.
func (r *Repository) UpdateRole(ctx context.Context, id uuid.UUID, role enums.Role) (*models.Profile, error) {
	return r.Update(ctx, id, map[string]any{"role": role})
}
