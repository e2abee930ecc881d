package identity

import (
	"context"
	"time"

	"github.com/divinestore/storefront-backend/internal/repo"
	"github.com/divinestore/storefront-backend/pkg/db"
	"github.com/divinestore/storefront-backend/pkg/db/models"
	pkgerrors "github.com/divinestore/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const identityNotFound = "identity not found"

// Repository persists identities.
type Repository struct {
	repo.Base
}

// NewRepository binds the repository to a connection or transaction.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

// Create inserts the identity; a taken email or google subject is IDENTITY_ALREADY_EXISTS.
func (r *Repository) Create(ctx context.Context, identity *models.Identity) error {
	if err := r.DB(ctx).Create(identity).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeIdentityExists, err, "identity already exists")
		}
		return repo.MapError(err, identityNotFound, "create identity")
	}
	return nil
}

// FindByEmail loads the identity for an already-normalized email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	var identity models.Identity
	if err := r.DB(ctx).Where("email = ?", email).First(&identity).Error; err != nil {
		return nil, repo.MapError(err, identityNotFound, "load identity")
	}
	return &identity, nil
}

// FindByGoogleSubject loads the identity linked to a Google account.
func (r *Repository) FindByGoogleSubject(ctx context.Context, subject string) (*models.Identity, error) {
	var identity models.Identity
	if err := r.DB(ctx).Where("google_subject = ?", subject).First(&identity).Error; err != nil {
		return nil, repo.MapError(err, identityNotFound, "load identity by google subject")
	}
	return &identity, nil
}

// LinkGoogleSubject records the Google account on an existing identity.
func (r *Repository) LinkGoogleSubject(ctx context.Context, id uuid.UUID, subject string) error {
	err := r.DB(ctx).
		Model(&models.Identity{}).
		Where("id = ?", id).
		UpdateColumn("google_subject", subject).Error
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeIdentityExists, err, "google account already linked")
		}
		return repo.MapError(err, identityNotFound, "link google subject")
	}
	return nil
}

// UpdateLastLogin refreshes the identity's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	err := r.DB(ctx).
		Model(&models.Identity{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
	return repo.MapError(err, identityNotFound, "update last login")
}

// UpdatePasswordHash replaces the stored argon2id hash.
func (r *Repository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.UpdateScoped(ctx, &models.Identity{}, repo.Where("id = ?", id), map[string]any{"password_hash": hash}, identityNotFound, "update password hash")
}
