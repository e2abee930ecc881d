package customers

import (
	"context"

	"github.com/divinestore/storefront-backend/internal/repo"
	"github.com/divinestore/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const customerNotFound = "customer not found"

// Repository persists reseller customers. Every method is keyed by the owning
// reseller so a row can never be addressed without it.
type Repository struct {
	repo.Base
}

// NewRepository binds the repository to the provided connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts the customer under its reseller.
func (r *Repository) Create(ctx context.Context, customer *models.ResellerCustomer) error {
	if err := r.DB(ctx).Create(customer).Error; err != nil {
		return repo.MapError(err, customerNotFound, "create customer")
	}
	return nil
}

// Find loads one customer owned by the reseller.
func (r *Repository) Find(ctx context.Context, resellerID, id uuid.UUID) (*models.ResellerCustomer, error) {
	var customer models.ResellerCustomer
	err := r.DB(ctx).
		Where("reseller_id = ? AND id = ?", resellerID, id).
		First(&customer).Error
	if err != nil {
		return nil, repo.MapError(err, customerNotFound, "load customer")
	}
	return &customer, nil
}

// List returns the reseller's customers, newest first.
func (r *Repository) List(ctx context.Context, resellerID uuid.UUID) ([]models.ResellerCustomer, error) {
	var rows []models.ResellerCustomer
	err := r.DB(ctx).
		Where("reseller_id = ?", resellerID).
		Order("created_at DESC").
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, repo.MapError(err, customerNotFound, "list customers")
	}
	return rows, nil
}

// Update applies the column map to the reseller's customer.
func (r *Repository) Update(ctx context.Context, resellerID, id uuid.UUID, fields map[string]any) (*models.ResellerCustomer, error) {
	if len(fields) > 0 {
		if err := r.UpdateScoped(ctx, &models.ResellerCustomer{}, ownedBy(resellerID, id), fields, customerNotFound, "update customer"); err != nil {
			return nil, err
		}
	}
	return r.Find(ctx, resellerID, id)
}

// Delete removes the reseller's customer; a missing row is NOT_FOUND.
func (r *Repository) Delete(ctx context.Context, resellerID, id uuid.UUID) error {
	return r.DeleteScoped(ctx, &models.ResellerCustomer{}, ownedBy(resellerID, id), customerNotFound, "delete customer")
}

// ownedBy keeps every customer write inside the reseller's partition.
func ownedBy(resellerID, id uuid.UUID) repo.Scope {
	return repo.Where("reseller_id = ? AND id = ?", resellerID, id)
}
