package customers

import (
	"context"
	"fmt"
	"strings"

	"github.com/divinestore/storefront-backend/pkg/db/models"
	"github.com/divinestore/storefront-backend/pkg/delhivery"
	pkgerrors "github.com/divinestore/storefront-backend/pkg/errors"
	"github.com/divinestore/storefront-backend/pkg/logger"
	"github.com/google/uuid"
)

// Service manages a reseller's private customer list. The reseller id always
// comes from the authenticated session, never from the request body.
type Service interface {
	Create(ctx context.Context, resellerID uuid.UUID, input CreateInput) (*CustomerDTO, error)
	Get(ctx context.Context, resellerID, id uuid.UUID) (*CustomerDTO, error)
	List(ctx context.Context, resellerID uuid.UUID) ([]CustomerDTO, error)
	Update(ctx context.Context, resellerID, id uuid.UUID, input UpdateInput) (*CustomerDTO, error)
	Delete(ctx context.Context, resellerID, id uuid.UUID) error
}

type customerRepository interface {
	Create(ctx context.Context, customer *models.ResellerCustomer) error
	Find(ctx context.Context, resellerID, id uuid.UUID) (*models.ResellerCustomer, error)
	List(ctx context.Context, resellerID uuid.UUID) ([]models.ResellerCustomer, error)
	Update(ctx context.Context, resellerID, id uuid.UUID, fields map[string]any) (*models.ResellerCustomer, error)
	Delete(ctx context.Context, resellerID, id uuid.UUID) error
}

type service struct {
	repo   customerRepository
	logger *logger.Logger
}

// NewService builds the customer service.
func NewService(repo customerRepository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logger: logg}, nil
}

func (s *service) Create(ctx context.Context, resellerID uuid.UUID, input CreateInput) (*CustomerDTO, error) {
	if resellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "reseller context required")
	}
	customer := &models.ResellerCustomer{
		ResellerID:      resellerID,
		Name:            strings.TrimSpace(input.Name),
		Email:           strings.ToLower(strings.TrimSpace(input.Email)),
		Mobile:          strings.TrimSpace(input.Mobile),
		ShippingAddress: strings.TrimSpace(input.ShippingAddress),
		Pincode:         strings.TrimSpace(input.Pincode),
	}
	if err := validateCustomer(customer); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	dto := FromModel(customer)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, resellerID, id uuid.UUID) (*CustomerDTO, error) {
	customer, err := s.repo.Find(ctx, resellerID, id)
	if err != nil {
		return nil, err
	}
	if err := s.assertOwner(ctx, resellerID, customer); err != nil {
		return nil, err
	}
	dto := FromModel(customer)
	return &dto, nil
}

func (s *service) List(ctx context.Context, resellerID uuid.UUID) ([]CustomerDTO, error) {
	rows, err := s.repo.List(ctx, resellerID)
	if err != nil {
		return nil, err
	}
	out := make([]CustomerDTO, 0, len(rows))
	for i := range rows {
		if err := s.assertOwner(ctx, resellerID, &rows[i]); err != nil {
			return nil, err
		}
		out = append(out, FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, resellerID, id uuid.UUID, input UpdateInput) (*CustomerDTO, error) {
	fields := map[string]any{}
	if input.Name != nil {
		fields["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		fields["email"] = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Mobile != nil {
		fields["mobile"] = strings.TrimSpace(*input.Mobile)
	}
	if input.ShippingAddress != nil {
		fields["shipping_address"] = strings.TrimSpace(*input.ShippingAddress)
	}
	if input.Pincode != nil {
		pin := strings.TrimSpace(*input.Pincode)
		if !delhivery.ValidPincode(pin) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "pincode must be six digits")
		}
		fields["pincode"] = pin
	}
	for column, value := range fields {
		if value == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s cannot be empty", column))
		}
	}

	customer, err := s.repo.Update(ctx, resellerID, id, fields)
	if err != nil {
		return nil, err
	}
	if err := s.assertOwner(ctx, resellerID, customer); err != nil {
		return nil, err
	}
	dto := FromModel(customer)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, resellerID, id uuid.UUID) error {
	return s.repo.Delete(ctx, resellerID, id)
}

// assertOwner fails loudly when the store hands back a row belonging to a
// different reseller. Such a row is never filtered out silently.
func (s *service) assertOwner(ctx context.Context, resellerID uuid.UUID, customer *models.ResellerCustomer) error {
	if customer.ResellerID == resellerID {
		return nil
	}
	err := pkgerrors.New(pkgerrors.CodeInternal, "customer ownership check failed")
	ctx = s.logger.WithFields(ctx, map[string]any{
		"reseller_id":       resellerID.String(),
		"row_reseller_id":   customer.ResellerID.String(),
		"customer_id":       customer.ID.String(),
		"integrity_failure": true,
	})
	s.logger.Error(ctx, "customer row returned for foreign reseller", err)
	return err
}

func validateCustomer(c *models.ResellerCustomer) error {
	switch {
	case c.Name == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	case c.Email == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	case c.Mobile == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "mobile is required")
	case c.ShippingAddress == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping_address is required")
	case !delhivery.ValidPincode(c.Pincode):
		return pkgerrors.New(pkgerrors.CodeValidation, "pincode must be six digits")
	}
	return nil
}
