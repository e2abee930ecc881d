package profiles

import (
	"context"
	"fmt"
	"strings"

	"github.com/divinestore/storefront-backend/pkg/db/models"
	"github.com/divinestore/storefront-backend/pkg/enums"
	pkgerrors "github.com/divinestore/storefront-backend/pkg/errors"
	"github.com/google/uuid"
)

// Service exposes profile reads and the narrow set of allowed writes.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*ProfileDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ProfileDTO, error)
	GetByEmail(ctx context.Context, email string) (*ProfileDTO, error)
	List(ctx context.Context) ([]ProfileDTO, error)
	UpdateSelf(ctx context.Context, id uuid.UUID, input UpdateSelfInput) (*ProfileDTO, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role enums.Role) (*ProfileDTO, error)
}

type profileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	FindByEmail(ctx context.Context, email string) (*models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Profile, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role enums.Role) (*models.Profile, error)
}

type service struct {
	repo       profileRepository
	adminEmail string
}

// NewService builds the profile service. adminEmail is the only account the
// gate admits as admin, so it is the only profile that may hold that role.
func NewService(repo profileRepository, adminEmail string) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("profile repository required")
	}
	return &service{repo: repo, adminEmail: normalizeEmail(adminEmail)}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*ProfileDTO, error) {
	if err := ValidateCreate(input); err != nil {
		return nil, err
	}
	profile := input.ToModel()
	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, err
	}
	return FromModel(profile), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProfileDTO, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(profile), nil
}

func (s *service) GetByEmail(ctx context.Context, email string) (*ProfileDTO, error) {
	if strings.TrimSpace(email) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	profile, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return FromModel(profile), nil
}

func (s *service) List(ctx context.Context) ([]ProfileDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ProfileDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) UpdateSelf(ctx context.Context, id uuid.UUID, input UpdateSelfInput) (*ProfileDTO, error) {
	fields := map[string]any{}
	if input.DisplayName != nil {
		name := trimmed(*input.DisplayName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "display_name cannot be empty")
		}
		fields["display_name"] = name
	}
	if input.Mobile != nil {
		fields["mobile"] = trimmedPtr(input.Mobile)
	}
	if input.Address != nil {
		fields["address"] = trimmedPtr(input.Address)
	}

	profile, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	return FromModel(profile), nil
}

func (s *service) UpdateRole(ctx context.Context, id uuid.UUID, role enums.Role) (*ProfileDTO, error) {
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if role == enums.RoleAdmin {
		current, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if s.adminEmail == "" || normalizeEmail(current.Email) != s.adminEmail {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the configured admin account can hold the admin role")
		}
	}
	profile, err := s.repo.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, err
	}
	return FromModel(profile), nil
}

// ValidateCreate checks a profile before it is written.
func ValidateCreate(input CreateInput) error {
	if input.ID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "profile id is required")
	}
	if normalizeEmail(input.Email) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if trimmed(input.DisplayName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "display_name is required")
	}
	if !input.Role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimmed(value string) string {
	return strings.TrimSpace(value)
}

// trimmedPtr returns nil for blank values so optional columns stay NULL.
func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
