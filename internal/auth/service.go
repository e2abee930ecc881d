package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/divinestore/storefront-backend/internal/identity"
	"github.com/divinestore/storefront-backend/internal/profiles"
	pkgauth "github.com/divinestore/storefront-backend/pkg/auth"
	"github.com/divinestore/storefront-backend/pkg/config"
	"github.com/divinestore/storefront-backend/pkg/db/models"
	"github.com/divinestore/storefront-backend/pkg/enums"
	pkgerrors "github.com/divinestore/storefront-backend/pkg/errors"
	"github.com/divinestore/storefront-backend/pkg/logger"
	"github.com/divinestore/storefront-backend/pkg/metrics"
	"github.com/divinestore/storefront-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const outcomeAdmitted = "admitted"

// Service is the authorization gate: it decides whether an authenticated
// identity may act in a given role, and tears down the session when it may not.
type Service interface {
	AuthenticateAs(ctx context.Context, creds Credentials, role enums.Role) (*SessionResponse, error)
	AuthenticateExternalAdmin(ctx context.Context, idToken string) (*SessionResponse, error)
	RegisterReseller(ctx context.Context, req RegistrationRequest) (*SessionResponse, error)
	BootstrapAdmin(ctx context.Context, req BootstrapRequest) (*profiles.ProfileDTO, error)
	Refresh(ctx context.Context, req RefreshRequest) (*SessionResponse, error)
	Logout(ctx context.Context, accessID string) error
	AuthorizeSession(ctx context.Context, userID uuid.UUID, accessID string, role enums.Role) (*profiles.ProfileDTO, error)
}

type identityProvider interface {
	Create(ctx context.Context, tx *gorm.DB, input identity.CreateInput) (*models.Identity, error)
	Exists(ctx context.Context, email string) (bool, error)
	Authenticate(ctx context.Context, email, password string) (*identity.Session, error)
	AuthenticateExternal(ctx context.Context, idToken string) (*identity.Session, error)
	Open(ctx context.Context, ident *models.Identity) (*identity.Session, error)
	MintAccessToken(sess *identity.Session, role enums.Role) (string, error)
	Refresh(ctx context.Context, identityID uuid.UUID, accessID, refreshToken string) (*identity.Session, error)
	Revoke(ctx context.Context, accessID string) error
}

type profileReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

type profileWriter interface {
	Create(ctx context.Context, profile *models.Profile) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams bundles the dependencies required to build the gate.
type ServiceParams struct {
	Identity           identityProvider
	Profiles           profileReader
	TxRunner           txRunner
	ProfileRepoFactory func(tx *gorm.DB) profileWriter
	AdminConfig        config.AdminConfig
	JWTConfig          config.JWTConfig
	Metrics            *metrics.AuthMetrics
	Logger             *logger.Logger
}

type service struct {
	identity    identityProvider
	profiles    profileReader
	tx          txRunner
	profileRepo func(tx *gorm.DB) profileWriter
	adminEmail  string
	adminSecret string
	jwtCfg      config.JWTConfig
	metrics     *metrics.AuthMetrics
	logger      *logger.Logger
}

// NewService constructs the gate with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Identity == nil {
		return nil, fmt.Errorf("identity provider is required")
	}
	if params.Profiles == nil {
		return nil, fmt.Errorf("profile repository is required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	adminEmail := identity.NormalizeEmail(params.AdminConfig.Email)
	if adminEmail == "" {
		return nil, fmt.Errorf("admin email is required")
	}
	factory := params.ProfileRepoFactory
	if factory == nil {
		factory = func(tx *gorm.DB) profileWriter { return profiles.NewRepository(tx) }
	}
	return &service{
		identity:    params.Identity,
		profiles:    params.Profiles,
		tx:          params.TxRunner,
		profileRepo: factory,
		adminEmail:  adminEmail,
		adminSecret: params.AdminConfig.BootstrapSecret,
		jwtCfg:      params.JWTConfig,
		metrics:     params.Metrics,
		logger:      params.Logger,
	}, nil
}

func (s *service) AuthenticateAs(ctx context.Context, creds Credentials, role enums.Role) (*SessionResponse, error) {
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	sess, err := s.identity.Authenticate(ctx, creds.Email, creds.Password)
	if err != nil {
		s.observe(role, err)
		return nil, err
	}
	return s.admit(ctx, sess, role)
}

func (s *service) AuthenticateExternalAdmin(ctx context.Context, idToken string) (*SessionResponse, error) {
	sess, err := s.identity.AuthenticateExternal(ctx, idToken)
	if err != nil {
		s.observe(enums.RoleAdmin, err)
		return nil, err
	}
	return s.admit(ctx, sess, enums.RoleAdmin)
}

func (s *service) RegisterReseller(ctx context.Context, req RegistrationRequest) (*SessionResponse, error) {
	email := identity.NormalizeEmail(req.Email)
	if email == s.adminEmail {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "this email is reserved")
	}
	if strings.TrimSpace(req.DisplayName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "display_name is required")
	}

	var created *models.Identity
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ident, err := s.identity.Create(ctx, tx, identity.CreateInput{Email: email, Password: req.Password})
		if err != nil {
			return err
		}
		input := profiles.CreateInput{
			ID:            ident.ID,
			Email:         ident.Email,
			DisplayName:   req.DisplayName,
			Role:          enums.RoleReseller,
			Mobile:        req.Mobile,
			GovernmentID1: req.GovernmentID1,
			GovernmentID2: req.GovernmentID2,
			Address:       req.Address,
		}
		if err := profiles.ValidateCreate(input); err != nil {
			return err
		}
		if err := s.profileRepo(tx).Create(ctx, input.ToModel()); err != nil {
			return err
		}
		created = ident
		return nil
	})
	if err != nil {
		return nil, asDomainError(err, "register reseller")
	}

	logCtx := s.logger.WithUserID(ctx, created.ID.String())
	s.logger.Info(logCtx, "reseller registered")

	sess, err := s.identity.Open(ctx, created)
	if err != nil {
		return nil, err
	}
	return s.admit(ctx, sess, enums.RoleReseller)
}

func (s *service) BootstrapAdmin(ctx context.Context, req BootstrapRequest) (*profiles.ProfileDTO, error) {
	email := identity.NormalizeEmail(req.Email)
	if email != s.adminEmail || !security.SecretsEqual(s.adminSecret, req.Secret) {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, "invalid bootstrap credentials")
	}

	exists, err := s.identity.Exists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeAdminProvisioned, "admin already provisioned")
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = "Administrator"
	}

	var profile *models.Profile
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ident, err := s.identity.Create(ctx, tx, identity.CreateInput{Email: email, Password: req.Secret})
		if err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeIdentityExists) {
				return pkgerrors.Wrap(pkgerrors.CodeAdminProvisioned, err, "admin already provisioned")
			}
			return err
		}
		input := profiles.CreateInput{
			ID:          ident.ID,
			Email:       ident.Email,
			DisplayName: displayName,
			Role:        enums.RoleAdmin,
		}
		profile = input.ToModel()
		return s.profileRepo(tx).Create(ctx, profile)
	})
	if err != nil {
		return nil, asDomainError(err, "bootstrap admin")
	}

	s.logger.Warn(s.logger.WithUserID(ctx, profile.ID.String()), "admin account bootstrapped")
	return profiles.FromModel(profile), nil
}

func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*SessionResponse, error) {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwtCfg, req.AccessToken, time.Now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
	}
	sess, err := s.identity.Refresh(ctx, claims.UserID, claims.ID, req.RefreshToken)
	if err != nil {
		return nil, err
	}
	return s.admit(ctx, sess, claims.Role)
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	return s.identity.Revoke(ctx, accessID)
}

// AuthorizeSession re-reads the profile for an already authenticated request
// and revokes the session when it no longer qualifies for the role.
func (s *service) AuthorizeSession(ctx context.Context, userID uuid.UUID, accessID string, role enums.Role) (*profiles.ProfileDTO, error) {
	profile, err := s.check(ctx, userID, "", role)
	if err != nil {
		return nil, s.reject(ctx, &identity.Session{IdentityID: userID, AccessID: accessID}, role, err)
	}
	return profiles.FromModel(profile), nil
}

// admit runs the role checks for a freshly opened session. On any failure the
// session is revoked before the error is returned.
func (s *service) admit(ctx context.Context, sess *identity.Session, role enums.Role) (*SessionResponse, error) {
	profile, err := s.check(ctx, sess.IdentityID, sess.Email, role)
	if err != nil {
		return nil, s.reject(ctx, sess, role, err)
	}

	token, err := s.identity.MintAccessToken(sess, role)
	if err != nil {
		return nil, s.reject(ctx, sess, role, err)
	}

	s.metrics.Observe(string(role), outcomeAdmitted)
	return &SessionResponse{
		AccessToken:  token,
		RefreshToken: sess.RefreshToken,
		Profile:      profiles.FromModel(profile),
	}, nil
}

func (s *service) check(ctx context.Context, userID uuid.UUID, identityEmail string, role enums.Role) (*models.Profile, error) {
	profile, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeProfileNotFound, err, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeBackendUnavailable, err, "load profile")
	}
	if profile.Role != role {
		return nil, pkgerrors.New(pkgerrors.CodeRoleMismatch, fmt.Sprintf("account is not a %s", role))
	}
	if role == enums.RoleAdmin {
		if identity.NormalizeEmail(profile.Email) != s.adminEmail {
			return nil, pkgerrors.New(pkgerrors.CodeRoleMismatch, "account is not the administrator")
		}
		if identityEmail != "" && identity.NormalizeEmail(identityEmail) != s.adminEmail {
			return nil, pkgerrors.New(pkgerrors.CodeRoleMismatch, "account is not the administrator")
		}
	}
	return profile, nil
}

// reject revokes the session synchronously and then returns cause. A failed
// revocation wins over cause since the session may still be live.
func (s *service) reject(ctx context.Context, sess *identity.Session, role enums.Role, cause error) error {
	ctx = s.logger.WithFields(ctx, map[string]any{
		"user_id":        sess.IdentityID.String(),
		"requested_role": string(role),
	})
	if err := s.identity.Revoke(ctx, sess.AccessID); err != nil {
		s.logger.Error(ctx, "session revocation failed after rejected sign-in", err)
		failed := pkgerrors.Wrap(pkgerrors.CodeBackendUnavailable, err, "revoke session")
		s.observe(role, failed)
		return failed
	}
	s.observe(role, cause)
	s.logger.Warn(ctx, fmt.Sprintf("sign-in rejected: %v", cause))
	return cause
}

func (s *service) observe(role enums.Role, err error) {
	code := pkgerrors.CodeInternal
	if typed := pkgerrors.As(err); typed != nil {
		code = typed.Code()
	}
	s.metrics.Observe(string(role), strings.ToLower(string(code)))
}

func asDomainError(err error, op string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeBackendUnavailable, err, op)
}
