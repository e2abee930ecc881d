package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgauth "github.com/divinestore/storefront-backend/pkg/auth"
	"github.com/divinestore/storefront-backend/pkg/auth/session"
	"github.com/divinestore/storefront-backend/pkg/config"
	"github.com/divinestore/storefront-backend/pkg/db/models"
	"github.com/divinestore/storefront-backend/pkg/enums"
	pkgerrors "github.com/divinestore/storefront-backend/pkg/errors"
	"github.com/divinestore/storefront-backend/pkg/google"
	"github.com/divinestore/storefront-backend/pkg/logger"
	"github.com/divinestore/storefront-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	invalidCredentialsMessage = "invalid credentials"
	minPasswordLength         = 8
)

// Store is the persistence surface the provider needs.
type Store interface {
	Create(ctx context.Context, identity *models.Identity) error
	FindByEmail(ctx context.Context, email string) (*models.Identity, error)
	FindByGoogleSubject(ctx context.Context, subject string) (*models.Identity, error)
	LinkGoogleSubject(ctx context.Context, id uuid.UUID, subject string) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

type sessionManager interface {
	Open(ctx context.Context, identityID uuid.UUID) (session.Grant, error)
	Rotate(ctx context.Context, identityID uuid.UUID, oldAccessID, provided string) (session.Grant, error)
	Revoke(ctx context.Context, accessID string) error
}

type tokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*google.Identity, error)
}

// Session is a live server-side session for one identity. The access token is
// minted separately once the caller knows which role to stamp into it.
type Session struct {
	IdentityID   uuid.UUID
	Email        string
	AccessID     string
	RefreshToken string
}

// CreateInput describes a new identity. GoogleSubject may stand in for a password.
type CreateInput struct {
	Email         string
	Password      string
	GoogleSubject *string
}

// ProviderParams bundles the provider dependencies. RepoFactory lets callers
// run Create inside their own transaction; Google is optional.
type ProviderParams struct {
	Store          Store
	RepoFactory    func(tx *gorm.DB) Store
	Sessions       sessionManager
	Google         tokenVerifier
	PasswordConfig config.PasswordConfig
	JWTConfig      config.JWTConfig
	Clock          func() time.Time
	Logger         *logger.Logger
}

// Provider authenticates identities and owns their sessions.
type Provider struct {
	store       Store
	repoFactory func(tx *gorm.DB) Store
	sessions    sessionManager
	google      tokenVerifier
	passwordCfg config.PasswordConfig
	jwtCfg      config.JWTConfig
	now         func() time.Time
	logg        *logger.Logger
}

// NewProvider validates dependencies and builds the provider.
func NewProvider(params ProviderParams) (*Provider, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("identity store is required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	factory := params.RepoFactory
	if factory == nil {
		factory = func(tx *gorm.DB) Store { return NewRepository(tx) }
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Provider{
		store:       params.Store,
		repoFactory: factory,
		sessions:    params.Sessions,
		google:      params.Google,
		passwordCfg: params.PasswordConfig,
		jwtCfg:      params.JWTConfig,
		now:         clock,
		logg:        params.Logger,
	}, nil
}

// NormalizeEmail lower-cases and trims an email for identity lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create writes a new identity. When tx is non-nil the write joins that transaction.
func (p *Provider) Create(ctx context.Context, tx *gorm.DB, input CreateInput) (*models.Identity, error) {
	email := NormalizeEmail(input.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	identity := &models.Identity{Email: email}
	if input.GoogleSubject != nil && strings.TrimSpace(*input.GoogleSubject) != "" {
		subject := strings.TrimSpace(*input.GoogleSubject)
		identity.GoogleSubject = &subject
	}
	if identity.GoogleSubject == nil || input.Password != "" {
		if len(input.Password) < minPasswordLength {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
		}
		hash, err := security.HashPassword(input.Password, p.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		identity.PasswordHash = &hash
	}

	store := p.store
	if tx != nil {
		store = p.repoFactory(tx)
	}

	if _, err := store.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeIdentityExists, "identity already exists")
	} else if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		return nil, err
	}

	if err := store.Create(ctx, identity); err != nil {
		return nil, err
	}
	return identity, nil
}

// Exists reports whether an identity is registered for the email.
func (p *Provider) Exists(ctx context.Context, email string) (bool, error) {
	_, err := p.store.FindByEmail(ctx, NormalizeEmail(email))
	switch {
	case err == nil:
		return true, nil
	case pkgerrors.IsCode(err, pkgerrors.CodeNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Authenticate checks email and password and opens a session.
func (p *Provider) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	normalized := NormalizeEmail(email)
	if normalized == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
	}

	identity, err := p.store.FindByEmail(ctx, normalized)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
		}
		return nil, err
	}
	if identity.PasswordHash == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
	}

	valid, err := security.VerifyPassword(password, *identity.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
	}
	p.upgradeHash(ctx, identity, password)
	return p.open(ctx, identity)
}

// upgradeHash re-encodes a verified password when the configured argon2
// costs have moved. Login still succeeds if the write fails.
func (p *Provider) upgradeHash(ctx context.Context, identity *models.Identity, password string) {
	if !security.NeedsRehash(*identity.PasswordHash, p.passwordCfg) {
		return
	}
	hash, err := security.HashPassword(password, p.passwordCfg)
	if err == nil {
		err = p.store.UpdatePasswordHash(ctx, identity.ID, hash)
	}
	if err != nil {
		if p.logg != nil {
			p.logg.Warn(p.logg.WithField(ctx, "identity_id", identity.ID.String()), "password rehash failed: "+err.Error())
		}
		return
	}
	identity.PasswordHash = &hash
}

// AuthenticateExternal verifies a Google ID token and opens a session for the
// identity it belongs to. An identity found by verified email is linked to the
// Google account on first use; no identity is created here.
func (p *Provider) AuthenticateExternal(ctx context.Context, idToken string) (*Session, error) {
	if p.google == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "google sign-in not configured")
	}
	principal, err := p.google.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}

	identity, err := p.store.FindByGoogleSubject(ctx, principal.Subject)
	if err == nil {
		return p.open(ctx, identity)
	}
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		return nil, err
	}

	identity, err = p.store.FindByEmail(ctx, NormalizeEmail(principal.Email))
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
		}
		return nil, err
	}
	if identity.GoogleSubject != nil && *identity.GoogleSubject != principal.Subject {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
	}
	if identity.GoogleSubject == nil {
		if err := p.store.LinkGoogleSubject(ctx, identity.ID, principal.Subject); err != nil {
			return nil, err
		}
		subject := principal.Subject
		identity.GoogleSubject = &subject
	}
	return p.open(ctx, identity)
}

// Open starts a session for an identity that was just created by the caller.
func (p *Provider) Open(ctx context.Context, identity *models.Identity) (*Session, error) {
	if identity == nil || identity.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "identity required to open session")
	}
	return p.open(ctx, identity)
}

func (p *Provider) open(ctx context.Context, identity *models.Identity) (*Session, error) {
	now := p.now().UTC()
	if err := p.store.UpdateLastLogin(ctx, identity.ID, now); err != nil {
		return nil, err
	}
	identity.LastLoginAt = &now

	grant, err := p.sessions.Open(ctx, identity.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeBackendUnavailable, err, "store session")
	}
	return &Session{
		IdentityID:   identity.ID,
		Email:        identity.Email,
		AccessID:     grant.AccessID,
		RefreshToken: grant.RefreshToken,
	}, nil
}

// MintAccessToken signs the JWT for an open session.
func (p *Provider) MintAccessToken(sess *Session, role enums.Role) (string, error) {
	token, err := pkgauth.MintAccessToken(p.jwtCfg, p.now().UTC(), pkgauth.AccessTokenPayload{
		UserID: sess.IdentityID,
		Role:   role,
		JTI:    sess.AccessID,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return token, nil
}

// Refresh rotates a session given its access id and refresh token.
func (p *Provider) Refresh(ctx context.Context, identityID uuid.UUID, accessID, refreshToken string) (*Session, error) {
	grant, err := p.sessions.Rotate(ctx, identityID, accessID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeBackendUnavailable, err, "rotate session")
	}
	return &Session{IdentityID: identityID, AccessID: grant.AccessID, RefreshToken: grant.RefreshToken}, nil
}

// Revoke ends the session. Revoking an unknown or already revoked session succeeds.
func (p *Provider) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return nil
	}
	if err := p.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeBackendUnavailable, err, "revoke session")
	}
	return nil
}
