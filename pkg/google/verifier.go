package google

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/api/idtoken"

	pkgerrors "github.com/divinestore/storefront-backend/pkg/errors"
)

var errClientIDRequired = errors.New("google oauth client id is required")

// Identity is the verified principal carried by a Google ID token.
type Identity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}

type payloadValidator interface {
	Validate(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)
}

// Verifier checks Google-issued ID tokens against the configured OAuth client.
type Verifier struct {
	validator payloadValidator
	clientID  string
}

// NewVerifier builds a verifier backed by Google's published signing keys.
func NewVerifier(ctx context.Context, clientID string) (*Verifier, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, errClientIDRequired
	}
	validator, err := idtoken.NewValidator(ctx)
	if err != nil {
		return nil, err
	}
	return &Verifier{validator: validator, clientID: clientID}, nil
}

// Verify validates the token signature, audience and expiry, and requires a
// verified email address.
func (v *Verifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	if v == nil || v.validator == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "google sign-in not configured")
	}
	if strings.TrimSpace(idToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "id token is required")
	}

	payload, err := v.validator.Validate(ctx, idToken, v.clientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInvalidCredentials, err, "google id token rejected")
	}

	identity := &Identity{
		Subject:       payload.Subject,
		Email:         strings.ToLower(strings.TrimSpace(claimString(payload.Claims, "email"))),
		EmailVerified: claimBool(payload.Claims, "email_verified"),
		Name:          claimString(payload.Claims, "name"),
	}
	if identity.Subject == "" || identity.Email == "" || !identity.EmailVerified {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, "google account email is not verified")
	}
	return identity, nil
}

func claimString(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

func claimBool(claims map[string]interface{}, key string) bool {
	switch v := claims[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	default:
		return false
	}
}
