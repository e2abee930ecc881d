package identity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/divinestore/storefront-backend/pkg/auth/session"
	"github.com/divinestore/storefront-backend/pkg/config"
	"github.com/divinestore/storefront-backend/pkg/db/dbtest"
	pkgerrors "github.com/divinestore/storefront-backend/pkg/errors"
	"github.com/divinestore/storefront-backend/pkg/google"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var fastPasswords = config.PasswordConfig{
	ArgonMemoryKB:    8,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

var testJWT = config.JWTConfig{
	Secret:                 "test-secret",
	Issuer:                 "storefront-test",
	ExpirationMinutes:      15,
	RefreshTokenTTLMinutes: 60,
}

type memorySessions struct {
	mu      sync.Mutex
	entries map[string]string
	counter int
}

func newMemorySessions() *memorySessions {
	return &memorySessions{entries: map[string]string{}}
}

func (m *memorySessions) Open(_ context.Context, identityID uuid.UUID) (session.Grant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return m.put(identityID), nil
}

func (m *memorySessions) Rotate(_ context.Context, identityID uuid.UUID, oldAccessID, provided string) (session.Grant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.entries[oldAccessID]
	if !ok || stored != identityID.String()+"|"+provided {
		return session.Grant{}, session.ErrInvalidRefreshToken
	}
	delete(m.entries, oldAccessID)
	return m.put(identityID), nil
}

func (m *memorySessions) put(identityID uuid.UUID) session.Grant {
	grant := session.Grant{AccessID: session.NewAccessID()}
	grant.RefreshToken = grant.AccessID + "-refresh"
	m.entries[grant.AccessID] = identityID.String() + "|" + grant.RefreshToken
	return grant
}

func (m *memorySessions) Revoke(_ context.Context, accessID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, accessID)
	return nil
}

func (m *memorySessions) has(accessID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[accessID]
	return ok
}

type stubVerifier struct {
	identity *google.Identity
	err      error
}

func (s stubVerifier) Verify(context.Context, string) (*google.Identity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.identity, nil
}

var errVerifier = pkgerrors.Wrap(pkgerrors.CodeInvalidCredentials, errors.New("bad signature"), "invalid google token")

func newTestProvider(t *testing.T, verifier tokenVerifier) (*Provider, *memorySessions) {
	t.Helper()
	client := dbtest.Open(t)
	sessions := newMemorySessions()
	provider, err := NewProvider(ProviderParams{
		Store:          NewRepository(client.DB()),
		Sessions:       sessions,
		Google:         verifier,
		PasswordConfig: fastPasswords,
		JWTConfig:      testJWT,
		Clock:          func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return provider, sessions
}
