package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/divinestore/storefront-backend/pkg/config"
	redisclient "github.com/divinestore/storefront-backend/pkg/redis"
)

const refreshTokenBytes = 32

var ErrInvalidRefreshToken = errors.New("invalid refresh token")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	AccessSessionKey(accessID string) string
}

// Grant is what a caller hands back to the client after a session opens or
// rotates: the jti to embed in the access token and the refresh secret.
type Grant struct {
	AccessID     string
	RefreshToken string
}

// entry is the value stored under the access id. Binding the identity keeps
// a leaked refresh token from being replayed under someone else's claims.
type entry struct {
	IdentityID uuid.UUID `json:"identity_id"`
	Token      string    `json:"token"`
	IssuedAt   time.Time `json:"issued_at"`
}

// Manager owns the server side of a session. A jti without a stored entry is
// a dead session.
type Manager struct {
	store sessionStore
	ttl   time.Duration
	now   func() time.Time
}

// AccessSessionChecker exposes the read-only surface needed by middleware.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// NewManager builds a Redis-backed manager. The refresh window has to
// outlive the access token or a client could never refresh.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	return newManager(client, cfg)
}

func newManager(store sessionStore, cfg config.JWTConfig) (*Manager, error) {
	ttl := cfg.RefreshTokenTTL()
	if ttl <= 0 {
		return nil, errors.New("refresh token ttl must be positive")
	}
	accessTTL := time.Duration(cfg.ExpirationMinutes) * time.Minute
	if ttl <= accessTTL {
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", ttl, accessTTL)
	}
	return &Manager{store: store, ttl: ttl, now: time.Now}, nil
}

// Open starts a session for the identity under a fresh access id.
func (m *Manager) Open(ctx context.Context, identityID uuid.UUID) (Grant, error) {
	if identityID == uuid.Nil {
		return Grant{}, errors.New("identity id is required")
	}
	return m.issue(ctx, identityID)
}

// Rotate exchanges a live refresh token for a new grant and kills the old
// access id. The token must match and belong to identityID.
func (m *Manager) Rotate(ctx context.Context, identityID uuid.UUID, oldAccessID, provided string) (Grant, error) {
	if identityID == uuid.Nil || strings.TrimSpace(oldAccessID) == "" || strings.TrimSpace(provided) == "" {
		return Grant{}, ErrInvalidRefreshToken
	}

	key := m.store.AccessSessionKey(oldAccessID)
	current, err := m.load(ctx, key)
	if err != nil {
		return Grant{}, err
	}
	if current.IdentityID != identityID ||
		subtle.ConstantTimeCompare([]byte(current.Token), []byte(provided)) != 1 {
		return Grant{}, ErrInvalidRefreshToken
	}

	grant, err := m.issue(ctx, identityID)
	if err != nil {
		return Grant{}, err
	}
	if err := m.store.Del(ctx, key); err != nil {
		return Grant{}, err
	}
	return grant, nil
}

// Revoke deletes the session. Revoking one that is already gone succeeds.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return errors.New("access id is required")
	}
	return m.store.Del(ctx, m.store.AccessSessionKey(accessID))
}

// HasSession reports whether the access id still has a stored entry.
func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if strings.TrimSpace(accessID) == "" {
		return false, errors.New("access id is required")
	}
	if _, err := m.store.Get(ctx, m.store.AccessSessionKey(accessID)); err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// NewAccessID produces the identifier used as the JWT jti and Redis key.
func NewAccessID() string {
	return uuid.NewString()
}

func (m *Manager) issue(ctx context.Context, identityID uuid.UUID) (Grant, error) {
	token, err := generateRefreshToken()
	if err != nil {
		return Grant{}, err
	}
	payload, err := json.Marshal(entry{IdentityID: identityID, Token: token, IssuedAt: m.now().UTC()})
	if err != nil {
		return Grant{}, fmt.Errorf("encode session: %w", err)
	}

	accessID := NewAccessID()
	if err := m.store.Set(ctx, m.store.AccessSessionKey(accessID), string(payload), m.ttl); err != nil {
		return Grant{}, err
	}
	return Grant{AccessID: accessID, RefreshToken: token}, nil
}

func (m *Manager) load(ctx context.Context, key string) (entry, error) {
	raw, err := m.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return entry{}, ErrInvalidRefreshToken
		}
		return entry{}, err
	}
	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return entry{}, ErrInvalidRefreshToken
	}
	return e, nil
}

func generateRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
