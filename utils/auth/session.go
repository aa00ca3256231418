package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token has expired")
	ErrInvalidClaims  = errors.New("invalid token claims")
	ErrSessionRevoked = errors.New("session has been revoked")
)

// SessionCookieName is the cookie the session token travels in.
const SessionCookieName = "session"

// DefaultSessionTTL is how long a session lives without a logout.
const DefaultSessionTTL = 24 * time.Hour

// SessionConfig holds session token configuration
type SessionConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// SessionClaims are the claims carried by a session token. The token ID
// (jti) names the server-side session record, so a signed token alone is
// not enough to authenticate once the record is gone.
type SessionClaims struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// SessionManager issues and validates session tokens backed by a
// revocable server-side store.
type SessionManager struct {
	config SessionConfig
	store  SessionStore
}

// NewSessionManager creates a new session manager
func NewSessionManager(config SessionConfig, store SessionStore) *SessionManager {
	if config.TTL <= 0 {
		config.TTL = DefaultSessionTTL
	}
	return &SessionManager{
		config: config,
		store:  store,
	}
}

// TTL returns the configured session lifetime.
func (m *SessionManager) TTL() time.Duration {
	return m.config.TTL
}

// Issue creates a server-side session record and returns a signed token
// referencing it.
func (m *SessionManager) Issue(ctx context.Context, userID uint, username string) (string, error) {
	now := time.Now()
	expiresAt := now.Add(m.config.TTL)
	jti := uuid.New().String()

	claims := SessionClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.config.Issuer,
			Subject:   username,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(m.config.Secret))
	if err != nil {
		return "", err
	}

	if err := m.store.Put(ctx, jti, userID, m.config.TTL); err != nil {
		return "", err
	}

	return signedToken, nil
}

// Validate verifies the token signature and checks that the session
// record still exists.
func (m *SessionManager) Validate(ctx context.Context, tokenString string) (*SessionClaims, error) {
	claims, err := m.parse(tokenString)
	if err != nil {
		return nil, err
	}

	storedUserID, err := m.store.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrSessionRevoked
		}
		return nil, err
	}
	if storedUserID != claims.UserID {
		return nil, ErrInvalidClaims
	}

	return claims, nil
}

// Revoke deletes the session record so the token stops authenticating.
// An expired or malformed token is treated as already logged out.
func (m *SessionManager) Revoke(ctx context.Context, tokenString string) error {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, &SessionClaims{})
	if err != nil {
		return nil
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || claims.ID == "" {
		return nil
	}
	return m.store.Delete(ctx, claims.ID)
}

func (m *SessionManager) parse(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(m.config.Secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}

	return claims, nil
}
