package staff

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/kisumuhealth/frontdesk/pkg/logging"
)

const defaultSessionTTL = 12 * time.Hour

// Session is what a successful login hands back to the client.
type Session struct {
	Token      string    `json:"token"`
	Role       string    `json:"role"`
	Department string    `json:"department"`
	ExpiresAt  time.Time `json:"expires_at"`
	// SessionID is the token's jti. It keys the queue session state.
	SessionID string `json:"-"`
}

// Claims is the verified identity carried through a request.
type Claims struct {
	Username   string
	Role       string
	Department string
	SessionID  string
	ExpiresAt  time.Time
}

type tokenClaims struct {
	Role       string `json:"role"`
	Department string `json:"department"`
	jwt.RegisteredClaims
}

// Authenticator issues and verifies staff session tokens.
type Authenticator struct {
	store  Store
	secret []byte
	ttl    time.Duration
	logger *logging.Logger
}

// NewAuthenticator wires the authenticator. An empty secret disables login
// and verification rather than panicking, so the public booking surface can
// run without staff auth configured.
func NewAuthenticator(store Store, secret string, ttl time.Duration, logger *logging.Logger) *Authenticator {
	if store == nil {
		panic("staff: account store required")
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Authenticator{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		logger: logger,
	}
}

// SessionTTL reports how long issued tokens live.
func (a *Authenticator) SessionTTL() time.Duration { return a.ttl }

// Login checks the credentials and issues a signed session token.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*Session, error) {
	if len(a.secret) == 0 {
		return nil, ErrAuthDisabled
	}
	account, err := a.store.GetByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	expiresAt := now.Add(a.ttl)
	sessionID := uuid.NewString()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Role:       account.Role,
		Department: account.Department,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.Username,
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return nil, fmt.Errorf("staff: failed to sign session token: %w", err)
	}

	a.logger.Info("staff: login",
		"username", account.Username,
		"role", account.Role,
		"department", account.Department,
		"session_id", sessionID,
	)
	return &Session{
		Token:      signed,
		Role:       account.Role,
		Department: account.Department,
		ExpiresAt:  expiresAt,
		SessionID:  sessionID,
	}, nil
}

// Verify parses and validates a session token.
func (a *Authenticator) Verify(tokenString string) (*Claims, error) {
	if len(a.secret) == 0 {
		return nil, ErrAuthDisabled
	}
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	out := &Claims{
		Username:   claims.Subject,
		Role:       claims.Role,
		Department: claims.Department,
		SessionID:  claims.ID,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
