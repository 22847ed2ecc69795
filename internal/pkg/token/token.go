package token

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"wastetrack/internal/domain"
)

const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID    int64  `json:"user_id"`
	Role      string `json:"role,omitempty"`
	BranchID  *int64 `json:"branch_id,omitempty"`
	SessionID string `json:"sid"`
	Kind      string `json:"kind"`
	jwtlib.RegisteredClaims
}

// Manager signs and verifies the two token kinds with isolated secrets:
// a leaked access secret must never allow forging refresh tokens.
type Manager struct {
	issuer        string
	audience      string
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewManager(issuer, audience, accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*Manager, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("token secrets must not be empty")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}
	return &Manager{
		issuer:        issuer,
		audience:      audience,
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

func (m *Manager) AccessTTL() time.Duration  { return m.accessTTL }
func (m *Manager) RefreshTTL() time.Duration { return m.refreshTTL }

func (m *Manager) IssueAccessToken(user *domain.User, sessionID, jti string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    user.ID,
		Role:      string(user.Role),
		BranchID:  user.BranchID,
		SessionID: sessionID,
		Kind:      KindAccess,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    m.issuer,
			Audience:  jwtlib.ClaimStrings{m.audience},
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(m.accessTTL)),
			ID:        jti,
		},
	}
	tok := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return tok.SignedString(m.accessSecret)
}

// IssueRefreshToken embeds the caller-supplied jti, which must already be
// bound to the session row before the token leaves the server.
func (m *Manager) IssueRefreshToken(userID int64, sessionID, jti string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		SessionID: sessionID,
		Kind:      KindRefresh,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    m.issuer,
			Audience:  jwtlib.ClaimStrings{m.audience},
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(m.refreshTTL)),
			ID:        jti,
		},
	}
	tok := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return tok.SignedString(m.refreshSecret)
}

func (m *Manager) VerifyAccessToken(raw string) (*Claims, error) {
	return m.verify(raw, m.accessSecret, KindAccess)
}

func (m *Manager) VerifyRefreshToken(raw string) (*Claims, error) {
	return m.verify(raw, m.refreshSecret, KindRefresh)
}

func (m *Manager) verify(raw string, secret []byte, kind string) (*Claims, error) {
	tok, err := jwtlib.ParseWithClaims(raw, &Claims{}, func(t *jwtlib.Token) (any, error) {
		return secret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithIssuer(m.issuer),
		jwtlib.WithAudience(m.audience),
		jwtlib.WithExpirationRequired(),
	)
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if claims.Kind != kind {
		return nil, ErrInvalidToken
	}
	if claims.SessionID == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
