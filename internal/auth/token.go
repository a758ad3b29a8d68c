package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/researcher-directory/internal/domain"
)

// Tagged verification results. Parse reports them so the request log can tell
// an expired session from a tampered one; Verify collapses both to nil.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// TokenManager issues and validates the signed session credential.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a new manager. The secret must be validated by the
// caller before construction; an empty secret is a configuration error, not a
// runtime condition this type handles.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Claims describes the credential payload carried in the session cookie.
type Claims struct {
	Email           string      `json:"email"`
	Username        string      `json:"username"`
	Role            domain.Role `json:"role"`
	FirstName       string      `json:"firstName"`
	LastName        string      `json:"lastName"`
	FullName        string      `json:"fullName"`
	Institution     string      `json:"institution,omitempty"`
	FieldOfResearch string      `json:"fieldOfResearch,omitempty"`
	ProfilePicture  *string     `json:"profilePicture,omitempty"`
	ImageKey        *string     `json:"imageKey,omitempty"`
	jwt.RegisteredClaims
}

// NewClaims builds the credential payload from a persisted researcher record.
func NewClaims(r *domain.Researcher) *Claims {
	return &Claims{
		Email:           r.Email,
		Username:        r.Username,
		Role:            r.Role,
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		FullName:        r.FullName(),
		Institution:     r.Institution,
		FieldOfResearch: r.FieldOfResearch,
		ProfilePicture:  r.ProfilePicture,
		ImageKey:        r.ImageKey,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: r.ID,
		},
	}
}

// Issue signs the claims, stamping issued-at and expiry from the manager's clock.
func (tm *TokenManager) Issue(claims *Claims) (string, time.Time, error) {
	now := tm.now()
	expiresAt := now.Add(tm.ttl)
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(expiresAt)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Parse validates the token and returns its claims, distinguishing an expired
// credential from a malformed or tampered one.
func (tm *TokenManager) Parse(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return tm.now() }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if !claims.Role.Valid() {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// Verify is the collapsing contract used by the gate and handlers: any failure
// (absent, expired, tampered, malformed) is treated identically as no
// credential. Callers must not try to distinguish the cases.
func (tm *TokenManager) Verify(tokenStr string) *Claims {
	if tokenStr == "" {
		return nil
	}
	claims, err := tm.Parse(tokenStr)
	if err != nil {
		return nil
	}
	return claims
}
