package auth

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pulse-reports/backend/internal/models"
)

// Verification failures. Callers map all of them to a 401; the distinct values
// exist for diagnostics and for the machine-readable response code.
var (
	ErrMalformed     = errors.New("token malformed")
	ErrBadSignature  = errors.New("token signature invalid")
	ErrExpired       = errors.New("token expired")
	ErrTenantMissing = errors.New("token carries no tenant id")
)

// TenantRef is a tenant id as embedded in a token. Older issuers encoded the
// tenant as an object ({"id": "..."}) rather than a bare string; both forms
// decode to the same id.
type TenantRef struct {
	ID uuid.UUID
}

// MarshalJSON always emits the canonical string form.
func (t TenantRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.ID.String())
}

// UnmarshalJSON accepts either "uuid" or {"id": "uuid"}.
func (t *TenantRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return t.set(s)
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	return t.set(obj.ID)
}

func (t *TenantRef) set(s string) error {
	if s == "" {
		t.ID = uuid.Nil
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

// Claims holds the decoded token payload: identity, tenant and role. Claims
// are only trusted when produced by TokenService.Verify.
type Claims struct {
	Email    string      `json:"email"`
	TenantID TenantRef   `json:"tid"`
	Role     models.Role `json:"role"`
	IsAdmin  bool        `json:"is_admin"`
	jwt.RegisteredClaims
}

// Admin reports administrator capability. The role string and the is_admin
// flag are OR-ed so tokens issued under either convention keep working.
func (c *Claims) Admin() bool {
	return c.IsAdmin || c.Role.IsAdmin()
}

// UserID returns the subject as a UUID.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// TokenService signs and verifies identity tokens against a single shared
// secret. It holds no mutable state and is safe for concurrent use.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a token service. The secret comes from process
// configuration at startup and is immutable for the service lifetime.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Generate creates a signed token for the user with the configured TTL.
func (s *TokenService) Generate(u *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:    u.Email,
		TenantID: TenantRef{ID: u.TenantID},
		Role:     u.Role,
		IsAdmin:  u.Role.IsAdmin(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates a token, returning Claims reconstructed exactly
// from the signed payload. Failures are classified as ErrMalformed,
// ErrBadSignature, ErrExpired or ErrTenantMissing; anything unexpected is
// reported as ErrMalformed so verification never fails open.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadSignature
		}
		return s.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrBadSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		default:
			return nil, ErrMalformed
		}
	}
	if !token.Valid {
		return nil, ErrBadSignature
	}
	if claims.TenantID.ID == uuid.Nil {
		return nil, ErrTenantMissing
	}
	return claims, nil
}
