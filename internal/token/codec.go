package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/models"
	appErrors "github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/errors"
)

// Claims is the signed payload carried by every bearer token: a faithful
// copy of the user row at issuance time. Claims are never refreshed until
// the user logs in again.
type Claims struct {
	UserID string          `json:"id"`
	Email  string          `json:"email"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Codec signs and verifies claims with a symmetric secret shared by every
// backend service. It is stateless; validity is proven purely by signature
// and expiry, so there is no revocation.
type Codec struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewCodec constructs a Codec. A zero ttl falls back to seven days, the
// token lifetime used across the mesh.
func NewCodec(secret string, ttl time.Duration, issuer string) *Codec {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Codec{secret: []byte(secret), ttl: ttl, issuer: issuer, now: time.Now}
}

// Sign issues a token for the given user.
func (c *Codec) Sign(user *models.User) (string, error) {
	issuedAt := c.now().UTC()
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(c.ttl)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning its claims. Bad signature,
// malformed structure and expiry all collapse into the same invalid kind.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return c.now() }))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidCredential.Code, appErrors.ErrInvalidCredential.Status, appErrors.ErrInvalidCredential.Message)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredential, "invalid token claims")
	}

	return claims, nil
}
