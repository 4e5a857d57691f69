package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer       = "story-survey-service"
	RoleOperator = "operator"
)

var ErrInvalidToken = errors.New("invalid operator token")

// Claims identifies an operator allowed to read archived submissions.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Operator signs and verifies HS256 operator tokens with a shared secret.
type Operator struct {
	secret []byte
	now    func() time.Time
}

func NewOperator(secret string) *Operator {
	return &Operator{secret: []byte(secret), now: time.Now}
}

// Enabled reports whether a secret is configured.
func (o *Operator) Enabled() bool {
	return o != nil && len(o.secret) > 0
}

// Issue returns a token for subject that expires after ttl.
func (o *Operator) Issue(subject string, ttl time.Duration) (string, error) {
	if !o.Enabled() {
		return "", errors.New("operator secret is not configured")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("token lifetime must be positive, got %s", ttl)
	}
	now := o.now()
	claims := &Claims{
		Role: RoleOperator,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(o.secret)
}

// Parse verifies the signature, issuer, expiry and role of a token.
func (o *Operator) Parse(token string) (*Claims, error) {
	if !o.Enabled() {
		return nil, ErrInvalidToken
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return o.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(o.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Role != RoleOperator {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
