package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperator_IssueAndParse(t *testing.T) {
	op := NewOperator("s3cret")

	token, err := op.Issue("alice", time.Hour)
	require.NoError(t, err)

	claims, err := op.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, RoleOperator, claims.Role)
}

func TestOperator_Rejects(t *testing.T) {
	op := NewOperator("s3cret")
	valid, err := op.Issue("alice", time.Hour)
	require.NoError(t, err)

	expired, err := op.Issue("alice", time.Minute)
	require.NoError(t, err)

	wrongRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Role: "participant",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Role:             RoleOperator,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer},
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	later := NewOperator("s3cret")
	later.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	tests := []struct {
		name  string
		op    *Operator
		token string
	}{
		{name: "other secret", op: NewOperator("other"), token: valid},
		{name: "expired", op: later, token: expired},
		{name: "wrong role", op: op, token: wrongRole},
		{name: "no expiry", op: op, token: noExpiry},
		{name: "garbage", op: op, token: "not-a-token"},
		{name: "disabled", op: NewOperator(""), token: valid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.op.Parse(tt.token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidToken))
		})
	}
}

func TestOperator_IssueRequiresSecret(t *testing.T) {
	_, err := NewOperator("").Issue("alice", time.Hour)
	assert.Error(t, err)

	_, err = NewOperator("s3cret").Issue("alice", 0)
	assert.Error(t, err)

	var nilOp *Operator
	assert.False(t, nilOp.Enabled())
}
