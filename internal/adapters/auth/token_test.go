package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTIssueVerifyRoundTrip(t *testing.T) {
	j := NewJWT("test-secret")

	token, err := j.Issue("alice", "user", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	principal, err := j.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", principal)
}

func TestJWTVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewJWT("secret-a").Issue("alice", "user", time.Hour)
	require.NoError(t, err)

	_, err = NewJWT("secret-b").Verify(token)
	require.Error(t, err)
}

func TestJWTVerifyRejectsExpiredToken(t *testing.T) {
	j := NewJWT("test-secret")

	token, err := j.Issue("alice", "user", -time.Minute)
	require.NoError(t, err)

	_, err = j.Verify(token)
	require.Error(t, err)
}

func TestJWTVerifyRejectsGarbage(t *testing.T) {
	_, err := NewJWT("test-secret").Verify("not-a-token")
	require.Error(t, err)
}
