package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	mgr := NewJWTManager("test-secret", "easyhome", time.Hour)

	token, err := mgr.Generate("actor-001", "customer")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := mgr.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "actor-001", claims.ActorID)
	assert.Equal(t, "customer", claims.Role)
}

func TestJWTManager_RejectsWrongSecret(t *testing.T) {
	issuer := NewJWTManager("secret-a", "easyhome", time.Hour)
	verifier := NewJWTManager("secret-b", "easyhome", time.Hour)

	token, err := issuer.Generate("actor-001", "provider")
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.Error(t, err)
}

func TestJWTManager_RejectsExpiredToken(t *testing.T) {
	mgr := NewJWTManager("test-secret", "easyhome", -time.Minute)

	token, err := mgr.Generate("actor-001", "customer")
	require.NoError(t, err)

	_, err = mgr.Validate(token)
	assert.Error(t, err)
}

func TestJWTManager_RejectsWrongIssuer(t *testing.T) {
	issuer := NewJWTManager("test-secret", "someone-else", time.Hour)
	verifier := NewJWTManager("test-secret", "easyhome", time.Hour)

	token, err := issuer.Generate("actor-001", "customer")
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.Error(t, err)
}

func TestJWTManager_RejectsGarbage(t *testing.T) {
	mgr := NewJWTManager("test-secret", "easyhome", time.Hour)

	_, err := mgr.Validate("not-a-token")
	assert.Error(t, err)
}
