package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildsafe/safety-backend/internal/domain"
)

func TestMintAndVerify(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	id := uuid.New()

	tok, err := m.Mint(id, "foreman@site.example")
	require.NoError(t, err)

	got, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestVerifyRejects(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	id := uuid.New()

	other := NewTokenManager("other-secret", time.Hour)
	foreign, err := other.Mint(id, "")
	require.NoError(t, err)

	expiredMgr := NewTokenManager("secret", time.Hour)
	expiredMgr.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredMgr.Mint(id, "")
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: id.String()}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "not-a-uuid",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"wrong secret": foreign,
		"expired":      expired,
		"alg none":     none,
		"bad subject":  badSubject,
		"garbage":      "abc.def.ghi",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.Verify(tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	_, err := BearerToken(r)
	assert.ErrorIs(t, err, ErrMissingToken)

	r.Header.Set("Authorization", "Token abc")
	_, err = BearerToken(r)
	assert.ErrorIs(t, err, ErrInvalidToken)

	r.Header.Set("Authorization", "Bearer abc")
	tok, err := BearerToken(r)
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)
}

func TestPasswordHashing(t *testing.T) {
	_, err := HashPassword("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	hash, err := HashPassword("hard-hat-42")
	require.NoError(t, err)
	assert.True(t, VerifyPassword("hard-hat-42", hash))
	assert.False(t, VerifyPassword("hard-hat-43", hash))
}

func TestActorContext(t *testing.T) {
	assert.Nil(t, ActorFrom(context.Background()))

	a := &domain.Actor{ID: uuid.New(), IsAdmin: true}
	assert.Same(t, a, ActorFrom(WithActor(context.Background(), a)))
}
