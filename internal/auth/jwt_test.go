package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(ttl time.Duration) *JWTService {
	return NewJWTService(&JWTConfig{
		SecretKey:           []byte("test-secret"),
		AccessTokenDuration: ttl,
		Issuer:              "test",
	})
}

func TestJWT_RoundTrip(t *testing.T) {
	service := newTestJWTService(time.Minute)

	token, err := service.GenerateAccessToken(42, "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.AdminID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "test", claims.Issuer)
}

func TestJWT_WrongSecret(t *testing.T) {
	service := newTestJWTService(time.Minute)

	token, err := service.GenerateAccessToken(42, "admin")
	require.NoError(t, err)

	other := NewJWTService(&JWTConfig{
		SecretKey:           []byte("different-secret"),
		AccessTokenDuration: time.Minute,
		Issuer:              "test",
	})
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWT_Expired(t *testing.T) {
	service := newTestJWTService(-time.Minute)

	token, err := service.GenerateAccessToken(42, "admin")
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWT_Garbage(t *testing.T) {
	service := newTestJWTService(time.Minute)

	_, err := service.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractTokenFromBearer(t *testing.T) {
	assert.Equal(t, "abc123", ExtractTokenFromBearer("Bearer abc123"))
	assert.Equal(t, "", ExtractTokenFromBearer("abc123"))
	assert.Equal(t, "", ExtractTokenFromBearer("Bearer "))
	assert.Equal(t, "", ExtractTokenFromBearer(""))
	assert.Equal(t, "", ExtractTokenFromBearer("Basic abc123"))
}

func TestPasswordService_HashAndVerify(t *testing.T) {
	service := NewPasswordServiceWithCost(4)

	hash, err := service.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.NoError(t, service.VerifyPassword(hash, "correct horse battery staple"))
	assert.Error(t, service.VerifyPassword(hash, "wrong password"))
}

func TestPasswordService_EmptyPassword(t *testing.T) {
	service := NewPasswordServiceWithCost(4)

	_, err := service.HashPassword("")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestIsValidPassword(t *testing.T) {
	assert.Error(t, IsValidPassword("short"))
	assert.NoError(t, IsValidPassword("long enough password"))
}
