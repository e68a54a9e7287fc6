package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func TestGenerateAndValidate(t *testing.T) {
	token, err := Generate("USR00042", map[string]interface{}{"role": "USER"}, testSecret, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := Validate(token, testSecret)
	require.NoError(t, err)

	sub, err := claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "USR00042", sub)
	assert.Equal(t, "USER", GetRole(claims))
	assert.Equal(t, issuer, claims["iss"])
}

func TestGenerateExtraClaimsCannotOverrideSubject(t *testing.T) {
	token, err := Generate("USR00001", map[string]interface{}{"sub": "ADMIN01"}, testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := Validate(token, testSecret)
	require.NoError(t, err)

	sub, err := claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "USR00001", sub)
}

func TestValidateWrongSecret(t *testing.T) {
	token, err := Generate("USR00001", nil, testSecret, time.Hour)
	require.NoError(t, err)

	_, err = Validate(token, "a-different-secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateExpired(t *testing.T) {
	token, err := Generate("USR00001", nil, testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = Validate(token, testSecret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateMalformed(t *testing.T) {
	_, err := Validate("not-a-jwt", testSecret)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateRejectsUnsignedToken(t *testing.T) {
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, jwtlib.MapClaims{"sub": "USR00001"})
	signed, err := token.SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = Validate(signed, testSecret)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestExtractUsernameIgnoresExpiry(t *testing.T) {
	token, err := Generate("USR00007", nil, testSecret, -time.Minute)
	require.NoError(t, err)

	username, err := ExtractUsername(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "USR00007", username)
}

func TestExtractUsernameStillVerifiesSignature(t *testing.T) {
	token, err := Generate("USR00007", nil, testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ExtractUsername(token, "a-different-secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestMatchesUser(t *testing.T) {
	token, err := Generate("USR00010", nil, testSecret, time.Hour)
	require.NoError(t, err)

	assert.True(t, MatchesUser(token, "USR00010", testSecret))
	assert.False(t, MatchesUser(token, "USR00011", testSecret))

	expired, err := Generate("USR00010", nil, testSecret, -time.Minute)
	require.NoError(t, err)
	assert.False(t, MatchesUser(expired, "USR00010", testSecret))
}
