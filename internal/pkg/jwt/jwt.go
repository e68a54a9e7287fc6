package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

const issuer = "smartcart-auth"

// Generate signs a token for the given username with expiry now+ttl.
// Extra claims are merged in before the registered claims, so callers
// cannot override sub/iat/exp/iss.
func Generate(username string, extraClaims map[string]interface{}, secret string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{}
	for k, v := range extraClaims {
		claims[k] = v
	}
	claims["sub"] = username
	claims["iat"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(now.Add(ttl))
	claims["iss"] = issuer

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Validate checks signature and expiry and returns the claims
func Validate(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, keyFunc(secret))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrTokenInvalid
}

// ExtractUsername returns the subject of a signed token without checking
// expiry. The signature is still verified. Callers that need "who claims
// to be calling" before consulting ledger state use this.
func ExtractUsername(tokenString, secret string) (string, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	token, err := parser.Parse(tokenString, keyFunc(secret))
	if err != nil {
		return "", ErrTokenInvalid
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrTokenInvalid
	}
	return sub, nil
}

// MatchesUser reports whether the token passes signature and expiry checks
// and its subject equals username
func MatchesUser(tokenString, username, secret string) bool {
	claims, err := Validate(tokenString, secret)
	if err != nil {
		return false
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return false
	}
	return sub == username
}

// GetRole extracts the role claim, if present
func GetRole(claims jwt.MapClaims) string {
	role, _ := claims["role"].(string)
	return role
}

func keyFunc(secret string) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	}
}
