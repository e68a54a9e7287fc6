package password

import (
	"crypto/rand"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the default bcrypt cost
	DefaultCost = 12

	// GeneratedLength is the length of system-generated passwords
	GeneratedLength = 8
)

// Character classes for generated passwords. Lowercase drops i/l/o and
// digits drop 0 so emailed credentials are unambiguous when read back.
const (
	upperChars   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars   = "abcdefghjkmnpqrstuvwxyz"
	digitChars   = "123456789"
	specialChars = "@#$%&"
)

// specialSet is the set accepted by the strength policy
const specialSet = "!@#$%^&*(),.?\":{}|<>"

// Hash hashes a password using bcrypt
func Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify compares a password with a hash
func Verify(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Generate produces a random 8-character password with at least one
// uppercase letter, one lowercase letter, one digit and one special
// character. The first four positions force one character per class; the
// rest are drawn from the union alphabet. Uses crypto/rand throughout.
func Generate() (string, error) {
	all := upperChars + lowerChars + digitChars + specialChars

	var sb strings.Builder
	sb.Grow(GeneratedLength)

	for _, class := range []string{upperChars, lowerChars, digitChars, specialChars} {
		ch, err := randomChar(class)
		if err != nil {
			return "", err
		}
		sb.WriteByte(ch)
	}

	for i := 4; i < GeneratedLength; i++ {
		ch, err := randomChar(all)
		if err != nil {
			return "", err
		}
		sb.WriteByte(ch)
	}

	return sb.String(), nil
}

// IsStrong checks the password policy for user-chosen passwords:
// at least 8 characters, one uppercase letter, one digit and one
// special character.
func IsStrong(password string) bool {
	if len(password) < 8 {
		return false
	}

	var hasUpper, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(specialSet, r):
			hasSpecial = true
		}
	}

	return hasUpper && hasDigit && hasSpecial
}

func randomChar(alphabet string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
	if err != nil {
		return 0, err
	}
	return alphabet[n.Int64()], nil
}
