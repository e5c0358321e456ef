// internal/auth/password.go
//
// One-way salted password hashing backed by bcrypt.

package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor used for stored credentials.
const PasswordCost = 10

// HashPassword returns a bcrypt hash of plain. Each call uses a fresh salt,
// so hashing the same password twice yields different strings.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether plain matches hash.
// A mismatch is (false, nil); a malformed hash or any other bcrypt failure is
// returned as an error so callers don't mistake it for bad credentials.
func CheckPassword(hash, plain string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}
