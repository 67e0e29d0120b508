package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Password policy for examinee and admin accounts. bcrypt silently
// truncates input past 72 bytes, so overlong passwords are rejected
// instead of being hashed partially.
const (
	minPasswordLength = 8
	maxPasswordLength = 72
	hashCost          = 12
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong  = errors.New("password must be at most 72 characters")
	ErrInvalidPassword  = errors.New("invalid password")
)

// HashPassword enforces the account password policy and returns the
// bcrypt hash stored on the profile row.
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", ErrPasswordTooShort
	}
	if len(password) > maxPasswordLength {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a login attempt against the stored hash.
func VerifyPassword(storedHash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}
