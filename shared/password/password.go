// Package password hashes and checks admin credentials with bcrypt.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultCost = bcrypt.DefaultCost
	// MaxBytes is the longest secret bcrypt accepts. The limit is in bytes, so a
	// multi-byte password can pass a character-count validator and still exceed it.
	MaxBytes = 72
)

var (
	ErrEmptyPassword     = errors.New("password cannot be empty")
	ErrPasswordTooLong   = fmt.Errorf("password longer than %d bytes", MaxBytes)
	ErrHashingPassword   = errors.New("error hashing password")
	ErrInvalidPassword   = errors.New("invalid password")
	ErrVerifyingPassword = errors.New("error verifying password")
)

// Hash returns the bcrypt digest stored in admins.password.
func Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	if len(password) > MaxBytes {
		return "", fmt.Errorf("%w: %w", ErrHashingPassword, ErrPasswordTooLong)
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(password), DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrHashingPassword, err)
	}

	return string(digest), nil
}

// Verify reports ErrInvalidPassword for any credential mismatch and ErrVerifyingPassword
// when the stored digest itself is unusable.
func Verify(password, digest string) error {
	if password == "" || digest == "" {
		return ErrInvalidPassword
	}

	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrInvalidPassword
	default:
		return fmt.Errorf("%w: %w", ErrVerifyingPassword, err)
	}
}
