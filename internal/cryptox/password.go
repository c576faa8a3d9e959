// Package cryptox wraps password hashing. Plaintext passwords never leave
// this package in any persisted form.
package cryptox

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/containerhub/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt work factor used for new hashes. Tests lower it.
var HashCost = bcrypt.DefaultCost

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: password longer than %d bytes", common.ErrorInvalidInput, common.MaxPasswordBytes)
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash. A stored value that
// is not a bcrypt hash never matches.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
