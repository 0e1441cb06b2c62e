package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword produces the bcrypt hash stored on a user profile. Plaintext
// passwords never leave the profile service.
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash profile password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash verifies a login or password-change attempt against the
// hash stored on the profile.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
