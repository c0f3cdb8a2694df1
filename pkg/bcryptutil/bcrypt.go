package bcryptutil

import (
	"golang.org/x/crypto/bcrypt"
)

// GenerateHash generates a bcrypt hash from the given string.
func GenerateHash(s string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(s), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CompareHash compares a plain text string with a stored hash.
// Returns true if they match.
func CompareHash(s string, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(s))
	return err == nil
}
