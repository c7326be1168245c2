package security

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

var hashCost = bcrypt.DefaultCost

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CheckPlainPassword compares fixture passwords in constant time.
func CheckPlainPassword(password, expected string) bool {
	return subtle.ConstantTimeCompare([]byte(password), []byte(expected)) == 1
}
