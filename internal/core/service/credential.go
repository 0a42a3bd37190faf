package service

import (
	"golang.org/x/crypto/bcrypt"
)

// BcryptVerifier hashes and checks secrets with bcrypt.
type BcryptVerifier struct {
	cost int
}

func NewBcryptVerifier(cost int) *BcryptVerifier {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptVerifier{cost: cost}
}

// Hash returns a salted bcrypt hash of secret.
func (v *BcryptVerifier) Hash(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), v.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether candidate matches hash. Malformed hashes never match.
func (v *BcryptVerifier) Verify(hash, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}
