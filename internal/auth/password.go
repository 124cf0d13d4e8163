package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes with bcrypt. The cost factor is configurable so the
// verify time can be tuned (~100ms on current hardware at cost 10); a cost
// outside bcrypt's valid range falls back to the default.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	return string(b), err
}

// CheckPassword does a constant-time comparison against the stored hash.
func CheckPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
