package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword derives the bcrypt hash stored for a portal account.
// Cost comes from configuration so tests can run with a cheap one.
func HashPassword(plain string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePassword checks a login attempt against the stored hash.
func ComparePassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
