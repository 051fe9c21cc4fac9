package pkg

import "golang.org/x/crypto/bcrypt"

func HashSecret(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), 12)
	return string(hashed), err
}

// CheckSecretHash reports whether secret matches the bcrypt hash. Empty inputs never match.
func CheckSecretHash(secret, hash string) bool {
	if secret == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
