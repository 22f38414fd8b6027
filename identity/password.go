package identity

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPassword(hash, plain string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// AdminCredentials is the configured administrator login.
type AdminCredentials struct {
	Email        string
	PasswordHash string
}

// Match checks an email/password pair against the configured admin.
func (a AdminCredentials) Match(email, password string) bool {
	given := strings.ToLower(strings.TrimSpace(email))
	want := strings.ToLower(strings.TrimSpace(a.Email))
	emailOK := subtle.ConstantTimeCompare([]byte(given), []byte(want)) == 1
	// always run bcrypt so a wrong email costs the same as a wrong password
	passOK := CheckPassword(a.PasswordHash, password)
	return emailOK && passOK
}
