package auth

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// NewIdentity issues a fresh anonymous identity, stable for the session
// lifetime and globally unique among active records.
func NewIdentity() string {
	return uuid.NewString()
}

// NewReclaimSecret returns a one-time secret the client stores to reclaim
// its identity after losing the token. Only the bcrypt hash is persisted.
func NewReclaimSecret() (secret, hash string, err error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	secret = hex.EncodeToString(buf)
	h, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", "", err
	}
	return secret, string(h), nil
}

// CheckReclaimSecret verifies a presented secret against the stored hash.
func CheckReclaimSecret(hash, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
