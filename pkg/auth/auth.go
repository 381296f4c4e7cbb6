package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// keyPrefix marks manage keys so agents can recognize them in config.
const keyPrefix = "adoc_"

var (
	// ErrMissingKey means the request carried no manage key at all.
	ErrMissingKey = errors.New("missing manage key")
	// ErrBadKey means a key was presented but does not match the workspace.
	ErrBadKey = errors.New("invalid manage key")
)

// GenerateKey returns a fresh manage key: the adoc_ prefix followed by
// 32 hex characters (128 bits of randomness). The plaintext is shown to the
// creator once and never stored.
func GenerateKey() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the OS entropy source is broken;
		// nothing sensible can be served in that state.
		panic(fmt.Sprintf("auth: reading random bytes: %v", err))
	}
	return keyPrefix + hex.EncodeToString(buf)
}

// HashKey returns the salted bcrypt hash of a manage key for storage.
func HashKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing manage key: %w", err)
	}
	return string(hash), nil
}

// VerifyKey reports whether key matches the stored hash. bcrypt's comparison
// is constant-time over the hash output.
func VerifyKey(key, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(key)) == nil
}

// ExtractKey pulls the manage key from a request, checking in order:
// Authorization: Bearer <key>, the X-API-Key header, then the ?key= query
// parameter. Returns ErrMissingKey when none is present.
func ExtractKey(r *http.Request) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			if token = strings.TrimSpace(token); token != "" {
				return token, nil
			}
		}
	}
	if key := strings.TrimSpace(r.Header.Get("X-API-Key")); key != "" {
		return key, nil
	}
	if key := r.URL.Query().Get("key"); key != "" {
		return key, nil
	}
	return "", ErrMissingKey
}
