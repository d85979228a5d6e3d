package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey builds "<kind>:<sha256 of the JSON-encoded parts>".
func hashKey(kind string, parts ...any) string {
	sum, err := HashJSON(parts)
	if err != nil {
		// Keys are built from strings and plain option structs, which
		// always encode.
		panic(fmt.Sprintf("cache: encode key parts: %v", err))
	}
	return kind + ":" + sum
}

// Hash returns the hex SHA-256 of data (64 characters).
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashJSON returns the hex SHA-256 of the JSON encoding of v. Map keys are
// sorted by encoding/json, so equal values hash equally.
func HashJSON(v any) (string, error) {
	h := sha256.New()
	if err := json.NewEncoder(h).Encode(v); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
