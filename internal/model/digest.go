package model

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Digest returns the hex SHA3-256 digest of data.
func Digest(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
