package util

import (
	"crypto/rand"
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

func NewID(prefix string) string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)
	if prefix == "" {
		return hex.EncodeToString(bytes)
	}
	return prefix + "_" + hex.EncodeToString(bytes)
}

// DerivedID produces a stable identifier from its parts. Invitations and
// invitation tokens use it so re-inviting the same person to the same
// project patches the existing row instead of creating a duplicate.
func DerivedID(prefix string, parts ...string) string {
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	digest := hex.EncodeToString(sum[:])
	if prefix == "" {
		return digest
	}
	return prefix + "_" + digest
}
