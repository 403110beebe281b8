package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for algorithm changes.
const (
	DomainContent  = "projdoc/content/v1"
	DomainSnapshot = "projdoc/snapshot/v1"
	DomainRevision = "projdoc/revision/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator keeps domain and data from running together.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ContentHash identifies serialized document text.
func ContentHash(text []byte) string {
	return hashWithDomain(DomainContent, text)
}

// SnapshotHash identifies an evaluated view by its canonical JSON.
func SnapshotHash(s Snapshot) (string, error) {
	canonical, err := MarshalCanonical(s.Value())
	if err != nil {
		return "", fmt.Errorf("SnapshotHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSnapshot, canonical), nil
}

// RevisionID identifies one saved state of a document at a path.
// The same text saved at the same version always yields the same id.
func RevisionID(path string, version int64, contentHash string) (string, error) {
	canonical, err := MarshalCanonical(Object{
		"path":         String(path),
		"version":      Int(version),
		"content_hash": String(contentHash),
	})
	if err != nil {
		return "", fmt.Errorf("RevisionID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRevision, canonical), nil
}

// MustSnapshotHash is like SnapshotHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustSnapshotHash(s Snapshot) string {
	h, err := SnapshotHash(s)
	if err != nil {
		panic(err)
	}
	return h
}
