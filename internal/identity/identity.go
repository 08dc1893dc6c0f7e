// Package identity derives deterministic UUIDs from stable content keys.
package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions
// (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// RecordUUID returns the stable identifier used as the feed GUID for a
// content record. Its stability across rebuilds keeps feed readers from
// re-surfacing unchanged entries.
func RecordUUID(collection, id string) uuid.UUID {
	return UUID("lectern:record:" + collection + ":" + strings.TrimSpace(id))
}
