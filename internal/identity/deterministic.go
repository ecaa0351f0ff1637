// Package identity derives stable UUIDs for platform-owned records so the
// same template resolves to the same id in every store.
package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID hashes key into a UUID. Keys should carry a type prefix so different
// record kinds never collide. An empty key yields uuid.Nil.
func UUID(key string) uuid.UUID {
	key = strings.TrimSpace(key)
	if key == "" {
		return uuid.Nil
	}
	id, err := hashid.NewUUID(key, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || id == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key))
	}
	return id
}

// TemplateUUID is the record id of the catalog template with the given slug.
func TemplateUUID(slug string) uuid.UUID {
	return UUID("folio:template:" + strings.ToLower(strings.TrimSpace(slug)))
}

// SyncJobKey is the dedupe key of a persistence retry job for one record.
func SyncJobKey(entity string, id uuid.UUID) string {
	return "folio:sync:" + strings.ToLower(strings.TrimSpace(entity)) + ":" + id.String()
}
