package scheduler

import (
	"github.com/google/uuid"

	"github.com/folioforge/go-folio/internal/identity"
)

const (
	// JobTypeSyncRecord replays the current state of one lifecycle record to
	// the persistence mirror.
	JobTypeSyncRecord = "folio.sync.record"
)

// SyncRecordJobKey dedupes retry jobs so a record has at most one pending job.
func SyncRecordJobKey(entity string, id uuid.UUID) string {
	return identity.SyncJobKey(entity, id)
}
