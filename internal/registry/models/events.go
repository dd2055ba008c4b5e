package models

import (
	"time"

	id "keepsake/pkg/domain"
)

// Initiator distinguishes ordinary transfers from administrator-initiated
// forced and batch transfers. The guard applies extra policy to the latter.
type Initiator string

const (
	InitiatorOrdinary       Initiator = "ordinary"
	InitiatorAdministrative Initiator = "administrative"
)

// ContentCreated is emitted once per creation call.
type ContentCreated struct {
	ContentID              id.ContentID
	RepresentativeRecordID id.RecordID
	Creator                id.Identity
	Recipients             []id.Identity
	Title                  string
	ReleaseTime            time.Time
	LockedMetadataRef      string
}

// RecordUnlocked is emitted when a record flips to unlocked.
type RecordUnlocked struct {
	RecordID  id.RecordID
	ContentID id.ContentID
	Caller    id.Identity
	Owner     id.Identity
}

// OwnershipChanged is emitted for every committed ownership change after mint.
type OwnershipChanged struct {
	RecordID  id.RecordID
	ContentID id.ContentID
	From      id.Identity
	To        id.Identity
	Operator  id.Identity
	Initiator Initiator
}

// ApprovalSet is emitted when an owner sets or clears a record's delegate.
type ApprovalSet struct {
	RecordID id.RecordID
	Owner    id.Identity
	Delegate id.Identity
}
