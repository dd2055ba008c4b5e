package models

import (
	"time"

	id "keepsake/pkg/domain"
	dErrors "keepsake/pkg/domain-errors"
)

// Record is an individually owned handle on a Content.
//
// Invariants:
//   - ContentID never changes after mint
//   - Opened goes false → true at most once; there is no path back to locked
//   - ApprovedDelegate is cleared on every ownership change
//   - Owner is never the null identity
type Record struct {
	ID               id.RecordID  `json:"id"`
	ContentID        id.ContentID `json:"content_id"`
	Owner            id.Identity  `json:"owner"`
	ApprovedDelegate id.Identity  `json:"approved_delegate,omitempty"`
	Opened           bool         `json:"opened"`
	OpenedAt         *time.Time   `json:"opened_at,omitempty"`
}

// RecordState is the lock state of a record.
type RecordState string

const (
	RecordStateLocked   RecordState = "locked"
	RecordStateUnlocked RecordState = "unlocked"
)

// State derives the lock state from Opened.
func (r *Record) State() RecordState {
	if r.Opened {
		return RecordStateUnlocked
	}
	return RecordStateLocked
}

// CanOpen checks the Locked → Unlocked transition. Unlocked is terminal.
func (r *Record) CanOpen() error {
	if r.Opened {
		return dErrors.New(dErrors.CodeAlreadyUnlocked, "record is already unlocked")
	}
	return nil
}

// ApplyOpen flips the record to unlocked. Call CanOpen first.
func (r *Record) ApplyOpen(now time.Time) {
	t := now.UTC()
	r.Opened = true
	r.OpenedAt = &t
}

// ApplyOwnerChange moves the record to a new owner and drops any approval.
func (r *Record) ApplyOwnerChange(to id.Identity) {
	r.Owner = to
	r.ApprovedDelegate = id.NilIdentity
}

// IsDelegate reports whether caller is the record's approved delegate.
// The null identity is never a delegate.
func (r *Record) IsDelegate(caller id.Identity) bool {
	return !r.ApprovedDelegate.IsNil() && r.ApprovedDelegate == caller
}

// Clone returns a copy safe to hand out of a store.
func (r *Record) Clone() *Record {
	c := *r
	if r.OpenedAt != nil {
		t := *r.OpenedAt
		c.OpenedAt = &t
	}
	return &c
}

// RecordView joins a record with its derived metadata pointer.
type RecordView struct {
	Record      *Record     `json:"record"`
	State       RecordState `json:"state"`
	MetadataRef string      `json:"metadata_ref"`
}
