package models

import (
	"time"

	id "keepsake/pkg/domain"
	dErrors "keepsake/pkg/domain-errors"
)

// Policy is the per-content transfer and unlock policy. It is fixed at
// creation and shared by every record that references the content.
type Policy struct {
	// Transferable gates every ownership change after mint.
	Transferable bool `json:"transferable"`
	// AdminTransferable additionally gates forced and batch transfers. When the
	// contract-recipient rule is enabled it also gates transfers to
	// contract-controlled identities.
	AdminTransferable bool `json:"admin_transferable"`
	// AdminOpenable lets the administrator unlock records of this content.
	AdminOpenable bool `json:"admin_openable"`
}

// Content is the shared, immutable descriptor behind a batch of records.
//
// Invariants:
//   - LockedMetadataRef and UnlockedMetadataRef are non-empty
//   - every field is fixed after construction; stores never update a Content
//   - ID is assigned by the store, monotonically, starting at 1
type Content struct {
	ID                  id.ContentID `json:"id"`
	Creator             id.Identity  `json:"creator"`
	Title               string       `json:"title"`
	Description         string       `json:"description"`
	ReleaseTime         time.Time    `json:"release_time"`
	LockedMetadataRef   string       `json:"locked_metadata_ref"`
	UnlockedMetadataRef string       `json:"unlocked_metadata_ref"`
	Policy              Policy       `json:"policy"`
	CreatedAt           time.Time    `json:"created_at"`
}

// NewContent validates and constructs a Content without an ID. No ordering is
// imposed between releaseTime and now: content may be created already
// releasable. Metadata refs are opaque and stored byte-for-byte; only the
// empty string is rejected.
func NewContent(
	creator id.Identity,
	title, description string,
	releaseTime time.Time,
	lockedRef, unlockedRef string,
	policy Policy,
	now time.Time,
) (*Content, error) {
	if creator.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "creator is required")
	}
	if lockedRef == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "locked metadata ref cannot be empty")
	}
	if unlockedRef == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unlocked metadata ref cannot be empty")
	}
	return &Content{
		Creator:             creator,
		Title:               title,
		Description:         description,
		ReleaseTime:         releaseTime.UTC(),
		LockedMetadataRef:   lockedRef,
		UnlockedMetadataRef: unlockedRef,
		Policy:              policy,
		CreatedAt:           now.UTC(),
	}, nil
}

// IsReleased reports whether now is at or after the release time.
func (c *Content) IsReleased(now time.Time) bool {
	return !now.Before(c.ReleaseTime)
}

// MetadataRef resolves the externally visible pointer for a record's lock state.
func (c *Content) MetadataRef(opened bool) string {
	if opened {
		return c.UnlockedMetadataRef
	}
	return c.LockedMetadataRef
}
