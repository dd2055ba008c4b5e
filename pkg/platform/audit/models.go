package audit

import (
	"context"
	"strconv"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers ownership and lifecycle facts that downstream
	// indexers treat as the registry's history. They are written fail-closed.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine changes that carry no ownership history.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	Action    string
	// Subject names the aggregate the event is about, e.g. "record:12".
	Subject string
	// ActorID is the identity that made the call.
	ActorID   string
	ContentID uint64
	RecordID  uint64
	RequestID string
	// Attributes carries event-specific fields (recipients, from/to, delegate).
	Attributes map[string]string
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

type AuditEvent string

const (
	EventContentCreated   AuditEvent = "content_created"
	EventRecordUnlocked   AuditEvent = "record_unlocked"
	EventOwnershipChanged AuditEvent = "ownership_changed"
	EventApprovalSet      AuditEvent = "approval_set"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventContentCreated:   CategoryCompliance,
	EventRecordUnlocked:   CategoryCompliance,
	EventOwnershipChanged: CategoryCompliance,
	EventApprovalSet:      CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// AggregateID is the partitioning key for transport: every event about the
// same record lands in order on the same partition.
func (e Event) AggregateID() (aggregateType, aggregateID string) {
	switch {
	case e.RecordID != 0:
		return "record", strconv.FormatUint(e.RecordID, 10)
	case e.ContentID != 0:
		return "content", strconv.FormatUint(e.ContentID, 10)
	default:
		return "audit", e.Subject
	}
}
