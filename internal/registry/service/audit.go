package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"keepsake/internal/registry/models"
	dErrors "keepsake/pkg/domain-errors"
	audit "keepsake/pkg/platform/audit"
	"keepsake/pkg/requestcontext"
)

// auditEmitter turns typed domain events into an audit log line and a
// published audit.Event. Publishing is fail-closed: inside a transaction an
// emit error aborts the call.
type auditEmitter struct {
	logger    *slog.Logger
	publisher AuditPublisher
}

func newAuditEmitter(logger *slog.Logger, publisher AuditPublisher) *auditEmitter {
	return &auditEmitter{logger: logger, publisher: publisher}
}

func (e *auditEmitter) emitContentCreated(ctx context.Context, ev models.ContentCreated) error {
	recipients := make([]string, len(ev.Recipients))
	for i, r := range ev.Recipients {
		recipients[i] = r.String()
	}
	return e.emit(ctx, audit.EventContentCreated, audit.Event{
		Subject:   "content:" + ev.ContentID.String(),
		ActorID:   ev.Creator.String(),
		ContentID: uint64(ev.ContentID),
		RecordID:  uint64(ev.RepresentativeRecordID),
		Attributes: map[string]string{
			"creator":             ev.Creator.String(),
			"recipients":          strings.Join(recipients, ","),
			"title":               ev.Title,
			"release_time":        ev.ReleaseTime.UTC().Format(time.RFC3339),
			"locked_metadata_ref": ev.LockedMetadataRef,
		},
	})
}

func (e *auditEmitter) emitRecordUnlocked(ctx context.Context, ev models.RecordUnlocked) error {
	return e.emit(ctx, audit.EventRecordUnlocked, audit.Event{
		Subject:   "record:" + ev.RecordID.String(),
		ActorID:   ev.Caller.String(),
		ContentID: uint64(ev.ContentID),
		RecordID:  uint64(ev.RecordID),
		Attributes: map[string]string{
			"caller": ev.Caller.String(),
			"owner":  ev.Owner.String(),
		},
	})
}

func (e *auditEmitter) emitOwnershipChanged(ctx context.Context, ev models.OwnershipChanged) error {
	return e.emit(ctx, audit.EventOwnershipChanged, audit.Event{
		Subject:   "record:" + ev.RecordID.String(),
		ActorID:   ev.Operator.String(),
		ContentID: uint64(ev.ContentID),
		RecordID:  uint64(ev.RecordID),
		Attributes: map[string]string{
			"from":      ev.From.String(),
			"to":        ev.To.String(),
			"initiator": string(ev.Initiator),
		},
	})
}

func (e *auditEmitter) emitApprovalSet(ctx context.Context, ev models.ApprovalSet) error {
	return e.emit(ctx, audit.EventApprovalSet, audit.Event{
		Subject:  "record:" + ev.RecordID.String(),
		ActorID:  ev.Owner.String(),
		RecordID: uint64(ev.RecordID),
		Attributes: map[string]string{
			"owner":    ev.Owner.String(),
			"delegate": ev.Delegate.String(),
		},
	})
}

func (e *auditEmitter) emit(ctx context.Context, action audit.AuditEvent, event audit.Event) error {
	event.Action = string(action)
	event.Category = action.Category()
	event.Timestamp = requestcontext.Now(ctx)
	event.RequestID = requestcontext.RequestID(ctx)

	e.logAudit(ctx, event)
	if e.publisher == nil {
		return nil
	}
	if err := e.publisher.Emit(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record "+event.Action+" event")
	}
	return nil
}

func (e *auditEmitter) logAudit(ctx context.Context, event audit.Event) {
	if e.logger == nil {
		return
	}
	args := []any{
		"event", event.Action,
		"log_type", "audit",
		"subject", event.Subject,
		"actor", event.ActorID,
	}
	if event.RequestID != "" {
		args = append(args, "request_id", event.RequestID)
	}
	for k, v := range event.Attributes {
		args = append(args, k, v)
	}
	e.logger.InfoContext(ctx, event.Action, args...)
}
