package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"keepsake/internal/registry/models"
	id "keepsake/pkg/domain"
	dErrors "keepsake/pkg/domain-errors"
	"keepsake/pkg/requestcontext"
)

// Unlock opens a record once its content's release time has passed.
//
// Checks run in a fixed order:
//  1. an opened record fails with AlreadyUnlocked
//  2. before the release time fails with NotYetReleasable
//  3. the administrator is vetoed with AdminUnlockForbidden when the content is
//     not admin-openable, even if it also owns or is delegated the record
//  4. otherwise the caller must be the owner, the delegate, or the
//     administrator of an admin-openable content
//
// The release comparison uses requestcontext.Now.
func (s *Service) Unlock(ctx context.Context, recordID id.RecordID, caller id.Identity) (_ *models.RecordView, err error) {
	ctx, finish := s.startOp(ctx, "unlock", attribute.Int64("record.id", int64(recordID)))
	defer func() { finish(err) }()

	var view *models.RecordView
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		record, err := s.findRecord(txCtx, recordID)
		if err != nil {
			return err
		}
		content, err := s.findContent(txCtx, s.store, record.ContentID)
		if err != nil {
			return err
		}

		if err := record.CanOpen(); err != nil {
			return err
		}
		now := requestcontext.Now(txCtx)
		if !content.IsReleased(now) {
			return dErrors.New(dErrors.CodeNotYetReleasable, "content is not yet releasable")
		}

		isOwner := !caller.IsNil() && caller == record.Owner
		isDelegate := record.IsDelegate(caller)
		isAdmin := s.isAdmin(caller)

		if isAdmin && !content.Policy.AdminOpenable {
			return dErrors.New(dErrors.CodeAdminUnlockForbidden, "content does not allow administrator unlock")
		}
		if !isOwner && !isDelegate && !(isAdmin && content.Policy.AdminOpenable) {
			return dErrors.New(dErrors.CodeForbidden, "caller may not unlock this record")
		}

		record.ApplyOpen(now)
		if err := s.store.UpdateRecords(txCtx, []*models.Record{record}); err != nil {
			return wrapStoreWriteErr(wrapNotFound(err), "failed to update record")
		}
		if err := s.auditEmitter.emitRecordUnlocked(txCtx, models.RecordUnlocked{
			RecordID:  record.ID,
			ContentID: record.ContentID,
			Caller:    caller,
			Owner:     record.Owner,
		}); err != nil {
			return err
		}

		view = &models.RecordView{
			Record:      record.Clone(),
			State:       record.State(),
			MetadataRef: content.MetadataRef(record.Opened),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementUnlocked()
	return view, nil
}
