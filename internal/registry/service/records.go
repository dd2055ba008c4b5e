package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"keepsake/internal/registry/guard"
	"keepsake/internal/registry/models"
	id "keepsake/pkg/domain"
	dErrors "keepsake/pkg/domain-errors"
)

// GetRecord returns a record with its lock state and current metadata pointer.
func (s *Service) GetRecord(ctx context.Context, recordID id.RecordID) (view *models.RecordView, err error) {
	err = s.tx.ReadInTx(ctx, func(txCtx context.Context) error {
		view, err = s.recordView(txCtx, recordID)
		return err
	})
	return view, err
}

// OwnerOf returns the record's current owner.
func (s *Service) OwnerOf(ctx context.Context, recordID id.RecordID) (id.Identity, error) {
	record, err := s.readRecord(ctx, recordID)
	if err != nil {
		return id.NilIdentity, err
	}
	return record.Owner, nil
}

// ApprovedOf returns the record's approved delegate, or the null identity.
func (s *Service) ApprovedOf(ctx context.Context, recordID id.RecordID) (id.Identity, error) {
	record, err := s.readRecord(ctx, recordID)
	if err != nil {
		return id.NilIdentity, err
	}
	return record.ApprovedDelegate, nil
}

// MetadataRefOf resolves the record's externally visible metadata pointer.
func (s *Service) MetadataRefOf(ctx context.Context, recordID id.RecordID) (string, error) {
	view, err := s.GetRecord(ctx, recordID)
	if err != nil {
		return "", err
	}
	return view.MetadataRef, nil
}

// IsOpened reports whether the record has been unlocked.
func (s *Service) IsOpened(ctx context.Context, recordID id.RecordID) (bool, error) {
	record, err := s.readRecord(ctx, recordID)
	if err != nil {
		return false, err
	}
	return record.Opened, nil
}

func (s *Service) readRecord(ctx context.Context, recordID id.RecordID) (record *models.Record, err error) {
	err = s.tx.ReadInTx(ctx, func(txCtx context.Context) error {
		record, err = s.findRecord(txCtx, recordID)
		return err
	})
	return record, err
}

// recordView must run inside ReadInTx.
func (s *Service) recordView(ctx context.Context, recordID id.RecordID) (*models.RecordView, error) {
	record, err := s.findRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	content, err := s.findContent(ctx, s.contents, record.ContentID)
	if err != nil {
		return nil, err
	}
	return &models.RecordView{
		Record:      record,
		State:       record.State(),
		MetadataRef: content.MetadataRef(record.Opened),
	}, nil
}

// Approve sets the record's single approved delegate. Only the current owner may
// call it. Approving the null identity clears the delegate.
func (s *Service) Approve(ctx context.Context, recordID id.RecordID, delegate, caller id.Identity) (err error) {
	ctx, finish := s.startOp(ctx, "approve", attribute.Int64("record.id", int64(recordID)))
	defer func() { finish(err) }()

	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		record, err := s.findRecord(txCtx, recordID)
		if err != nil {
			return err
		}
		if caller.IsNil() || caller != record.Owner {
			return dErrors.New(dErrors.CodeForbidden, "only the owner may approve a delegate")
		}
		if delegate == record.Owner {
			return dErrors.New(dErrors.CodeInvalidInput, "owner cannot approve itself")
		}

		if delegate.IsNil() {
			delegate = id.NilIdentity
		}
		record.ApprovedDelegate = delegate
		if err := s.store.UpdateRecords(txCtx, []*models.Record{record}); err != nil {
			return wrapStoreWriteErr(wrapNotFound(err), "failed to update record")
		}
		return s.auditEmitter.emitApprovalSet(txCtx, models.ApprovalSet{
			RecordID: record.ID,
			Owner:    record.Owner,
			Delegate: delegate,
		})
	})
}

// Transfer moves a record from `from` to `to`. The caller must be `from`, the
// record's approved delegate, or the administrator. The transfer guard runs
// with an ordinary initiator.
func (s *Service) Transfer(ctx context.Context, recordID id.RecordID, from, to, caller id.Identity) (err error) {
	ctx, finish := s.startOp(ctx, "transfer", attribute.Int64("record.id", int64(recordID)))
	defer func() { finish(err) }()

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		record, err := s.findRecord(txCtx, recordID)
		if err != nil {
			return err
		}
		if caller.IsNil() || !(caller == from || record.IsDelegate(caller) || s.isAdmin(caller)) {
			return dErrors.New(dErrors.CodeForbidden, "caller may not transfer this record")
		}
		if from != record.Owner {
			return dErrors.New(dErrors.CodeInvalidInput, "from is not the current owner")
		}
		if to.IsNil() {
			return dErrors.New(dErrors.CodeInvalidInput, "cannot transfer to the null identity")
		}
		if from == to {
			return dErrors.New(dErrors.CodeInvalidInput, "from and to must differ")
		}

		content, err := s.findContent(txCtx, s.store, record.ContentID)
		if err != nil {
			return err
		}
		if err := s.checkTransfer(txCtx, content, guard.Transfer{
			RecordID:  record.ID,
			From:      from,
			To:        to,
			Initiator: models.InitiatorOrdinary,
		}); err != nil {
			return err
		}

		return s.applyOwnerChanges(txCtx, []ownerChange{{record: record, to: to}}, caller, models.InitiatorOrdinary)
	})
	if err != nil {
		return err
	}
	s.metrics.AddOwnershipChanges(string(models.InitiatorOrdinary), 1)
	return nil
}

type ownerChange struct {
	record *models.Record
	to     id.Identity
}

// applyOwnerChanges writes every planned change in one store call, then emits
// one ownership event per record in ascending id order. Callers have already
// validated and guarded every change.
func (s *Service) applyOwnerChanges(ctx context.Context, changes []ownerChange, operator id.Identity, initiator models.Initiator) error {
	if len(changes) == 0 {
		return nil
	}
	updated := make([]*models.Record, len(changes))
	froms := make([]id.Identity, len(changes))
	for i, c := range changes {
		froms[i] = c.record.Owner
		c.record.ApplyOwnerChange(c.to)
		updated[i] = c.record
	}
	if err := s.store.UpdateRecords(ctx, updated); err != nil {
		return wrapStoreWriteErr(wrapNotFound(err), "failed to update records")
	}
	for i, r := range updated {
		if err := s.auditEmitter.emitOwnershipChanged(ctx, models.OwnershipChanged{
			RecordID:  r.ID,
			ContentID: r.ContentID,
			From:      froms[i],
			To:        r.Owner,
			Operator:  operator,
			Initiator: initiator,
		}); err != nil {
			return err
		}
	}
	return nil
}

func wrapNotFound(err error) error {
	if isNotFound(err) {
		return dErrors.New(dErrors.CodeNotFound, "record not found")
	}
	return err
}
