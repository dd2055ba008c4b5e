package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"keepsake/internal/registry/guard"
	"keepsake/internal/registry/models"
	id "keepsake/pkg/domain"
	dErrors "keepsake/pkg/domain-errors"
)

// ForceTransfer moves a record to newOwner on the administrator's authority.
// The content must be both transferable and admin-transferable.
func (s *Service) ForceTransfer(ctx context.Context, recordID id.RecordID, newOwner, caller id.Identity) (err error) {
	ctx, finish := s.startOp(ctx, "force_transfer", attribute.Int64("record.id", int64(recordID)))
	defer func() { finish(err) }()

	if err := s.requireAdmin(caller); err != nil {
		return err
	}
	if newOwner.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "new owner is required")
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		record, err := s.store.FindRecord(txCtx, recordID)
		if err != nil {
			if isNotFound(err) {
				return dErrors.New(dErrors.CodeInvalidInput, "record does not exist")
			}
			return wrapRecordErr(err)
		}
		if record.Owner == newOwner {
			return dErrors.New(dErrors.CodeInvalidInput, "new owner is already the owner")
		}
		content, err := s.findContent(txCtx, s.store, record.ContentID)
		if err != nil {
			return err
		}
		if err := s.checkTransfer(txCtx, content, guard.Transfer{
			RecordID:  record.ID,
			From:      record.Owner,
			To:        newOwner,
			Initiator: models.InitiatorAdministrative,
		}); err != nil {
			return err
		}
		return s.applyOwnerChanges(txCtx, []ownerChange{{record: record, to: newOwner}}, caller, models.InitiatorAdministrative)
	})
	if err != nil {
		return err
	}
	s.metrics.AddOwnershipChanges(string(models.InitiatorAdministrative), 1)
	return nil
}

// TransferAllOfContent reassigns every record of contentID in ascending id
// order: the i-th record goes to newOwners[i]. Records already owned by their
// target are skipped but still pass through the guard. Returns the number of
// records that changed owner. Either every change lands or none does.
func (s *Service) TransferAllOfContent(ctx context.Context, contentID id.ContentID, newOwners []id.Identity, caller id.Identity) (_ int, err error) {
	ctx, finish := s.startOp(ctx, "transfer_all_of_content",
		attribute.Int64("content.id", int64(contentID)),
		attribute.Int("new_owners", len(newOwners)),
	)
	defer func() { finish(err) }()

	if err := s.requireAdmin(caller); err != nil {
		return 0, err
	}
	if len(newOwners) == 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "new owners must not be empty")
	}

	var count int
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		content, err := s.store.FindContent(txCtx, contentID)
		if err != nil {
			if isNotFound(err) {
				return dErrors.New(dErrors.CodeInvalidInput, "content does not exist")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load content")
		}
		records, err := s.store.ListRecordsByContent(txCtx, contentID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list records")
		}

		changes := make([]ownerChange, 0, len(records))
		for i, record := range records {
			if i >= len(newOwners) {
				return dErrors.New(dErrors.CodeInvalidInput, "not enough new owners for the content's records")
			}
			to := newOwners[i]
			if to.IsNil() {
				return dErrors.New(dErrors.CodeInvalidInput, "new owner must not be the null identity")
			}
			if err := s.checkTransfer(txCtx, content, guard.Transfer{
				RecordID:  record.ID,
				From:      record.Owner,
				To:        to,
				Initiator: models.InitiatorAdministrative,
			}); err != nil {
				return err
			}
			if to == record.Owner {
				continue
			}
			changes = append(changes, ownerChange{record: record, to: to})
		}
		if len(changes) == 0 {
			return dErrors.New(dErrors.CodeNothingToTransfer, "no record changed owner")
		}
		if err := s.applyOwnerChanges(txCtx, changes, caller, models.InitiatorAdministrative); err != nil {
			return err
		}
		count = len(changes)
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.metrics.AddOwnershipChanges(string(models.InitiatorAdministrative), count)
	return count, nil
}

// TransferAllFromOwner moves every record currently owned by fromOwner to
// toOwner, in ascending id order. Returns the number of records moved.
func (s *Service) TransferAllFromOwner(ctx context.Context, fromOwner, toOwner, caller id.Identity) (_ int, err error) {
	ctx, finish := s.startOp(ctx, "transfer_all_from_owner")
	defer func() { finish(err) }()

	if err := s.requireAdmin(caller); err != nil {
		return 0, err
	}
	if fromOwner.IsNil() || toOwner.IsNil() {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "from and to owners are required")
	}
	if fromOwner == toOwner {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "from and to owners must differ")
	}

	var count int
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		records, err := s.store.ListRecordsByOwner(txCtx, fromOwner)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list records")
		}

		contents := make(map[id.ContentID]*models.Content)
		changes := make([]ownerChange, 0, len(records))
		for _, record := range records {
			content, ok := contents[record.ContentID]
			if !ok {
				content, err = s.findContent(txCtx, s.store, record.ContentID)
				if err != nil {
					return err
				}
				contents[record.ContentID] = content
			}
			if err := s.checkTransfer(txCtx, content, guard.Transfer{
				RecordID:  record.ID,
				From:      record.Owner,
				To:        toOwner,
				Initiator: models.InitiatorAdministrative,
			}); err != nil {
				return err
			}
			changes = append(changes, ownerChange{record: record, to: toOwner})
		}
		if len(changes) == 0 {
			return dErrors.New(dErrors.CodeNothingToTransfer, "owner holds no records")
		}
		if err := s.applyOwnerChanges(txCtx, changes, caller, models.InitiatorAdministrative); err != nil {
			return err
		}
		count = len(changes)
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.metrics.AddOwnershipChanges(string(models.InitiatorAdministrative), count)
	return count, nil
}
