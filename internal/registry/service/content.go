package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"keepsake/internal/registry/models"
	id "keepsake/pkg/domain"
	dErrors "keepsake/pkg/domain-errors"
	"keepsake/pkg/requestcontext"
)

// CreateContentInput carries a creation request. Recipients are minted records
// in order.
type CreateContentInput struct {
	Title               string
	Description         string
	ReleaseTime         time.Time
	LockedMetadataRef   string
	UnlockedMetadataRef string
	Policy              models.Policy
	Recipients          []id.Identity
}

// CreateContentResult reports the stored content and its minted records.
// RepresentativeRecordID is the first minted id.
type CreateContentResult struct {
	Content                *models.Content
	RecordIDs              []id.RecordID
	RepresentativeRecordID id.RecordID
}

// CreateContent registers a content descriptor and mints one record per
// recipient. Only the administrator may call it; the caller becomes the creator.
func (s *Service) CreateContent(ctx context.Context, caller id.Identity, in CreateContentInput) (_ *CreateContentResult, err error) {
	ctx, finish := s.startOp(ctx, "create_content", attribute.Int("recipients", len(in.Recipients)))
	defer func() { finish(err) }()

	if err := s.requireAdmin(caller); err != nil {
		return nil, err
	}
	if len(in.Recipients) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "recipients must not be empty")
	}
	for _, r := range in.Recipients {
		if r.IsNil() {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "recipients must not contain the null identity")
		}
	}

	var result *CreateContentResult
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		content, err := models.NewContent(
			caller,
			in.Title,
			in.Description,
			in.ReleaseTime,
			in.LockedMetadataRef,
			in.UnlockedMetadataRef,
			in.Policy,
			requestcontext.Now(txCtx),
		)
		if err != nil {
			return err
		}
		if _, err := s.store.CreateContent(txCtx, content); err != nil {
			return wrapStoreWriteErr(err, "failed to create content")
		}
		recordIDs, err := s.store.MintRecords(txCtx, content.ID, in.Recipients)
		if err != nil {
			return wrapStoreWriteErr(err, "failed to mint records")
		}
		if len(recordIDs) != len(in.Recipients) {
			return dErrors.New(dErrors.CodeInternal, "minted record count does not match recipients")
		}
		if err := s.auditEmitter.emitContentCreated(txCtx, models.ContentCreated{
			ContentID:              content.ID,
			RepresentativeRecordID: recordIDs[0],
			Creator:                caller,
			Recipients:             in.Recipients,
			Title:                  content.Title,
			ReleaseTime:            content.ReleaseTime,
			LockedMetadataRef:      content.LockedMetadataRef,
		}); err != nil {
			return err
		}
		result = &CreateContentResult{
			Content:                content,
			RecordIDs:              recordIDs,
			RepresentativeRecordID: recordIDs[0],
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementContentCreated(len(result.RecordIDs))
	return result, nil
}

// GetContent returns the descriptor for contentID.
func (s *Service) GetContent(ctx context.Context, contentID id.ContentID) (content *models.Content, err error) {
	err = s.tx.ReadInTx(ctx, func(txCtx context.Context) error {
		content, err = s.findContent(txCtx, s.contents, contentID)
		return err
	})
	return content, err
}

// ListRecordsOfContent returns a content's records in ascending id order. It is
// an operator listing and is not exposed on the public API.
func (s *Service) ListRecordsOfContent(ctx context.Context, contentID id.ContentID) (records []*models.Record, err error) {
	err = s.tx.ReadInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.findContent(txCtx, s.contents, contentID); err != nil {
			return err
		}
		records, err = s.store.ListRecordsByContent(txCtx, contentID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list records")
		}
		return nil
	})
	return records, err
}
