package handler

import (
	"time"

	"keepsake/internal/registry/models"
	"keepsake/internal/registry/service"
	id "keepsake/pkg/domain"
)

// CreateContentResponse is returned by POST /v1/contents.
type CreateContentResponse struct {
	Content                *models.Content `json:"content"`
	RecordIDs              []id.RecordID   `json:"record_ids"`
	RepresentativeRecordID id.RecordID     `json:"representative_record_id"`
}

func toCreateContentResponse(res *service.CreateContentResult) CreateContentResponse {
	return CreateContentResponse{
		Content:                res.Content,
		RecordIDs:              res.RecordIDs,
		RepresentativeRecordID: res.RepresentativeRecordID,
	}
}

// RecordResponse flattens a record view.
type RecordResponse struct {
	ID               id.RecordID        `json:"id"`
	ContentID        id.ContentID       `json:"content_id"`
	Owner            id.Identity        `json:"owner"`
	ApprovedDelegate id.Identity        `json:"approved_delegate,omitempty"`
	Opened           bool               `json:"opened"`
	OpenedAt         *time.Time         `json:"opened_at,omitempty"`
	State            models.RecordState `json:"state"`
	MetadataRef      string             `json:"metadata_ref"`
}

func toRecordResponse(view *models.RecordView) RecordResponse {
	r := view.Record
	return RecordResponse{
		ID:               r.ID,
		ContentID:        r.ContentID,
		Owner:            r.Owner,
		ApprovedDelegate: r.ApprovedDelegate,
		Opened:           r.Opened,
		OpenedAt:         r.OpenedAt,
		State:            view.State,
		MetadataRef:      view.MetadataRef,
	}
}

type OwnerResponse struct {
	RecordID id.RecordID `json:"record_id"`
	Owner    id.Identity `json:"owner"`
}

// ApprovedResponse carries the approved delegate. An empty delegate means none.
type ApprovedResponse struct {
	RecordID id.RecordID `json:"record_id"`
	Delegate id.Identity `json:"delegate"`
}

type MetadataResponse struct {
	RecordID    id.RecordID `json:"record_id"`
	MetadataRef string      `json:"metadata_ref"`
}

type OpenedResponse struct {
	RecordID id.RecordID `json:"record_id"`
	Opened   bool        `json:"opened"`
}

// TransferCountResponse reports how many records changed owner in a batch.
type TransferCountResponse struct {
	Transferred int `json:"transferred"`
}
