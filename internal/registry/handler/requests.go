package handler

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"keepsake/internal/registry/models"
	"keepsake/internal/registry/service"
	id "keepsake/pkg/domain"
	dErrors "keepsake/pkg/domain-errors"
)

const (
	maxRecipients  = 1000
	maxTitleLength = 200
	maxRefLength   = 2048
)

// CreateContentRequest is the body of POST /v1/contents.
type CreateContentRequest struct {
	Title               string        `json:"title"`
	Description         string        `json:"description"`
	ReleaseTime         time.Time     `json:"release_time"`
	LockedMetadataRef   string        `json:"locked_metadata_ref"`
	UnlockedMetadataRef string        `json:"unlocked_metadata_ref"`
	Policy              models.Policy `json:"policy"`
	Recipients          []string      `json:"recipients"`

	recipients []id.Identity
}

// Validate implements httputil.Validatable.
func (r *CreateContentRequest) Validate() error {
	// metadata refs are opaque and kept as sent
	r.Title = strings.TrimSpace(r.Title)

	if err := validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Length(0, maxTitleLength)),
		validation.Field(&r.ReleaseTime, validation.Required.Error("release_time is required")),
		validation.Field(&r.LockedMetadataRef, validation.Required, validation.Length(1, maxRefLength)),
		validation.Field(&r.UnlockedMetadataRef, validation.Required, validation.Length(1, maxRefLength)),
		validation.Field(&r.Recipients,
			validation.Required.Error("recipients must not be empty"),
			validation.Length(1, maxRecipients),
		),
	); err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, err.Error())
	}

	parsed, err := parseIdentities(r.Recipients, "recipients")
	if err != nil {
		return err
	}
	r.recipients = parsed
	return nil
}

func (r *CreateContentRequest) toInput() service.CreateContentInput {
	return service.CreateContentInput{
		Title:               r.Title,
		Description:         r.Description,
		ReleaseTime:         r.ReleaseTime,
		LockedMetadataRef:   r.LockedMetadataRef,
		UnlockedMetadataRef: r.UnlockedMetadataRef,
		Policy:              r.Policy,
		Recipients:          r.recipients,
	}
}

// ApproveRequest is the body of POST /v1/records/{recordID}/approve. An empty
// delegate clears the approval.
type ApproveRequest struct {
	Delegate string `json:"delegate"`

	delegate id.Identity
}

func (r *ApproveRequest) Validate() error {
	r.Delegate = strings.TrimSpace(r.Delegate)
	if r.Delegate == "" {
		r.delegate = id.NilIdentity
		return nil
	}
	delegate, err := id.ParseIdentity(r.Delegate)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "delegate: "+messageOf(err))
	}
	r.delegate = delegate
	return nil
}

// TransferRequest is the body of POST /v1/records/{recordID}/transfer.
type TransferRequest struct {
	From string `json:"from"`
	To   string `json:"to"`

	from id.Identity
	to   id.Identity
}

func (r *TransferRequest) Validate() error {
	if err := validation.ValidateStruct(r,
		validation.Field(&r.From, validation.Required),
		validation.Field(&r.To, validation.Required),
	); err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, err.Error())
	}
	var err error
	if r.from, err = parseIdentity(r.From, "from"); err != nil {
		return err
	}
	if r.to, err = parseIdentity(r.To, "to"); err != nil {
		return err
	}
	return nil
}

// ForceTransferRequest is the body of POST /v1/admin/records/{recordID}/force-transfer.
type ForceTransferRequest struct {
	NewOwner string `json:"new_owner"`

	newOwner id.Identity
}

func (r *ForceTransferRequest) Validate() error {
	if err := validation.ValidateStruct(r,
		validation.Field(&r.NewOwner, validation.Required),
	); err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, err.Error())
	}
	var err error
	r.newOwner, err = parseIdentity(r.NewOwner, "new_owner")
	return err
}

// TransferAllOfContentRequest is the body of POST
// /v1/admin/contents/{contentID}/transfer-all. new_owners[i] receives the
// content's i-th record in ascending id order.
type TransferAllOfContentRequest struct {
	NewOwners []string `json:"new_owners"`

	newOwners []id.Identity
}

func (r *TransferAllOfContentRequest) Validate() error {
	if err := validation.ValidateStruct(r,
		validation.Field(&r.NewOwners,
			validation.Required.Error("new_owners must not be empty"),
			validation.Length(1, maxRecipients),
		),
	); err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, err.Error())
	}
	parsed, err := parseIdentities(r.NewOwners, "new_owners")
	if err != nil {
		return err
	}
	r.newOwners = parsed
	return nil
}

// TransferAllFromOwnerRequest is the body of POST /v1/admin/owners/transfer-all.
type TransferAllFromOwnerRequest struct {
	From string `json:"from"`
	To   string `json:"to"`

	from id.Identity
	to   id.Identity
}

func (r *TransferAllFromOwnerRequest) Validate() error {
	if err := validation.ValidateStruct(r,
		validation.Field(&r.From, validation.Required),
		validation.Field(&r.To, validation.Required),
	); err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, err.Error())
	}
	var err error
	if r.from, err = parseIdentity(r.From, "from"); err != nil {
		return err
	}
	if r.to, err = parseIdentity(r.To, "to"); err != nil {
		return err
	}
	return nil
}

func parseIdentity(raw, field string) (id.Identity, error) {
	parsed, err := id.ParseIdentity(strings.TrimSpace(raw))
	if err != nil {
		return id.NilIdentity, dErrors.Wrap(err, dErrors.CodeValidation, field+": "+messageOf(err))
	}
	return parsed, nil
}

// parseIdentities parses every entry. The null address is let through so the
// service reports it with its own error.
func parseIdentities(raw []string, field string) ([]id.Identity, error) {
	out := make([]id.Identity, len(raw))
	for i, s := range raw {
		parsed, err := parseIdentity(s, field)
		if err != nil {
			return nil, err
		}
		out[i] = parsed
	}
	return out, nil
}

func messageOf(err error) string {
	if msg := dErrors.MessageOf(err); msg != "" {
		return msg
	}
	return err.Error()
}
