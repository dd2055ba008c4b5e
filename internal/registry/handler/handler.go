package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"keepsake/internal/registry/models"
	"keepsake/internal/registry/service"
	id "keepsake/pkg/domain"
	dErrors "keepsake/pkg/domain-errors"
	"keepsake/pkg/platform/httputil"
	"keepsake/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

// Service defines the registry operations exposed over HTTP.
type Service interface {
	CreateContent(ctx context.Context, caller id.Identity, in service.CreateContentInput) (*service.CreateContentResult, error)
	GetContent(ctx context.Context, contentID id.ContentID) (*models.Content, error)
	GetRecord(ctx context.Context, recordID id.RecordID) (*models.RecordView, error)
	OwnerOf(ctx context.Context, recordID id.RecordID) (id.Identity, error)
	ApprovedOf(ctx context.Context, recordID id.RecordID) (id.Identity, error)
	MetadataRefOf(ctx context.Context, recordID id.RecordID) (string, error)
	IsOpened(ctx context.Context, recordID id.RecordID) (bool, error)
	Approve(ctx context.Context, recordID id.RecordID, delegate, caller id.Identity) error
	Transfer(ctx context.Context, recordID id.RecordID, from, to, caller id.Identity) error
	Unlock(ctx context.Context, recordID id.RecordID, caller id.Identity) (*models.RecordView, error)
	ForceTransfer(ctx context.Context, recordID id.RecordID, newOwner, caller id.Identity) error
	TransferAllOfContent(ctx context.Context, contentID id.ContentID, newOwners []id.Identity, caller id.Identity) (int, error)
	TransferAllFromOwner(ctx context.Context, fromOwner, toOwner, caller id.Identity) (int, error)
}

// Handler serves the registry endpoints.
type Handler struct {
	registry Service
	logger   *slog.Logger
}

// New creates a registry Handler.
func New(registry Service, logger *slog.Logger) *Handler {
	return &Handler{registry: registry, logger: logger}
}

// Register mounts the registry routes on r. Authentication is applied by the
// caller's router group.
func (h *Handler) Register(r chi.Router) {
	r.Post("/contents", h.HandleCreateContent)
	r.Get("/contents/{contentID}", h.HandleGetContent)

	r.Route("/records/{recordID}", func(r chi.Router) {
		r.Get("/", h.HandleGetRecord)
		r.Get("/owner", h.HandleOwnerOf)
		r.Get("/approved", h.HandleApprovedOf)
		r.Get("/metadata", h.HandleMetadataRefOf)
		r.Get("/opened", h.HandleIsOpened)
		r.Post("/approve", h.HandleApprove)
		r.Post("/transfer", h.HandleTransfer)
		r.Post("/unlock", h.HandleUnlock)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Post("/records/{recordID}/force-transfer", h.HandleForceTransfer)
		r.Post("/contents/{contentID}/transfer-all", h.HandleTransferAllOfContent)
		r.Post("/owners/transfer-all", h.HandleTransferAllFromOwner)
	})
}

// HandleCreateContent registers a content and mints one record per recipient.
func (h *Handler) HandleCreateContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateContentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.registry.CreateContent(ctx, requestcontext.Caller(ctx), req.toInput())
	if err != nil {
		h.fail(ctx, w, "create content", err)
		return
	}

	h.logger.InfoContext(ctx, "content created",
		"request_id", requestID,
		"content_id", res.Content.ID,
		"records", len(res.RecordIDs),
	)
	httputil.WriteJSON(w, http.StatusCreated, toCreateContentResponse(res))
}

func (h *Handler) HandleGetContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	contentID, ok := h.contentIDParam(w, r)
	if !ok {
		return
	}
	content, err := h.registry.GetContent(ctx, contentID)
	if err != nil {
		h.fail(ctx, w, "get content", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, content)
}

func (h *Handler) HandleGetRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recordID, ok := h.recordIDParam(w, r)
	if !ok {
		return
	}
	view, err := h.registry.GetRecord(ctx, recordID)
	if err != nil {
		h.fail(ctx, w, "get record", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRecordResponse(view))
}

func (h *Handler) HandleOwnerOf(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recordID, ok := h.recordIDParam(w, r)
	if !ok {
		return
	}
	owner, err := h.registry.OwnerOf(ctx, recordID)
	if err != nil {
		h.fail(ctx, w, "owner of", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, OwnerResponse{RecordID: recordID, Owner: owner})
}

func (h *Handler) HandleApprovedOf(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recordID, ok := h.recordIDParam(w, r)
	if !ok {
		return
	}
	delegate, err := h.registry.ApprovedOf(ctx, recordID)
	if err != nil {
		h.fail(ctx, w, "approved of", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ApprovedResponse{RecordID: recordID, Delegate: delegate})
}

func (h *Handler) HandleMetadataRefOf(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recordID, ok := h.recordIDParam(w, r)
	if !ok {
		return
	}
	ref, err := h.registry.MetadataRefOf(ctx, recordID)
	if err != nil {
		h.fail(ctx, w, "metadata ref of", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, MetadataResponse{RecordID: recordID, MetadataRef: ref})
}

func (h *Handler) HandleIsOpened(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recordID, ok := h.recordIDParam(w, r)
	if !ok {
		return
	}
	opened, err := h.registry.IsOpened(ctx, recordID)
	if err != nil {
		h.fail(ctx, w, "is opened", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, OpenedResponse{RecordID: recordID, Opened: opened})
}

// HandleApprove sets or clears the record's approved delegate.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	recordID, ok := h.recordIDParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ApproveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.registry.Approve(ctx, recordID, req.delegate, requestcontext.Caller(ctx)); err != nil {
		h.fail(ctx, w, "approve", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	recordID, ok := h.recordIDParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[TransferRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.registry.Transfer(ctx, recordID, req.from, req.to, requestcontext.Caller(ctx)); err != nil {
		h.fail(ctx, w, "transfer", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUnlock opens a record and returns its updated view.
func (h *Handler) HandleUnlock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recordID, ok := h.recordIDParam(w, r)
	if !ok {
		return
	}
	view, err := h.registry.Unlock(ctx, recordID, requestcontext.Caller(ctx))
	if err != nil {
		h.fail(ctx, w, "unlock", err)
		return
	}
	h.logger.InfoContext(ctx, "record unlocked",
		"request_id", requestcontext.RequestID(ctx),
		"record_id", recordID,
	)
	httputil.WriteJSON(w, http.StatusOK, toRecordResponse(view))
}

func (h *Handler) HandleForceTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	recordID, ok := h.recordIDParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ForceTransferRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.registry.ForceTransfer(ctx, recordID, req.newOwner, requestcontext.Caller(ctx)); err != nil {
		h.fail(ctx, w, "force transfer", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleTransferAllOfContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	contentID, ok := h.contentIDParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[TransferAllOfContentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	n, err := h.registry.TransferAllOfContent(ctx, contentID, req.newOwners, requestcontext.Caller(ctx))
	if err != nil {
		h.fail(ctx, w, "transfer all of content", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, TransferCountResponse{Transferred: n})
}

func (h *Handler) HandleTransferAllFromOwner(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[TransferAllFromOwnerRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	n, err := h.registry.TransferAllFromOwner(ctx, req.from, req.to, requestcontext.Caller(ctx))
	if err != nil {
		h.fail(ctx, w, "transfer all from owner", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, TransferCountResponse{Transferred: n})
}

func (h *Handler) recordIDParam(w http.ResponseWriter, r *http.Request) (id.RecordID, bool) {
	recordID, err := id.ParseRecordID(chi.URLParam(r, "recordID"))
	if err != nil {
		httputil.WriteError(w, err)
		return 0, false
	}
	return recordID, true
}

func (h *Handler) contentIDParam(w http.ResponseWriter, r *http.Request) (id.ContentID, bool) {
	contentID, err := id.ParseContentID(chi.URLParam(r, "contentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return 0, false
	}
	return contentID, true
}

// fail logs err at a level matching its code and writes the error response.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, op string, err error) {
	code := dErrors.CodeOf(err)
	if code == dErrors.CodeInternal || code == dErrors.CodeTimeout {
		h.logger.ErrorContext(ctx, op+" failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	} else {
		h.logger.WarnContext(ctx, op+" rejected",
			"request_id", requestcontext.RequestID(ctx),
			"code", code,
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
