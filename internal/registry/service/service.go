// Package service orchestrates the rights registry: content creation and
// fan-out minting, approvals, ordinary and administrative transfers, and the
// time-gated unlock.
//
// Every mutation runs inside StoreTx. The service reads and checks everything
// a call will touch before it writes anything, and the transaction restores
// state if a write or event emission fails. Queries run through
// StoreTx.ReadInTx, so a failed call is never partially visible.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"keepsake/internal/registry/guard"
	registrymetrics "keepsake/internal/registry/metrics"
	"keepsake/internal/registry/models"
	id "keepsake/pkg/domain"
	dErrors "keepsake/pkg/domain-errors"
	audit "keepsake/pkg/platform/audit"
	"keepsake/pkg/platform/sentinel"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// Store is the arena of contents and records.
type Store interface {
	CreateContent(ctx context.Context, content *models.Content) (id.ContentID, error)
	FindContent(ctx context.Context, contentID id.ContentID) (*models.Content, error)
	MintRecords(ctx context.Context, contentID id.ContentID, recipients []id.Identity) ([]id.RecordID, error)
	FindRecord(ctx context.Context, recordID id.RecordID) (*models.Record, error)
	UpdateRecords(ctx context.Context, records []*models.Record) error
	ListRecordsByContent(ctx context.Context, contentID id.ContentID) ([]*models.Record, error)
	ListRecordsByOwner(ctx context.Context, owner id.Identity) ([]*models.Record, error)
}

// ContentReader serves content descriptors on the query path.
type ContentReader interface {
	FindContent(ctx context.Context, contentID id.ContentID) (*models.Content, error)
}

// ContractDirectory reports whether an identity is contract-controlled.
type ContractDirectory interface {
	IsContract(ctx context.Context, identity id.Identity) (bool, error)
}

// AuditPublisher records registry events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service implements the registry operations.
type Service struct {
	store         Store
	contents      ContentReader
	tx            StoreTx
	administrator id.Identity
	contracts     ContractDirectory
	guardPolicy   guard.Policy
	auditEmitter  *auditEmitter
	metrics       *registrymetrics.Metrics
	tracer        trace.Tracer
}

type serviceConfig struct {
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *registrymetrics.Metrics
	tx             StoreTx
	contents       ContentReader
	contracts      ContractDirectory
	guardPolicy    guard.Policy
}

type Option func(*serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(c *serviceConfig) {
		c.auditPublisher = publisher
	}
}

func WithMetrics(m *registrymetrics.Metrics) Option {
	return func(c *serviceConfig) {
		c.metrics = m
	}
}

// WithStoreTx sets the transactional boundary. Defaults to a global in-memory
// lock, which only suits the in-memory store.
func WithStoreTx(tx StoreTx) Option {
	return func(c *serviceConfig) {
		c.tx = tx
	}
}

// WithContentReader routes query-path content reads through r, typically a cache.
func WithContentReader(r ContentReader) Option {
	return func(c *serviceConfig) {
		c.contents = r
	}
}

// WithContractRecipientRule enables the contract-recipient transfer rule using
// dir to classify recipients.
func WithContractRecipientRule(dir ContractDirectory) Option {
	return func(c *serviceConfig) {
		c.contracts = dir
		c.guardPolicy.RestrictContractRecipients = dir != nil
	}
}

// New constructs a Service. administrator is the single identity allowed to
// create content and run administrative transfers.
func New(store Store, administrator id.Identity, opts ...Option) (*Service, error) {
	if administrator.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "administrator identity is required")
	}
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	tx := cfg.tx
	if tx == nil {
		tx = newInMemoryStoreTx()
	}
	contents := cfg.contents
	if contents == nil {
		contents = store
	}
	return &Service{
		store:         store,
		contents:      contents,
		tx:            tx,
		administrator: administrator,
		contracts:     cfg.contracts,
		guardPolicy:   cfg.guardPolicy,
		auditEmitter:  newAuditEmitter(cfg.logger, cfg.auditPublisher),
		metrics:       cfg.metrics,
		tracer:        otel.Tracer("keepsake/registry"),
	}, nil
}

// Administrator returns the configured administrator identity.
func (s *Service) Administrator() id.Identity {
	return s.administrator
}

func (s *Service) isAdmin(caller id.Identity) bool {
	return !caller.IsNil() && caller == s.administrator
}

func (s *Service) requireAdmin(caller id.Identity) error {
	if !s.isAdmin(caller) {
		return dErrors.New(dErrors.CodeForbidden, "caller is not the administrator")
	}
	return nil
}

// startOp opens a span and returns a finisher that records the outcome.
func (s *Service) startOp(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "registry."+op, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
			s.metrics.IncrementRejection(op, string(dErrors.CodeOf(err)))
		}
		s.metrics.ObserveOperation(op, start)
		span.End()
	}
}

func (s *Service) findRecord(ctx context.Context, recordID id.RecordID) (*models.Record, error) {
	record, err := s.store.FindRecord(ctx, recordID)
	if err != nil {
		return nil, wrapRecordErr(err)
	}
	return record, nil
}

func (s *Service) findContent(ctx context.Context, reader ContentReader, contentID id.ContentID) (*models.Content, error) {
	content, err := reader.FindContent(ctx, contentID)
	if err != nil {
		if isNotFound(err) {
			return nil, dErrors.New(dErrors.CodeNotFound, "content not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load content")
	}
	return content, nil
}

// checkTransfer resolves the recipient's kind and runs the guard.
func (s *Service) checkTransfer(ctx context.Context, content *models.Content, t guard.Transfer) error {
	if s.guardPolicy.RestrictContractRecipients && s.contracts != nil {
		isContract, err := s.contracts.IsContract(ctx, t.To)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to classify recipient")
		}
		t.RecipientIsContract = isContract
	}
	return guard.Check(content, t, s.guardPolicy)
}

func isNotFound(err error) bool {
	return errors.Is(err, sentinel.ErrNotFound)
}

func wrapRecordErr(err error) error {
	if isNotFound(err) {
		return dErrors.New(dErrors.CodeNotFound, "record not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load record")
}

// wrapStoreWriteErr keeps coded errors intact and marks everything else internal.
func wrapStoreWriteErr(err error, msg string) error {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
