package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/lib/pq"

	"keepsake/internal/registry/models"
	id "keepsake/pkg/domain"
	"keepsake/pkg/platform/sentinel"
	txcontext "keepsake/pkg/platform/tx"
)

// PostgresStore persists contents and records in PostgreSQL.
// This store is pure I/O. Serialization and policy belong to the service, which
// runs every mutation inside a transaction carried in ctx.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed registry store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) CreateContent(ctx context.Context, content *models.Content) (id.ContentID, error) {
	query := `
		INSERT INTO contents (
			creator, title, description, release_time,
			locked_metadata_ref, unlocked_metadata_ref,
			transferable, admin_transferable, admin_openable, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	var contentID int64
	err := s.execer(ctx).QueryRowContext(ctx, query,
		content.Creator.String(),
		content.Title,
		content.Description,
		content.ReleaseTime,
		content.LockedMetadataRef,
		content.UnlockedMetadataRef,
		content.Policy.Transferable,
		content.Policy.AdminTransferable,
		content.Policy.AdminOpenable,
		content.CreatedAt,
	).Scan(&contentID)
	if err != nil {
		return 0, fmt.Errorf("insert content: %w", err)
	}
	content.ID = id.ContentID(contentID)
	return content.ID, nil
}

func (s *PostgresStore) FindContent(ctx context.Context, contentID id.ContentID) (*models.Content, error) {
	query := `
		SELECT id, creator, title, description, release_time,
			   locked_metadata_ref, unlocked_metadata_ref,
			   transferable, admin_transferable, admin_openable, created_at
		FROM contents
		WHERE id = $1
	`
	var (
		c       models.Content
		rawID   int64
		creator string
	)
	err := s.execer(ctx).QueryRowContext(ctx, query, int64(contentID)).Scan(
		&rawID,
		&creator,
		&c.Title,
		&c.Description,
		&c.ReleaseTime,
		&c.LockedMetadataRef,
		&c.UnlockedMetadataRef,
		&c.Policy.Transferable,
		&c.Policy.AdminTransferable,
		&c.Policy.AdminOpenable,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find content: %w", err)
	}
	c.ID = id.ContentID(rawID)
	c.Creator = id.Identity(creator)
	c.ReleaseTime = c.ReleaseTime.UTC()
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}

// MintRecords inserts one record per recipient in a single statement. Rows are
// inserted in recipient order, so the returned ids ascend with it.
func (s *PostgresStore) MintRecords(ctx context.Context, contentID id.ContentID, recipients []id.Identity) ([]id.RecordID, error) {
	owners := make([]string, len(recipients))
	for i, r := range recipients {
		owners[i] = r.String()
	}
	query := `
		INSERT INTO records (content_id, owner)
		SELECT $1, r.owner
		FROM unnest($2::text[]) WITH ORDINALITY AS r(owner, ord)
		ORDER BY r.ord
		RETURNING id
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, int64(contentID), pq.Array(owners))
	if err != nil {
		return nil, fmt.Errorf("mint records: %w", err)
	}
	defer rows.Close()

	ids := make([]id.RecordID, 0, len(recipients))
	for rows.Next() {
		var rawID int64
		if err := rows.Scan(&rawID); err != nil {
			return nil, fmt.Errorf("scan minted record id: %w", err)
		}
		ids = append(ids, id.RecordID(rawID))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate minted records: %w", err)
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *PostgresStore) FindRecord(ctx context.Context, recordID id.RecordID) (*models.Record, error) {
	query := `
		SELECT id, content_id, owner, approved_delegate, opened, opened_at
		FROM records
		WHERE id = $1
	`
	r, err := scanRecord(s.execer(ctx).QueryRowContext(ctx, query, int64(recordID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find record: %w", err)
	}
	return r, nil
}

// UpdateRecords writes owner, delegate and opened state for every record in one
// statement. A missing id fails the whole update with sentinel.ErrNotFound; the
// surrounding transaction rolls the partial write back.
func (s *PostgresStore) UpdateRecords(ctx context.Context, records []*models.Record) error {
	if len(records) == 0 {
		return nil
	}
	var (
		ids       = make([]int64, len(records))
		owners    = make([]string, len(records))
		delegates = make([]string, len(records))
		opened    = make([]bool, len(records))
		openedAt  = make([]string, len(records))
	)
	for i, r := range records {
		ids[i] = int64(r.ID)
		owners[i] = r.Owner.String()
		delegates[i] = r.ApprovedDelegate.String()
		opened[i] = r.Opened
		if r.OpenedAt != nil {
			openedAt[i] = r.OpenedAt.UTC().Format(time.RFC3339Nano)
		}
	}
	query := `
		UPDATE records AS r SET
			owner = u.owner,
			approved_delegate = NULLIF(u.delegate, ''),
			opened = u.opened,
			opened_at = NULLIF(u.opened_at, '')::timestamptz
		FROM unnest($1::bigint[], $2::text[], $3::text[], $4::boolean[], $5::text[])
			AS u(id, owner, delegate, opened, opened_at)
		WHERE r.id = u.id
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		pq.Array(ids),
		pq.Array(owners),
		pq.Array(delegates),
		pq.Array(opened),
		pq.Array(openedAt),
	)
	if err != nil {
		return fmt.Errorf("update records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update records: %w", err)
	}
	if n != int64(len(records)) {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListRecordsByContent(ctx context.Context, contentID id.ContentID) ([]*models.Record, error) {
	query := `
		SELECT id, content_id, owner, approved_delegate, opened, opened_at
		FROM records
		WHERE content_id = $1
		ORDER BY id
	`
	return s.listRecords(ctx, query, int64(contentID))
}

func (s *PostgresStore) ListRecordsByOwner(ctx context.Context, owner id.Identity) ([]*models.Record, error) {
	query := `
		SELECT id, content_id, owner, approved_delegate, opened, opened_at
		FROM records
		WHERE owner = $1
		ORDER BY id
	`
	return s.listRecords(ctx, query, owner.String())
}

func (s *PostgresStore) listRecords(ctx context.Context, query string, arg any) ([]*models.Record, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []*models.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.Record, error) {
	var (
		rawID, contentID int64
		owner            string
		delegate         sql.NullString
		opened           bool
		openedAt         sql.NullTime
	)
	if err := row.Scan(&rawID, &contentID, &owner, &delegate, &opened, &openedAt); err != nil {
		return nil, err
	}
	r := &models.Record{
		ID:        id.RecordID(rawID),
		ContentID: id.ContentID(contentID),
		Owner:     id.Identity(owner),
		Opened:    opened,
	}
	if delegate.Valid {
		r.ApprovedDelegate = id.Identity(delegate.String)
	}
	if openedAt.Valid {
		t := openedAt.Time.UTC()
		r.OpenedAt = &t
	}
	return r, nil
}
