//go:build integration

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"keepsake/internal/registry/models"
	"keepsake/internal/registry/store"
	id "keepsake/pkg/domain"
	dErrors "keepsake/pkg/domain-errors"
	"keepsake/pkg/platform/audit/publishers/compliance"
	auditpostgres "keepsake/pkg/platform/audit/store/postgres"
	"keepsake/pkg/requestcontext"
	"keepsake/pkg/testutil/containers"
)

// PostgresServiceSuite runs the registry against Postgres with the outbox
// publisher, so rollbacks must cover both tables.
type PostgresServiceSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	service  *Service
	ctx      context.Context
	release  time.Time
}

func TestPostgresServiceSuite(t *testing.T) {
	suite.Run(t, new(PostgresServiceSuite))
}

func (s *PostgresServiceSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	svc, err := New(store.NewPostgres(s.postgres.DB), admin,
		WithAuditPublisher(compliance.New(auditpostgres.New(s.postgres.DB))),
		WithStoreTx(NewPostgresStoreTx(s.postgres.DB, 5*time.Second)),
	)
	s.Require().NoError(err)
	s.service = svc
}

func (s *PostgresServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.release = time.Now().Add(-time.Minute).UTC()
	s.Require().NoError(s.postgres.TruncateTables(s.ctx, "outbox", "records", "contents"))
}

func (s *PostgresServiceSuite) outboxCount() int {
	var n int
	s.Require().NoError(s.postgres.DB.QueryRowContext(s.ctx, `SELECT count(*) FROM outbox`).Scan(&n))
	return n
}

func (s *PostgresServiceSuite) create(recipients ...id.Identity) *CreateContentResult {
	res, err := s.service.CreateContent(s.ctx, admin, CreateContentInput{
		Title:               "Letter",
		ReleaseTime:         s.release,
		LockedMetadataRef:   "ipfs://locked",
		UnlockedMetadataRef: "ipfs://unlocked",
		Policy:              allowAll,
		Recipients:          recipients,
	})
	s.Require().NoError(err)
	return res
}

func (s *PostgresServiceSuite) TestEventsLandInOutbox() {
	res := s.create(alice, bob)
	s.Equal(1, s.outboxCount())

	s.Require().NoError(s.service.Transfer(s.ctx, res.RecordIDs[0], alice, carol, alice))
	_, err := s.service.Unlock(s.ctx, res.RecordIDs[0], carol)
	s.Require().NoError(err)
	s.Equal(3, s.outboxCount())

	ref, err := s.service.MetadataRefOf(s.ctx, res.RecordIDs[0])
	s.Require().NoError(err)
	s.Equal("ipfs://unlocked", ref)
}

func (s *PostgresServiceSuite) TestFailedBatchLeavesNoTrace() {
	res := s.create(alice, bob, carol)
	before := s.outboxCount()

	_, err := s.service.TransferAllOfContent(s.ctx, res.Content.ID, []id.Identity{stranger, stranger}, admin)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

	for i, want := range []id.Identity{alice, bob, carol} {
		owner, err := s.service.OwnerOf(s.ctx, res.RecordIDs[i])
		s.Require().NoError(err)
		s.Equal(want, owner)
	}
	s.Equal(before, s.outboxCount())
}

func (s *PostgresServiceSuite) TestConcurrentUnlockOpensOnce() {
	res := s.create(alice)
	rid := res.RepresentativeRecordID
	s.Require().NoError(s.service.Approve(s.ctx, rid, bob, alice))

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		already   int
	)
	for i := range workers {
		caller := alice
		if i%2 == 1 {
			caller = bob
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx := requestcontext.WithTime(context.Background(), time.Now())
			_, err := s.service.Unlock(ctx, rid, caller)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case dErrors.HasCode(err, dErrors.CodeAlreadyUnlocked):
				already++
			}
		}()
	}
	wg.Wait()

	s.Equal(1, successes)
	s.Equal(workers-1, already)

	var unlocks int
	s.Require().NoError(s.postgres.DB.QueryRowContext(s.ctx,
		`SELECT count(*) FROM outbox WHERE event_type = $1`, "record_unlocked",
	).Scan(&unlocks))
	s.Equal(1, unlocks)
}

func (s *PostgresServiceSuite) TestTransferAllFromOwnerAcrossContents() {
	first := s.create(alice, bob)
	second := s.create(alice)

	n, err := s.service.TransferAllFromOwner(s.ctx, alice, carol, admin)
	s.Require().NoError(err)
	s.Equal(2, n)

	for _, rid := range []id.RecordID{first.RecordIDs[0], second.RecordIDs[0]} {
		view, err := s.service.GetRecord(s.ctx, rid)
		s.Require().NoError(err)
		s.Equal(carol, view.Record.Owner)
		s.Equal(models.RecordStateLocked, view.State)
	}
}
