package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"keepsake/internal/registry/models"
	id "keepsake/pkg/domain"
	"keepsake/pkg/platform/sentinel"
)

var (
	alice = id.MustParseIdentity("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	bob   = id.MustParseIdentity("0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359")
	carol = id.MustParseIdentity("0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB")
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) newContent() *models.Content {
	return &models.Content{
		Creator:             alice,
		Title:               "Capsule",
		ReleaseTime:         time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		LockedMetadataRef:   "ipfs://sealed",
		UnlockedMetadataRef: "ipfs://open",
		Policy:              models.Policy{Transferable: true},
	}
}

func (s *InMemoryStoreSuite) TestContentIDsAreMonotonic() {
	first, err := s.store.CreateContent(s.ctx, s.newContent())
	s.Require().NoError(err)
	second, err := s.store.CreateContent(s.ctx, s.newContent())
	s.Require().NoError(err)

	s.Equal(id.ContentID(1), first)
	s.Equal(id.ContentID(2), second)

	found, err := s.store.FindContent(s.ctx, second)
	s.Require().NoError(err)
	s.Equal("Capsule", found.Title)
}

func (s *InMemoryStoreSuite) TestFindUnknownReturnsNotFound() {
	_, err := s.store.FindContent(s.ctx, 1)
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.FindRecord(s.ctx, 1)
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.MintRecords(s.ctx, 7, []id.Identity{alice})
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestMintAssignsIDsAcrossContents() {
	c1, _ := s.store.CreateContent(s.ctx, s.newContent())
	c2, _ := s.store.CreateContent(s.ctx, s.newContent())

	ids1, err := s.store.MintRecords(s.ctx, c1, []id.Identity{alice, bob})
	s.Require().NoError(err)
	ids2, err := s.store.MintRecords(s.ctx, c2, []id.Identity{carol})
	s.Require().NoError(err)

	s.Equal([]id.RecordID{1, 2}, ids1)
	s.Equal([]id.RecordID{3}, ids2)

	r, err := s.store.FindRecord(s.ctx, 2)
	s.Require().NoError(err)
	s.Equal(bob, r.Owner)
	s.Equal(c1, r.ContentID)
	s.False(r.Opened)
	s.True(r.ApprovedDelegate.IsNil())
}

func (s *InMemoryStoreSuite) TestFindReturnsCopies() {
	c, _ := s.store.CreateContent(s.ctx, s.newContent())
	_, _ = s.store.MintRecords(s.ctx, c, []id.Identity{alice})

	r, err := s.store.FindRecord(s.ctx, 1)
	s.Require().NoError(err)
	r.Owner = bob

	again, err := s.store.FindRecord(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(alice, again.Owner)
}

func (s *InMemoryStoreSuite) TestUpdateRecordsIsAllOrNothing() {
	c, _ := s.store.CreateContent(s.ctx, s.newContent())
	_, _ = s.store.MintRecords(s.ctx, c, []id.Identity{alice})

	err := s.store.UpdateRecords(s.ctx, []*models.Record{
		{ID: 1, ContentID: c, Owner: bob},
		{ID: 99, ContentID: c, Owner: bob},
	})
	s.ErrorIs(err, sentinel.ErrNotFound)

	r, _ := s.store.FindRecord(s.ctx, 1)
	s.Equal(alice, r.Owner)
}

func (s *InMemoryStoreSuite) TestUpdateRecordsKeepsContentBackReference() {
	c, _ := s.store.CreateContent(s.ctx, s.newContent())
	_, _ = s.store.MintRecords(s.ctx, c, []id.Identity{alice})

	s.Require().NoError(s.store.UpdateRecords(s.ctx, []*models.Record{{ID: 1, ContentID: 42, Owner: bob}}))

	r, _ := s.store.FindRecord(s.ctx, 1)
	s.Equal(bob, r.Owner)
	s.Equal(c, r.ContentID)
}

func (s *InMemoryStoreSuite) TestListingsAreAscending() {
	c1, _ := s.store.CreateContent(s.ctx, s.newContent())
	c2, _ := s.store.CreateContent(s.ctx, s.newContent())
	_, _ = s.store.MintRecords(s.ctx, c1, []id.Identity{alice, bob, alice})
	_, _ = s.store.MintRecords(s.ctx, c2, []id.Identity{alice})

	byContent, err := s.store.ListRecordsByContent(s.ctx, c1)
	s.Require().NoError(err)
	s.Equal([]id.RecordID{1, 2, 3}, recordIDs(byContent))

	byOwner, err := s.store.ListRecordsByOwner(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal([]id.RecordID{1, 3, 4}, recordIDs(byOwner))

	none, err := s.store.ListRecordsByOwner(s.ctx, carol)
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *InMemoryStoreSuite) TestCheckpointRollback() {
	c, _ := s.store.CreateContent(s.ctx, s.newContent())
	_, _ = s.store.MintRecords(s.ctx, c, []id.Identity{alice, bob})

	rollback, _ := s.store.Checkpoint()

	c2, _ := s.store.CreateContent(s.ctx, s.newContent())
	minted, _ := s.store.MintRecords(s.ctx, c2, []id.Identity{bob})
	s.Require().NoError(s.store.UpdateRecords(s.ctx, []*models.Record{{ID: 1, Owner: carol}}))
	s.Require().NoError(s.store.UpdateRecords(s.ctx, []*models.Record{{ID: 1, Owner: bob}}))
	s.Require().NoError(s.store.UpdateRecords(s.ctx, []*models.Record{{ID: minted[0], Owner: alice}}))

	s.Len(s.store.undo.before, 2, "only touched records are logged")

	rollback()

	_, err := s.store.FindContent(s.ctx, c2)
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.FindRecord(s.ctx, minted[0])
	s.ErrorIs(err, sentinel.ErrNotFound)
	r, err := s.store.FindRecord(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(alice, r.Owner, "first pre-image wins")
	untouched, err := s.store.FindRecord(s.ctx, 2)
	s.Require().NoError(err)
	s.Equal(bob, untouched.Owner)

	byContent, err := s.store.ListRecordsByContent(s.ctx, c)
	s.Require().NoError(err)
	s.Equal([]id.RecordID{1, 2}, recordIDs(byContent))

	next, _ := s.store.CreateContent(s.ctx, s.newContent())
	s.Equal(id.ContentID(3), next, "rolled-back ids leave a gap")
	nextRecords, _ := s.store.MintRecords(s.ctx, next, []id.Identity{carol})
	s.Equal([]id.RecordID{4}, nextRecords)

	byOwner, err := s.store.ListRecordsByOwner(s.ctx, carol)
	s.Require().NoError(err)
	s.Equal([]id.RecordID{4}, recordIDs(byOwner))
}

func (s *InMemoryStoreSuite) TestCheckpointCommit() {
	c, _ := s.store.CreateContent(s.ctx, s.newContent())

	rollback, commit := s.store.Checkpoint()
	_, _ = s.store.MintRecords(s.ctx, c, []id.Identity{alice})
	commit()
	s.Nil(s.store.undo)

	rollback()
	r, err := s.store.FindRecord(s.ctx, 1)
	s.Require().NoError(err, "a committed log cannot be replayed")
	s.Equal(alice, r.Owner)
}

func recordIDs(records []*models.Record) []id.RecordID {
	out := make([]id.RecordID, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
