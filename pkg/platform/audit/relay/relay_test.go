//go:build integration

package relay

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "keepsake/pkg/platform/audit"
	auditpostgres "keepsake/pkg/platform/audit/store/postgres"
	"keepsake/pkg/testutil/containers"
)

type failingProducer struct{}

func (failingProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	results := make(kgo.ProduceResults, len(rs))
	for i, r := range rs {
		results[i] = kgo.ProduceResult{Record: r, Err: errors.New("broker unavailable")}
	}
	return results
}

type RelaySuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	redpanda *containers.RedpandaContainer
	outbox   *auditpostgres.Store
	client   *kgo.Client
	topic    string
	ctx      context.Context
}

func TestRelaySuite(t *testing.T) {
	suite.Run(t, new(RelaySuite))
}

func (s *RelaySuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.redpanda = mgr.GetRedpanda(s.T())
	s.outbox = auditpostgres.New(s.postgres.DB)
	s.topic = "keepsake.audit.relay-test"

	client, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Broker),
		kgo.AllowAutoTopicCreation(),
		kgo.ConsumeTopics(s.topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	s.client = client
}

func (s *RelaySuite) TearDownSuite() {
	if s.client != nil {
		s.client.Close()
	}
}

func (s *RelaySuite) SetupTest() {
	s.ctx = context.Background()
	s.Require().NoError(s.postgres.TruncateTables(s.ctx, "outbox"))
}

func (s *RelaySuite) appendEvent(action audit.AuditEvent, recordID uint64) {
	s.Require().NoError(s.outbox.Append(s.ctx, audit.Event{
		Action:    string(action),
		Timestamp: time.Now(),
		Subject:   "record",
		RecordID:  recordID,
	}))
}

func (s *RelaySuite) unpublished() int {
	var n int
	s.Require().NoError(s.postgres.DB.QueryRowContext(s.ctx,
		`SELECT count(*) FROM outbox WHERE published_at IS NULL`,
	).Scan(&n))
	return n
}

func (s *RelaySuite) TestPublishBatchDeliversAndMarks() {
	s.appendEvent(audit.EventRecordUnlocked, 7)
	s.appendEvent(audit.EventOwnershipChanged, 8)

	r := New(s.postgres.DB, s.client, s.topic)
	n, err := r.PublishBatch(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, n)
	s.Equal(0, s.unpublished())

	ctx, cancel := context.WithTimeout(s.ctx, 30*time.Second)
	defer cancel()

	// the topic is shared across tests, so match on record id
	got := make(map[uint64]string)
	for len(got) < 2 {
		fetches := s.client.PollFetches(ctx)
		s.Require().NoError(ctx.Err())
		fetches.EachRecord(func(rec *kgo.Record) {
			var p auditpostgres.OutboxPayload
			s.Require().NoError(json.Unmarshal(rec.Value, &p))
			if p.RecordID == 7 || p.RecordID == 8 {
				got[p.RecordID] = p.Action
			}
		})
	}
	s.Equal("record_unlocked", got[7])
	s.Equal("ownership_changed", got[8])

	n, err = r.PublishBatch(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *RelaySuite) TestProduceFailureKeepsRows() {
	s.appendEvent(audit.EventApprovalSet, 3)

	r := New(s.postgres.DB, failingProducer{}, s.topic)
	_, err := r.PublishBatch(s.ctx)
	s.Require().Error(err)
	s.Equal(1, s.unpublished())
}

func (s *RelaySuite) TestBatchSizeLimitsClaim() {
	for i := range 5 {
		s.appendEvent(audit.EventRecordUnlocked, uint64(i+1))
	}

	r := New(s.postgres.DB, s.client, s.topic, WithBatchSize(2))
	n, err := r.PublishBatch(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, n)
	s.Equal(3, s.unpublished())
}
