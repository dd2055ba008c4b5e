package store

import (
	"context"
	"sync"

	"keepsake/internal/registry/models"
	id "keepsake/pkg/domain"
	"keepsake/pkg/platform/sentinel"
)

// InMemory keeps contents and records keyed by id. Records point at their
// content by id only; recordOrder holds record ids in ascending order.
//
// Ids come from monotonic counters, so a rolled-back create leaves a gap and
// an id is never issued twice.
//
// The store does not serialize multi-step operations on its own; callers run
// mutations inside a StoreTx. Checkpoint opens an undo log that the tx replays
// when a later step fails.
type InMemory struct {
	mu            sync.RWMutex
	contents      map[id.ContentID]*models.Content
	records       map[id.RecordID]*models.Record
	recordOrder   []id.RecordID
	lastContentID id.ContentID
	lastRecordID  id.RecordID
	undo          *undoLog
}

// undoLog holds what one transaction changed: the contents and records it
// created and the prior image of every record it overwrote.
type undoLog struct {
	createdContents []id.ContentID
	orderLen        int
	before          map[id.RecordID]*models.Record
}

func NewInMemory() *InMemory {
	return &InMemory{
		contents: make(map[id.ContentID]*models.Content),
		records:  make(map[id.RecordID]*models.Record),
	}
}

func (s *InMemory) CreateContent(_ context.Context, content *models.Content) (id.ContentID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastContentID++
	c := *content
	c.ID = s.lastContentID
	s.contents[c.ID] = &c
	if s.undo != nil {
		s.undo.createdContents = append(s.undo.createdContents, c.ID)
	}
	content.ID = c.ID
	return c.ID, nil
}

func (s *InMemory) FindContent(_ context.Context, contentID id.ContentID) (*models.Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contents[contentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// MintRecords appends one record per recipient, in order, and returns their ids.
func (s *InMemory) MintRecords(_ context.Context, contentID id.ContentID, recipients []id.Identity) ([]id.RecordID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contents[contentID]; !ok {
		return nil, sentinel.ErrNotFound
	}
	ids := make([]id.RecordID, 0, len(recipients))
	for _, owner := range recipients {
		s.lastRecordID++
		r := &models.Record{
			ID:        s.lastRecordID,
			ContentID: contentID,
			Owner:     owner,
		}
		s.records[r.ID] = r
		s.recordOrder = append(s.recordOrder, r.ID)
		ids = append(ids, r.ID)
	}
	return ids, nil
}

func (s *InMemory) FindRecord(_ context.Context, recordID id.RecordID) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[recordID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return r.Clone(), nil
}

// UpdateRecords writes owner, delegate and opened state for every record. Either
// all records exist and are written, or none are.
func (s *InMemory) UpdateRecords(_ context.Context, records []*models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		if _, ok := s.records[r.ID]; !ok {
			return sentinel.ErrNotFound
		}
	}
	for _, r := range records {
		existing := s.records[r.ID]
		if s.undo != nil {
			if _, seen := s.undo.before[r.ID]; !seen {
				s.undo.before[r.ID] = existing
			}
		}
		next := r.Clone()
		next.ContentID = existing.ContentID
		s.records[r.ID] = next
	}
	return nil
}

// ListRecordsByContent returns the content's records in ascending id order.
func (s *InMemory) ListRecordsByContent(_ context.Context, contentID id.ContentID) ([]*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Record
	for _, recordID := range s.recordOrder {
		if r := s.records[recordID]; r.ContentID == contentID {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

// ListRecordsByOwner returns records currently owned by owner in ascending id order.
func (s *InMemory) ListRecordsByOwner(_ context.Context, owner id.Identity) ([]*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Record
	for _, recordID := range s.recordOrder {
		if r := s.records[recordID]; r.Owner == owner {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

// Checkpoint opens an undo log. rollback replays it; commit discards it. Only
// records a call touches are captured, and the id counters are left alone.
func (s *InMemory) Checkpoint() (rollback func(), commit func()) {
	s.mu.Lock()
	log := &undoLog{
		orderLen: len(s.recordOrder),
		before:   make(map[id.RecordID]*models.Record),
	}
	s.undo = log
	s.mu.Unlock()

	rollback = func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.undo != log {
			return
		}
		for recordID, prior := range log.before {
			s.records[recordID] = prior
		}
		for _, recordID := range s.recordOrder[log.orderLen:] {
			delete(s.records, recordID)
		}
		s.recordOrder = s.recordOrder[:log.orderLen]
		for _, contentID := range log.createdContents {
			delete(s.contents, contentID)
		}
		s.undo = nil
	}
	commit = func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.undo == log {
			s.undo = nil
		}
	}
	return rollback, commit
}
