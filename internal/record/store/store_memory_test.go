package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"registrar/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) TestPutAndFind() {
	s.Run("finds saved record", func() {
		rec := sampleRecord("mem-1")
		s.Require().NoError(s.store.Put(s.ctx, rec))

		found, err := s.store.FindByID(s.ctx, "mem-1")
		s.Require().NoError(err)
		s.Equal(rec, found)
	})

	s.Run("returns ErrNotFound for unknown identifier", func() {
		_, err := s.store.FindByID(s.ctx, "missing")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("rejects record without identifier", func() {
		s.Require().Error(s.store.Put(s.ctx, sampleRecord("")))
	})

	s.Run("returned records are copies", func() {
		s.Require().NoError(s.store.Put(s.ctx, sampleRecord("mem-2")))
		found, err := s.store.FindByID(s.ctx, "mem-2")
		s.Require().NoError(err)
		found.Name = "mutated"

		again, err := s.store.FindByID(s.ctx, "mem-2")
		s.Require().NoError(err)
		s.Equal("Bilal Ahmed", again.Name)
	})
}

func (s *InMemoryStoreSuite) TestLastWriteWins() {
	first := sampleRecord("dup")
	second := sampleRecord("dup")
	second.Name = "Second Name"

	s.Require().NoError(s.store.Put(s.ctx, first))
	s.Require().NoError(s.store.Put(s.ctx, second))

	found, err := s.store.FindByID(s.ctx, "dup")
	s.Require().NoError(err)
	s.Equal("Second Name", found.Name)

	count, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *InMemoryStoreSuite) TestListOrdersByIdentifier() {
	for _, id := range []string{"c", "a", "b"} {
		s.Require().NoError(s.store.Put(s.ctx, sampleRecord(id)))
	}
	records, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(records, 3)
	s.Equal("a", records[0].ID)
	s.Equal("b", records[1].ID)
	s.Equal("c", records[2].ID)
}
