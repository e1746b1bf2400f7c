//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"registrar/pkg/platform/sentinel"
	"registrar/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *PostgresStore
	ctx      context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = NewPostgres(s.postgres.DB, "")
	s.Require().NoError(s.store.EnsureSchema(s.ctx))
	// Idempotent.
	s.Require().NoError(s.store.EnsureSchema(s.ctx))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx, DefaultTable))
}

func (s *PostgresStoreSuite) TestPutThenFind() {
	rec := sampleRecord("35202-1234567-1")
	s.Require().NoError(s.store.Put(s.ctx, rec))

	found, err := s.store.FindByID(s.ctx, rec.ID)
	s.Require().NoError(err)
	s.Equal(rec, found)
}

func (s *PostgresStoreSuite) TestUpsertKeepsLater() {
	first := sampleRecord("dup")
	second := sampleRecord("dup")
	second.Name = "Later"

	s.Require().NoError(s.store.Put(s.ctx, first))
	s.Require().NoError(s.store.Put(s.ctx, second))

	found, err := s.store.FindByID(s.ctx, "dup")
	s.Require().NoError(err)
	s.Equal("Later", found.Name)

	n, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *PostgresStoreSuite) TestFindUnknown() {
	_, err := s.store.FindByID(s.ctx, "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListOrderedByID() {
	s.Require().NoError(s.store.Put(s.ctx, sampleRecord("b")))
	s.Require().NoError(s.store.Put(s.ctx, sampleRecord("a")))

	records, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal("a", records[0].ID)
	s.Equal("b", records[1].ID)
}
