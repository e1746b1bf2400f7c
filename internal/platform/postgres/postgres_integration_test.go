//go:build integration

package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"registrar/internal/platform/postgres"
	"registrar/pkg/testutil/containers"
)

func TestOpenAppliesPoolLimits(t *testing.T) {
	pg := containers.GetManager().GetPostgres(t)

	db, err := postgres.Open(context.Background(), postgres.Config{DSN: pg.DSN, MaxOpenConns: 3})
	require.NoError(t, err)
	defer db.Close()

	require.Equal(t, 3, db.Stats().MaxOpenConnections)
}
