package persist

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/swarmsim/racersim/internal/config"
	"github.com/swarmsim/racersim/internal/geom"
	"github.com/swarmsim/racersim/internal/system"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("RACERSIM_TEST_DSN")
	if dsn == "" {
		t.Skip("RACERSIM_TEST_DSN not set")
	}
	ctx := context.Background()
	db, err := NewDB(ctx, config.DatabaseConfig{
		DSN:             dsn,
		MaxOpenConns:    4,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(db.Close)
	_, err = RunMigrations(ctx, db.Pool, zap.NewNop())
	require.NoError(t, err)
	return db
}

func TestTelemetryRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewTelemetryRepo(db)

	run, err := repo.CreateRun(ctx, "testdata/arena.yaml", 7, 1)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = db.Pool.Exec(context.Background(), `DELETE FROM telemetry_runs WHERE id = $1`, run.ID)
	})

	require.NoError(t, run.WriteSamples(ctx, []system.Sample{
		{Tick: 10, EntityID: "dr0", Position: geom.Vector3{X: 1}, Charge: 0.9},
		{Tick: 20, EntityID: "dr0", Position: geom.Vector3{X: 2}, Charge: 0.8},
		{Tick: 10, EntityID: "dr1", Charge: 1},
	}))
	require.NoError(t, run.Finish(ctx, 20))

	charge, err := repo.Charge(ctx, run.ID, "dr0")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.9, 0.8}, charge)
}

func TestWriteSamplesIsAtomic(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewTelemetryRepo(db)

	run, err := repo.CreateRun(ctx, "atomic", 0, 1)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = db.Pool.Exec(context.Background(), `DELETE FROM telemetry_runs WHERE id = $1`, run.ID)
	})

	// The repeated primary key fails the batch; nothing may be stored.
	err = run.WriteSamples(ctx, []system.Sample{
		{Tick: 1, EntityID: "dr0", Charge: 1},
		{Tick: 1, EntityID: "dr0", Charge: 1},
	})
	require.Error(t, err)

	charge, err := repo.Charge(ctx, run.ID, "dr0")
	require.NoError(t, err)
	assert.Empty(t, charge)
}
