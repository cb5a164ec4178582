package persist

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/swarmsim/racersim/internal/system"
)

type TelemetryRepo struct {
	db *DB
}

func NewTelemetryRepo(db *DB) *TelemetryRepo {
	return &TelemetryRepo{db: db}
}

// Run is one recorded simulation run. It is a system.Sink.
type Run struct {
	ID   string
	repo *TelemetryRepo
}

// CreateRun records the start of a run.
func (r *TelemetryRepo) CreateRun(ctx context.Context, arena string, seed int64, entities int) (*Run, error) {
	id := uuid.NewString()
	if _, err := r.db.Pool.Exec(ctx,
		`INSERT INTO telemetry_runs (id, arena, seed, entities) VALUES ($1, $2, $3, $4)`,
		id, arena, seed, entities,
	); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	r.db.log.Info("telemetry run started", zap.String("run", id), zap.String("arena", arena))
	return &Run{ID: id, repo: r}, nil
}

// WriteSamples stores a batch in a single transaction.
func (run *Run) WriteSamples(ctx context.Context, samples []system.Sample) error {
	tx, err := run.repo.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("telemetry begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, s := range samples {
		if _, err := tx.Exec(ctx,
			`INSERT INTO telemetry_samples (run_id, tick, entity_id, pos_x, pos_y, pos_z, yaw, speed, charge)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			run.ID, int64(s.Tick), s.EntityID, s.Position.X, s.Position.Y, s.Position.Z, s.Yaw, s.Speed, s.Charge,
		); err != nil {
			return fmt.Errorf("telemetry insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// Finish stamps the run with its end time and tick count.
func (run *Run) Finish(ctx context.Context, ticks uint64) error {
	_, err := run.repo.db.Pool.Exec(ctx,
		`UPDATE telemetry_runs SET finished_at = now(), ticks = $2 WHERE id = $1`,
		run.ID, int64(ticks),
	)
	return err
}

// Charge loads the charge series of one entity in tick order.
func (r *TelemetryRepo) Charge(ctx context.Context, runID, entityID string) ([]float64, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT charge FROM telemetry_samples WHERE run_id = $1 AND entity_id = $2 ORDER BY tick`,
		runID, entityID,
	)
	if err != nil {
		return nil, fmt.Errorf("query charge: %w", err)
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var c float64
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

var _ system.Sink = (*Run)(nil)
