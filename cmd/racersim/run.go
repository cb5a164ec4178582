package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/swarmsim/racersim/internal/config"
	"github.com/swarmsim/racersim/internal/core/factory"
	coresys "github.com/swarmsim/racersim/internal/core/system"
	"github.com/swarmsim/racersim/internal/persist"
	"github.com/swarmsim/racersim/internal/robot"
	"github.com/swarmsim/racersim/internal/space"
	"github.com/swarmsim/racersim/internal/system"
)

func runSimulation(cmd *cobra.Command, _ []string) error {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if arenaPath != "" {
		cfg.Simulation.Arena = arenaPath
	}
	if ticks >= 0 {
		cfg.Simulation.Ticks = ticks
	}
	if episodes > 0 {
		cfg.Simulation.Episodes = episodes
	}
	if cfg.Simulation.Ticks == 0 && cfg.Simulation.Episodes > 1 {
		return fmt.Errorf("--episodes needs a finite tick count")
	}

	// 2. Logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	// 3. Arena and entities
	sp, arena, err := buildSpace(cfg.Simulation.Arena, cfg, log)
	if err != nil {
		return err
	}
	defer sp.Destroy()
	log.Info("arena loaded", zap.String("arena", cfg.Simulation.Arena), zap.Int("entities", sp.Len()))

	// 4. Telemetry sinks
	mem := system.NewMemorySink()
	sinks := []system.Sink{mem}
	var dbRun *persist.Run
	if cfg.Database.Enabled {
		ctx := context.Background()
		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return err
		}
		defer db.Close()
		if _, err := persist.RunMigrations(ctx, db.Pool, log); err != nil {
			return err
		}
		dbRun, err = persist.NewTelemetryRepo(db).CreateRun(ctx, cfg.Simulation.Arena, cfg.Simulation.Seed, sp.Len())
		if err != nil {
			return err
		}
		sinks = append(sinks, dbRun)
	}

	// 5. Systems
	telemetry := system.NewTelemetrySystem(sp, log, cfg.Telemetry.IntervalTicks, sinks...)
	physics := system.NewPhysicsSystem(sp, robot.MaxSpeed, robot.MaxSteering)
	physics.SetBounds(arena.Size)
	watcher := system.WatchLifecycle(sp, log, cfg.Simulation.RemoveDepleted)
	runner := coresys.NewRunner()
	runner.Register(system.NewEventSystem(sp.Env().Bus))
	runner.Register(system.NewControlSystem(sp))
	runner.Register(physics)
	runner.Register(system.NewSensorSystem(sp, log))
	runner.Register(telemetry)
	runner.Register(system.NewCleanupSystem(sp))

	// 6. Episodes
	for ep := 1; ep <= cfg.Simulation.Episodes; ep++ {
		if ep > 1 {
			if err := sp.Reset(); err != nil {
				log.Error("reset entities", zap.Error(err))
			}
			telemetry.Reset()
		}
		log.Info("episode started", zap.Int("episode", ep), zap.Int("entities", sp.Len()))
		interrupted := loop(cfg.Simulation, runner, log)
		if runner.Ticks()%uint64(cfg.Telemetry.IntervalTicks) != 0 {
			telemetry.Flush()
		}
		if interrupted {
			break
		}
	}
	if dbRun != nil {
		if err := dbRun.Finish(context.Background(), runner.Ticks()); err != nil {
			log.Error("finish telemetry run", zap.Error(err))
		}
	}

	// 7. Summary
	printSummary(cmd, sp, runner.Ticks())
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d depleted, %d removed\n", len(watcher.Depleted()), watcher.Removed())
	if cfg.Telemetry.Plot {
		plotCharge(cmd, sp, mem, cfg.Telemetry.PlotHeight)
	}
	return nil
}

// loop runs one episode: it ticks until the configured count is reached or
// a signal arrives, and reports whether it was interrupted. In realtime mode
// each tick waits for the wall clock.
func loop(cfg config.SimulationConfig, runner *coresys.Runner, log *zap.Logger) bool {
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)

	var tickC <-chan time.Time
	if cfg.Realtime {
		ticker := time.NewTicker(cfg.TickRate)
		defer ticker.Stop()
		tickC = ticker.C
	}

	log.Info("simulation started",
		zap.Int("ticks", cfg.Ticks), zap.Duration("tick_rate", cfg.TickRate),
		zap.Bool("realtime", cfg.Realtime), zap.Int64("seed", cfg.Seed))
	start := time.Now()
	for n := 0; cfg.Ticks == 0 || n < cfg.Ticks; n++ {
		if tickC != nil {
			select {
			case <-tickC:
			case sig := <-shutdownCh:
				log.Info("shutdown signal", zap.String("signal", sig.String()))
				return true
			}
		} else {
			select {
			case sig := <-shutdownCh:
				log.Info("shutdown signal", zap.String("signal", sig.String()))
				return true
			default:
			}
		}
		runner.Tick(cfg.TickRate)
	}
	log.Info("episode finished", zap.Uint64("ticks", runner.Ticks()), zap.Duration("elapsed", time.Since(start)))
	return false
}

func printSummary(cmd *cobra.Command, sp *space.Space, ticks uint64) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%d ticks\n\n", ticks)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tPOSITION\tDISPLACEMENT\tCHARGE\tUSED")
	sp.Each(func(e factory.Entity) {
		pos, moved, charge, used := "-", "-", "-", "-"
		if d, ok := e.(system.Driven); ok {
			body := d.Body()
			pos = body.Position().String()
			moved = fmt.Sprintf("%.3f", body.Position().Distance(body.InitialPosition()))
		}
		if p, ok := e.(system.Powered); ok {
			b := p.Battery()
			charge = fmt.Sprintf("%.4f", b.AvailableCharge())
			used = fmt.Sprintf("%.4f", b.StartCharge()-b.AvailableCharge())
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", e.ID(), e.Type(), pos, moved, charge, used)
	})
	w.Flush()
}

func plotCharge(cmd *cobra.Command, sp *space.Space, mem *system.MemorySink, height int) {
	sp.Each(func(e factory.Entity) {
		series := mem.Charge(e.ID())
		if len(series) < 2 {
			return
		}
		graph := asciigraph.Plot(series,
			asciigraph.Height(height),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("battery charge (%s)", e.ID())),
		)
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), graph)
	})
}
