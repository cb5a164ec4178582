package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/swarmsim/racersim/internal/config"
	"github.com/swarmsim/racersim/internal/controller"
	"github.com/swarmsim/racersim/internal/core/factory"
	"github.com/swarmsim/racersim/internal/data"
	"github.com/swarmsim/racersim/internal/space"

	// Entity types register themselves with the factory.
	_ "github.com/swarmsim/racersim/internal/robot"
)

var (
	configPath string
	arenaPath  string
	ticks      int
	episodes   int
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "racersim",
		Short:         "multi-robot DeepRacer simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $"+config.EnvPath+" or "+config.DefaultPath+")")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the simulation loop",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&arenaPath, "arena", "", "arena file, overrides simulation.arena")
	runCmd.Flags().IntVar(&ticks, "ticks", -1, "ticks per episode, overrides simulation.ticks (0 = until interrupted)")
	runCmd.Flags().IntVar(&episodes, "episodes", 0, "episodes to run, overrides simulation.episodes")

	entitiesCmd := &cobra.Command{
		Use:   "entities",
		Short: "list registered entity types",
		Args:  cobra.NoArgs,
		RunE:  listEntities,
	}
	entitiesCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print full descriptions")

	controllersCmd := &cobra.Command{
		Use:   "controllers",
		Short: "list registered controller types",
		Args:  cobra.NoArgs,
		RunE:  listControllers,
	}

	validateCmd := &cobra.Command{
		Use:   "validate [arena]",
		Short: "build every entity of an arena and report the first failure",
		Args:  cobra.MaximumNArgs(1),
		RunE:  validateArena,
	}

	rootCmd.AddCommand(runCmd, entitiesCmd, controllersCmd, validateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func listEntities(cmd *cobra.Command, _ []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tVERSION\tSTATUS\tDESCRIPTION")
	for _, tag := range factory.Tags() {
		d, _ := factory.Get(tag)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", tag, d.Version, d.Status, d.Brief)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if verbose {
		for _, tag := range factory.Tags() {
			d, _ := factory.Get(tag)
			fmt.Fprintf(cmd.OutOrStdout(), "\n== %s (%s) ==\n\n%s", tag, d.Author, d.Description)
		}
	}
	return nil
}

func listControllers(cmd *cobra.Command, _ []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tDESCRIPTION")
	for _, tag := range controller.Tags() {
		d, _ := controller.LookupType(tag)
		fmt.Fprintf(w, "%s\t%s\n", tag, d.Brief)
	}
	return w.Flush()
}

func validateArena(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := cfg.Simulation.Arena
	if len(args) == 1 {
		path = args[0]
	}
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	sp, arena, err := buildSpace(path, cfg, log)
	if err != nil {
		return err
	}
	defer sp.Destroy()

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d controllers, %d entities OK\n",
		path, arena.Controllers.Len(), sp.Len())
	return nil
}

func loadConfig() (*config.Config, error) {
	return config.Load(config.Path(configPath))
}

// buildSpace loads an arena and constructs all of its entities. On failure
// nothing built so far survives.
func buildSpace(path string, cfg *config.Config, log *zap.Logger) (*space.Space, *data.Arena, error) {
	arena, err := data.LoadArena(path)
	if err != nil {
		return nil, nil, err
	}
	env := factory.NewEnv(log)
	env.Controllers = arena.Controllers
	env.ScriptsDir = cfg.Scripting.Dir
	env.Seed = cfg.Simulation.Seed

	sp := space.New(env)
	for _, spec := range arena.Entities {
		if _, err := sp.Create(spec.Type, spec.Node); err != nil {
			sp.Destroy()
			return nil, nil, fmt.Errorf("%s line %d: %w", path, spec.Node.Line, err)
		}
	}
	return sp, arena, nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
