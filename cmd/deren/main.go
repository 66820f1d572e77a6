// Command deren runs research missions against a mind map stored in a
// project file.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agenthands/deren/internal/config"
	"github.com/agenthands/deren/internal/logging"
)

type options struct {
	configPath  string
	projectPath string
	title       string
	verbose     bool
	noDelay     bool
	timeout     time.Duration

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "deren",
		Short: "DEREN - research missions on a mind map",
		Long: `deren turns research commands into mind maps.

Every command reads the project file given by --project, applies its change
and writes the file back. "create canvas" and "new page" add a canvas page;
anything else runs a research mission.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			path := opts.configPath
			if path == "" {
				path = os.Getenv("CONFIG_PATH")
			}
			if path == "" {
				path = "config/config.toml"
			}
			cfg, err := config.LoadOrDefault(path)
			if err != nil {
				return err
			}
			cfg.ApplyEnv()
			cfg.Server.SeedDemo = false
			if opts.noDelay {
				cfg.Mission.PhaseDelay = config.Duration{}
				cfg.Mission.StepDelay = config.Duration{}
				cfg.Mission.ToolDelay = config.Duration{}
			}
			if opts.verbose {
				cfg.Log.Level = "debug"
			} else if cfg.Log.Level == "" {
				cfg.Log.Level = "warn"
			}
			opts.cfg = cfg

			opts.logger, err = logging.New(cfg.Log)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default: $CONFIG_PATH or config/config.toml)")
	root.PersistentFlags().StringVarP(&opts.projectPath, "project", "p", "deren-project.json", "Project file")
	root.PersistentFlags().StringVar(&opts.title, "title", "", "Project title written on save")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().BoolVar(&opts.noDelay, "no-delay", false, "Skip simulated mission latency")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 5*time.Minute, "Mission timeout")

	root.AddCommand(
		newRunCmd(opts),
		newSeedCmd(opts),
		newShowCmd(opts),
		newSearchCmd(opts),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
