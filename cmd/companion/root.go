package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/syssam/companion/internal/logger"
)

// app is the state shared by the subcommands.
type app struct {
	v   *viper.Viper
	cfg *Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: newViper()}
	var configFile string
	root := &cobra.Command{
		Use:   "companion",
		Short: "Generate companion types for marked Go structs",
		Long: `companion derives companion types from Go structs marked with a
//companion:<marker> directive.

Markers:
  //companion:bean          immutable, mutable and codec adapter companions
  //companion:controller    controller descriptor (optional resource path argument)

Examples:
  companion generate ./...            # Write companions of every package
  companion check ./...               # Fail if generated files are stale
  companion watch ./models            # Regenerate on change
  companion generate --suffix mutable=Draft ./...`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(a.v, configFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = logger.New(logger.Options{
				Verbosity: cfg.Verbose,
				JSON:      cfg.JSONLog,
				Output:    cmd.ErrOrStderr(),
			})
			if cfg.ConfigFile != "" {
				a.log.Debug("config loaded", zap.String("file", cfg.ConfigFile))
			}
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default: companion.yaml in --dir)")
	flags.String("dir", ".", "directory of the module to generate")
	flags.String("target", "", "companion package path relative to each source package")
	flags.StringToString("suffix", nil, "name suffix per role, e.g. mutable=Draft")
	flags.Int("workers", 0, "source types generated concurrently (default: GOMAXPROCS)")
	flags.String("header", "", "header comment of generated files")
	flags.StringSlice("tags", nil, "build tags used when loading packages")
	flags.CountP("verbose", "v", "increase output verbosity (-v, -vv)")
	flags.Bool("json-log", false, "log in JSON")
	for key, flag := range map[string]string{
		"dir":      "dir",
		"target":   "target",
		"suffixes": "suffix",
		"workers":  "workers",
		"header":   "header",
		"tags":     "tags",
		"verbose":  "verbose",
		"json-log": "json-log",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		newGenerateCmd(a),
		newCheckCmd(a),
		newWatchCmd(a),
	)
	return root
}
