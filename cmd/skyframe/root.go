package main

import (
	"fmt"

	"github.com/danmuck/skyframe/internal/config"
	"github.com/danmuck/skyframe/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type globalOpts struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &globalOpts{}
	cmd := &cobra.Command{
		Use:           "skyframe",
		Short:         "Decode AT Protocol repository event stream frames",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to skyframe.toml (defaults built in)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log level (trace|debug|info|warn|error|off)")

	cmd.AddCommand(
		newDecodeCmd(),
		newEncodeCmd(),
		newReplayCmd(opts),
		newStreamCmd(opts),
		newConfigCmd(),
	)
	return cmd
}

// load resolves the config file and installs the process logger.
func (o *globalOpts) load() (config.Config, zerolog.Logger, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return config.Config{}, zerolog.Nop(), err
		}
		cfg = loaded
	}
	if o.logLevel != "" {
		lvl, ok := logging.ParseLevel(o.logLevel)
		if !ok {
			return config.Config{}, zerolog.Nop(), fmt.Errorf("unknown log level %q", o.logLevel)
		}
		cfg.Log.Level = lvl
	}
	return cfg, logging.Configure(cfg.Log), nil
}
