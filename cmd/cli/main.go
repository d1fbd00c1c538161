package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/memohai/pixeltools/internal/boot"
	"github.com/memohai/pixeltools/internal/config"
	"github.com/memohai/pixeltools/internal/logger"
	"github.com/memohai/pixeltools/internal/version"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           version.Name,
		Short:         "Resolve, unfurl and sanitize chat media from the shell",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", os.Getenv("CONFIG_PATH"), "path to config.toml")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	cmd.AddCommand(
		newFetchCmd(opts),
		newUnfurlCmd(opts),
		newTokenCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

type runtime struct {
	cfg    config.Config
	rc     *boot.RuntimeConfig
	logger *slog.Logger
}

// load reads the config and builds a stderr logger so stdout stays free
// for image bytes.
func (o *rootOptions) load(cmd *cobra.Command) (runtime, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return runtime{}, fmt.Errorf("load config: %w", err)
	}
	level := cfg.Log.Level
	if o.logLevel != "" {
		level = o.logLevel
	}
	rc, err := boot.ProvideRuntimeConfig(cfg)
	if err != nil {
		return runtime{}, err
	}
	return runtime{
		cfg:    cfg,
		rc:     rc,
		logger: logger.New(cmd.ErrOrStderr(), level, cfg.Log.Format),
	}, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", version.Name, version.GetInfo())
		},
	}
}
