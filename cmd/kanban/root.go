package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sakif/kanban-board/internal/config"
)

// rootOptions holds the persistent flag values shared by every subcommand.
type rootOptions struct {
	port     int
	dataFile string
	webRoot  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "kanban",
		Short:         "Onboarding kanban board",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.IntVar(&opts.port, "port", 0, "listen port (overrides PORT)")
	flags.StringVar(&opts.dataFile, "data-file", "", "JSON document path (overrides DATA_FILE)")
	flags.StringVar(&opts.webRoot, "web-root", "", "static files directory (overrides WEB_ROOT)")

	cmd.AddCommand(
		newServeCmd(opts),
		newResetCmd(opts),
		newBoardCmd(opts),
	)
	return cmd
}

// loadConfig reads .env and the environment, applies any flags the user
// set explicitly, validates, and builds the logger. Logs go to the
// command's stderr so stdout stays clean for board output.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port = opts.port
	}
	if flags.Changed("data-file") {
		cfg.Store.DataFile = opts.dataFile
	}
	if flags.Changed("web-root") {
		cfg.WebRoot = opts.webRoot
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, cfg.NewLogger(cmd.ErrOrStderr()), nil
}
