package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sakif/kanban-board/internal/repository"
	"github.com/sakif/kanban-board/internal/server"
)

func newResetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Replace all tasks with the default onboarding checklist",
		Long:  "Discards every task and comment and writes the default checklist. Registered users are kept.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			store, err := server.OpenStore(cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			if err := repository.ResetTasks(ctx, store); err != nil {
				return fmt.Errorf("resetting tasks: %w", err)
			}
			doc, err := store.Load(ctx)
			if err != nil {
				return err
			}

			logger.Info("tasks reset", slog.Int("tasks", len(doc.Tasks)), slog.Int("users", len(doc.Users)))
			fmt.Fprintf(cmd.OutOrStdout(), "Reset board to %d onboarding tasks (%d users kept).\n", len(doc.Tasks), len(doc.Users))
			return nil
		},
	}
}
