package main

import (
	"github.com/spf13/cobra"

	"github.com/sakif/kanban-board/internal/board"
	"github.com/sakif/kanban-board/internal/server"
)

func newBoardCmd(opts *rootOptions) *cobra.Command {
	var (
		filter board.Filter
		lanes  bool
	)

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Print the board as text",
		Long:  "Reads the store directly and prints the summary and every column, applying the same filters as the browser app.",
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

			doc, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			return board.Render(cmd.OutOrStdout(), board.Project(doc.Tasks, doc.Users, filter, lanes))
		},
	}

	cmd.Flags().StringVar(&filter.Phase, "phase", board.All, "only tasks in this phase")
	cmd.Flags().StringVar(&filter.Priority, "priority", board.All, "only tasks with this priority")
	cmd.Flags().StringVar(&filter.Search, "q", "", "case-insensitive search over phase, title, description and assignee")
	cmd.Flags().BoolVar(&lanes, "lanes", false, "group each column into phase swimlanes")
	return cmd
}
