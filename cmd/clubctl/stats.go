package main

import (
	"github.com/spf13/cobra"
)

func init() {
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate row counts",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	repo, closeFn, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	stats, err := repo.GetStats(cmd.Context())
	if err != nil {
		return err
	}

	renderTable(
		[]string{"Users", "Members", "Messages", "Live sessions"},
		[][]interface{}{{stats.TotalUsers, stats.Members, stats.Messages, stats.LiveSessions}},
	)
	return nil
}
