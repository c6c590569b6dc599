package main

import (
	"github.com/spf13/cobra"
)

func init() {
	messagesCmd := &cobra.Command{
		Use:   "messages",
		Short: "Inspect the message board",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all messages, newest first",
		Args:  cobra.NoArgs,
		RunE:  runMessagesList,
	}

	messagesCmd.AddCommand(listCmd)
	rootCmd.AddCommand(messagesCmd)
}

func runMessagesList(cmd *cobra.Command, args []string) error {
	repo, closeFn, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	messages, err := repo.ListMessagesFull(cmd.Context())
	if err != nil {
		return err
	}

	rows := make([][]interface{}, 0, len(messages))
	for _, m := range messages {
		rows = append(rows, []interface{}{m.ID, m.Author, m.Title, m.Timestamp.Format("2006-01-02 15:04")})
	}
	renderTable([]string{"ID", "Author", "Title", "Posted"}, rows)
	return nil
}
