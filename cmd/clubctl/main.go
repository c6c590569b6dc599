package main

import (
	"context"
	"fmt"
	"os"

	"clubhouse/internal/server/config"
	"clubhouse/internal/server/database"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "clubctl",
	Short: "Clubhouse operator CLI",
	Long:  "Command line interface for administering a clubhouse instance over a direct database connection.",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// connect opens a pool against DATABASE_URL and returns the repository.
// The caller owns the close function.
func connect(ctx context.Context) (*database.Repository, func(), error) {
	cfg := config.Load()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect: %w", err)
	}
	return database.NewRepository(db), db.Close, nil
}
