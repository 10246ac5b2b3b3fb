// Package main contains the bulk import tool. It loads a Telegram JSON chat
// export into the archive database used by the bot.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/telearchive/indexbot/internal/database"
	"github.com/telearchive/indexbot/internal/importer"
	"github.com/telearchive/indexbot/internal/logger"
)

func main() {
	var (
		dbPath   string
		logLevel string
	)

	rootCmd := &cobra.Command{
		Use:   "import <export.json>",
		Short: "Import a Telegram chat export into the archive database",
		Long: "Import parses a Telegram desktop JSON chat export and bulk-loads it\n" +
			"into the archive database, rebuilding the full-text index. The import\n" +
			"runs in one transaction; any bad entry aborts it without partial data.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logger.NewLogger(logLevel, false)

			db, err := database.NewDB(dbPath)
			if err != nil {
				return err
			}
			defer database.CloseDB(db)

			store := database.NewStore(db, log)
			return importer.New(store, log).Run(ctx, args[0])
		},
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVar(&dbPath, "db", "storage.db", "path to the archive database")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
