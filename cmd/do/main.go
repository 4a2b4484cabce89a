package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/templui/passreset/cmd/do/cmd"
	"github.com/templui/passreset/internal/logger"
)

func main() {
	flush := logger.Init(os.Getenv("APP_ENV") != "production", os.Getenv("SENTRY_DSN"))

	rootCmd := &cobra.Command{
		Use:          "do",
		Short:        "Operator and development tools for passreset",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cmd.DevCmd())
	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.CleanupCmd())
	rootCmd.AddCommand(cmd.UserCmd())

	err := rootCmd.Execute()
	flush()
	if err != nil {
		os.Exit(1)
	}
}
