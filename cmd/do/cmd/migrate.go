package cmd

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/templui/passreset/internal/db"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	cmd.AddCommand(migrateUpCmd())
	cmd.AddCommand(migrateDownCmd())
	return cmd
}

func migrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, driver, err := openDB()
			if err != nil {
				return err
			}
			defer conn.Close()

			err = db.RunMigrations(conn.DB, driver)
			if err != nil {
				return err
			}
			return printVersion(cmd, conn.DB, driver)
		},
	}
}

func migrateDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, driver, err := openDB()
			if err != nil {
				return err
			}
			defer conn.Close()

			err = db.MigrateDown(conn.DB, driver)
			if err != nil {
				return err
			}
			return printVersion(cmd, conn.DB, driver)
		},
	}
}

func printVersion(cmd *cobra.Command, conn *sql.DB, driver string) error {
	version, err := db.MigrationVersion(conn, driver)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version: %d\n", version)
	return nil
}
