package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/templui/passreset/internal/ctxkeys"
	"github.com/templui/passreset/internal/repository"
)

func CleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete password reset tokens whose window has closed",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, _, err := openDB()
			if err != nil {
				return err
			}
			defer conn.Close()

			return runCleanup(cmd, repository.NewTokenRepository(conn))
		},
	}
}

func runCleanup(cmd *cobra.Command, tokens repository.TokenRepository) error {
	ctx := cmd.Context()
	n, err := tokens.DeleteExpired(ctx, ctxkeys.Now(ctx))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "deleted %d expired reset tokens\n", n)
	return nil
}
