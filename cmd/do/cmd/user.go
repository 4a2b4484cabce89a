package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/templui/passreset/internal/repository"
	"github.com/templui/passreset/internal/service"
)

func UserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	cmd.AddCommand(userCreateCmd())
	return cmd
}

func userCreateCmd() *cobra.Command {
	var email, username, password string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, _, err := openDB()
			if err != nil {
				return err
			}
			defer conn.Close()

			accounts := service.NewAccountService(repository.NewUserRepository(conn), 0)
			return runUserCreate(cmd, accounts, email, username, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&username, "username", "", "account username")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func runUserCreate(cmd *cobra.Command, accounts *service.AccountService, email, username, password string) error {
	user, err := accounts.Register(cmd.Context(), email, username, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", user.ID, user.Email)
	return nil
}
