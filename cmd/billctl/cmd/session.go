package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garyjia/billed/internal/domain/entity"
)

func newLoginCommand(a *app) *cobra.Command {
	var user entity.User

	c := &cobra.Command{
		Use:   "login",
		Short: "Record the identity used by the other commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Session().Login(cmd.Context(), user); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Connecté en tant que %s\n", user.Email)
			return nil
		},
	}

	c.Flags().StringVar(&user.Email, "email", "", "employee email")
	c.Flags().StringVar(&user.Type, "type", entity.UserTypeEmployee, "user type (Employee or Admin)")
	_ = c.MarkFlagRequired("email")
	return c
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the recorded identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Session().Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Déconnecté")
			return nil
		},
	}
}
