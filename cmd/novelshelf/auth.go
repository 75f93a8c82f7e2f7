package cmd

import (
	"errors"
	"fmt"

	"github.com/kerbaras/novelshelf/pkg/services"
	"github.com/kerbaras/novelshelf/pkg/validate"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		var err error
		if email == "" {
			if email, err = prompt(cmd.InOrStdin(), cmd.OutOrStdout(), "Email: "); err != nil {
				return err
			}
		}
		if password == "" {
			if password, err = prompt(cmd.InOrStdin(), cmd.OutOrStdout(), "Password: "); err != nil {
				return err
			}
		}

		user, err := ctrl.Auth.Login(cmd.Context(), email, password)
		if errors.Is(err, services.ErrNoAccount) {
			return fmt.Errorf("%w; create one with 'novelshelf signup'", err)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Signed in as %s (%s)\n", user.Name, user.Role)
		return nil
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		form := validate.SignupForm{}
		form.Name, _ = cmd.Flags().GetString("name")
		form.Email, _ = cmd.Flags().GetString("email")
		form.Password, _ = cmd.Flags().GetString("password")
		if form.Password == "" {
			var err error
			if form.Password, err = prompt(cmd.InOrStdin(), cmd.OutOrStdout(), "Password: "); err != nil {
				return err
			}
			if form.Confirm, err = prompt(cmd.InOrStdin(), cmd.OutOrStdout(), "Confirm password: "); err != nil {
				return err
			}
		} else {
			form.Confirm = form.Password
		}

		user, err := ctrl.Auth.Signup(cmd.Context(), form)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Welcome, %s!\n", user.Name)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ctrl.Auth.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "👋 Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, user := ctrl.Session.Current()
		if token == "" || user == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\nrole: %s\nid:   %s\n", user.Name, user.Email, user.Role, user.ID)
		if ctrl.Session.Offline() {
			fmt.Fprintln(cmd.OutOrStdout(), "(cached profile, backend unreachable)")
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().StringP("email", "e", "", "Account email")
	loginCmd.Flags().StringP("password", "p", "", "Password (prompted when omitted)")

	signupCmd.Flags().StringP("name", "n", "", "Display name")
	signupCmd.Flags().StringP("email", "e", "", "Account email")
	signupCmd.Flags().StringP("password", "p", "", "Password (prompted when omitted)")
	signupCmd.MarkFlagRequired("name")
	signupCmd.MarkFlagRequired("email")
}
