package cli

import (
	"github.com/spf13/cobra"
)

func newAuthCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{Use: "auth", Short: "Sign in and recover passwords"}

	var email, password string
	login := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.container.Auth().Login(cmd.Context(), email, password); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Signed in as %s", email)
			return nil
		},
	}
	login.Flags().StringVar(&email, "email", "", "Account email")
	login.Flags().StringVar(&password, "password", "", "Account password")
	cmd.AddCommand(login)

	cmd.AddCommand(&cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.container.Auth().Logout(cmd.Context()); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	})

	var forgotEmail string
	forgot := &cobra.Command{
		Use:   "forgot",
		Short: "Email a password reset code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.container.Auth().ForgotPassword(cmd.Context(), forgotEmail); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Reset code sent to %s", forgotEmail)
			return nil
		},
	}
	forgot.Flags().StringVar(&forgotEmail, "email", "", "Account email")
	cmd.AddCommand(forgot)

	cmd.AddCommand(&cobra.Command{
		Use:   "verify <code>",
		Short: "Verify the emailed reset code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.container.Auth().VerifyOTP(cmd.Context(), args[0]); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Code verified, choose a new password with auth reset")
			return nil
		},
	})

	var newPassword, confirm string
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Set a new password after verifying the code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.container.Auth().ResetPassword(cmd.Context(), newPassword, confirm); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Password reset, sign in with the new password")
			return nil
		},
	}
	reset.Flags().StringVar(&newPassword, "password", "", "New password")
	reset.Flags().StringVar(&confirm, "confirm", "", "New password again")
	cmd.AddCommand(reset)

	return cmd
}
