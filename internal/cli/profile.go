package cli

import (
	"github.com/goliatone/go-resource-client/media"
	"github.com/spf13/cobra"
)

func newProfileCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{Use: "profile", Short: "Show and edit the signed-in administrator"}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the signed-in administrator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loading(cmd.ErrOrStderr(), "profile")
			admin, err := app.container.Services().Profile.Get(cmd.Context())
			if err != nil {
				return err
			}

			version := admin.ID
			if !admin.UpdatedAt.IsZero() {
				version = admin.UpdatedAt.UTC().Format("20060102150405")
			}
			rows := [][]string{
				{"Name", orDash(admin.Fullname)},
				{"Email", orDash(admin.Email)},
				{"Mobile", orDash(admin.Mobile)},
				{"Role", admin.Designation()},
				{"Avatar", app.container.Media().VersionedImageURL(admin.AvatarPath(), version)},
				{"Updated", ago(admin.UpdatedAt)},
			}
			return renderTable(cmd.OutOrStdout(), []string{"Field", "Value"}, rows)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "avatar <image>",
		Short: "Upload a new avatar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.container.Config().Media
			f, err := media.LoadImage(args[0], cfg.MaxUploadBytes)
			if err != nil {
				return err
			}
			if f, err = media.AvatarFile(f, cfg.AvatarSize); err != nil {
				return err
			}
			if err := app.container.Services().Profile.UpdateAvatar(cmd.Context(), f); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Avatar updated")
			return nil
		},
	})

	var oldPassword, newPassword, confirm string
	password := &cobra.Command{
		Use:   "password",
		Short: "Change the password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.container.Auth().ChangePassword(cmd.Context(), oldPassword, newPassword, confirm); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Password changed")
			return nil
		},
	}
	password.Flags().StringVar(&oldPassword, "old", "", "Current password")
	password.Flags().StringVar(&newPassword, "new", "", "New password")
	password.Flags().StringVar(&confirm, "confirm", "", "New password again")
	cmd.AddCommand(password)

	return cmd
}
