package cli

import (
	"github.com/goliatone/go-resource-client/media"
	"github.com/goliatone/go-resource-client/resources"
	"github.com/spf13/cobra"
)

func newAdminsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{Use: "admins", Short: "List and manage administrators"}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List administrators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loading(cmd.ErrOrStderr(), "administrators")
			admins, err := app.container.Services().Admins.List(cmd.Context(), nil)
			if err != nil {
				return err
			}

			resolver := app.container.Media()
			rows := make([][]string, 0, len(admins))
			for _, a := range admins {
				rows = append(rows, []string{
					a.ID, a.Fullname, a.Email, orDash(a.Mobile), a.Designation(),
					resolver.AvatarURL(a.AvatarPath(), a.ID),
				})
			}
			return renderTable(cmd.OutOrStdout(), []string{"ID", "Name", "Email", "Mobile", "Role", "Avatar"}, rows)
		},
	})

	var (
		in     resources.NewAdmin
		avatar string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Register an administrator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if avatar != "" {
				cfg := app.container.Config().Media
				f, err := media.LoadImage(avatar, cfg.MaxUploadBytes)
				if err != nil {
					return err
				}
				if f, err = media.AvatarFile(f, cfg.AvatarSize); err != nil {
					return err
				}
				in.Avatar = &f
			}

			admin, err := app.container.Services().Admins.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Administrator %s registered", orDash(admin.Email))
			return nil
		},
	}
	create.Flags().StringVar(&in.Fullname, "name", "", "Full name")
	create.Flags().StringVar(&in.Email, "email", "", "Email address")
	create.Flags().StringVar(&in.Mobile, "mobile", "", "Mobile number")
	create.Flags().StringVar(&in.Password, "password", "", "Password")
	create.Flags().StringVar(&in.ConfirmPassword, "confirm", "", "Password confirmation")
	create.Flags().StringVar(&avatar, "avatar", "", "Path to an avatar image")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an administrator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.container.Services().Admins.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Administrator %s deleted", args[0])
			return nil
		},
	})

	return cmd
}
