package cli

import (
	"context"

	"github.com/goliatone/go-resource-client/resources"
	"github.com/spf13/cobra"
)

func newTeamCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{Use: "team", Short: "List and manage team members"}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List team members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loading(cmd.ErrOrStderr(), "team members")
			roster, err := app.container.Services().TeamMembers.List(cmd.Context(), nil)
			if err != nil {
				return err
			}
			return renderRoster(app, cmd, roster)
		},
	})

	cmd.AddCommand(newTeamCreateCommand(app), newTeamUpdateCommand(app))

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a team member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			roster, err := editRoster(cmd.Context(), app, func(team *resources.TeamMembers, local resources.Roster) (resources.Roster, error) {
				if err := team.Delete(cmd.Context(), id); err != nil {
					return local, err
				}
				return local.Remove(id), nil
			})
			if err != nil {
				return err
			}
			if _, ok := roster.Find(id); ok {
				warn(cmd.ErrOrStderr(), "Team member %s is still listed by the server", id)
			}
			success(cmd.OutOrStdout(), "Team member %s removed, %s remaining", id, plural(roster.Len(), "member", "members"))
			return nil
		},
	})

	return cmd
}

func newTeamCreateCommand(app *App) *cobra.Command {
	var in resources.TeamMemberInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Add a team member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var created resources.TeamMember
			roster, err := editRoster(cmd.Context(), app, func(team *resources.TeamMembers, local resources.Roster) (resources.Roster, error) {
				m, err := team.Create(cmd.Context(), in)
				if err != nil {
					return local, err
				}
				created = m
				return local.Add(m), nil
			})
			if err != nil {
				return err
			}
			if created.ID != "" {
				if _, ok := roster.Find(created.ID); !ok {
					warn(cmd.ErrOrStderr(), "Team member %s is not listed by the server yet", created.ID)
				}
			}
			success(cmd.OutOrStdout(), "Team member %s added, %s on the team", in.Name, plural(roster.Len(), "member", "members"))
			return nil
		},
	}
	teamMemberFlags(create, &in)
	_ = create.MarkFlagRequired("name")
	return create
}

func newTeamUpdateCommand(app *App) *cobra.Command {
	var in resources.TeamMemberInput
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a team member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			roster, err := editRoster(cmd.Context(), app, func(team *resources.TeamMembers, local resources.Roster) (resources.Roster, error) {
				m, err := team.Update(cmd.Context(), id, in)
				if err != nil {
					return local, err
				}
				if m.ID == "" {
					m.ID = id
				}
				return local.Replace(m), nil
			})
			if err != nil {
				return err
			}
			m, ok := roster.Find(id)
			if !ok {
				warn(cmd.ErrOrStderr(), "Team member %s is no longer listed by the server", id)
				return nil
			}
			success(cmd.OutOrStdout(), "Team member %s updated (%s)", id, m.Name)
			return nil
		},
	}
	teamMemberFlags(update, &in)
	return update
}

func teamMemberFlags(cmd *cobra.Command, in *resources.TeamMemberInput) {
	cmd.Flags().StringVar(&in.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&in.Designation, "designation", "", "Role or title")
	cmd.Flags().StringVar(&in.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&in.Bio, "bio", "", "Short biography")
	cmd.Flags().StringVar(&in.Keyword, "keyword", "", "Search keyword")
}

// editRoster applies edit to the current roster and reconciles the result
// with a refetch. The returned roster is always the server's view.
func editRoster(ctx context.Context, app *App, edit func(*resources.TeamMembers, resources.Roster) (resources.Roster, error)) (resources.Roster, error) {
	team := app.container.Services().TeamMembers
	local, err := team.List(ctx, nil)
	if err != nil {
		return resources.Roster{}, err
	}
	local, err = edit(team, local)
	if err != nil {
		return resources.Roster{}, err
	}
	server, err := team.List(ctx, nil)
	if err != nil {
		return resources.Roster{}, err
	}
	return local.Reconcile(server), nil
}

func renderRoster(app *App, cmd *cobra.Command, roster resources.Roster) error {
	resolver := app.container.Media()
	rows := make([][]string, 0, roster.Len())
	for _, m := range roster.Members() {
		rows = append(rows, []string{
			m.ID, m.Name, orDash(m.Designation), orDash(m.Email),
			resolver.AvatarURL(m.ProfilePicture, m.ID),
		})
	}
	return renderTable(cmd.OutOrStdout(), []string{"ID", "Name", "Designation", "Email", "Picture"}, rows)
}
