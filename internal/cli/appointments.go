package cli

import (
	"github.com/goliatone/go-resource-client/resources"
	"github.com/spf13/cobra"
)

func newAppointmentsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{Use: "appointments", Short: "Browse booked appointments"}

	var search, status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List appointments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loading(cmd.ErrOrStderr(), "appointments")
			rows, err := app.container.Services().Appointments.List(cmd.Context(), nil)
			if err != nil {
				return err
			}
			rows = resources.FilterAppointments(rows, search, status)

			data := make([][]string, 0, len(rows))
			for _, a := range rows {
				date := "-"
				if !a.AppointmentDate.IsZero() {
					date = a.AppointmentDate.Format("2006-01-02")
				}
				data = append(data, []string{
					a.ID, a.DisplayName(), orDash(a.Email), orDash(a.Phone),
					date, orDash(a.AppointmentTime), a.StatusOrDefault(),
				})
			}
			return renderTable(cmd.OutOrStdout(), []string{"ID", "Appointment", "Email", "Phone", "Date", "Time", "Status"}, data)
		},
	}
	list.Flags().StringVar(&search, "search", "", "Case-insensitive text to match")
	list.Flags().StringVar(&status, "status", "", "Only show appointments with this status")
	cmd.AddCommand(list)

	return cmd
}
