package cli

import (
	"github.com/goliatone/go-resource-client/media"
	"github.com/goliatone/go-resource-client/resources"
	"github.com/spf13/cobra"
)

func newBlogsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{Use: "blogs", Short: "List and manage blog posts"}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List blog posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loading(cmd.ErrOrStderr(), "blogs")
			blogs, err := app.container.Services().Blogs.List(cmd.Context(), nil)
			if err != nil {
				return err
			}

			resolver := app.container.Media()
			rows := make([][]string, 0, len(blogs))
			for _, b := range blogs {
				rows = append(rows, []string{
					b.ID, b.Title, orDash(b.Category), orDash(b.Status),
					resolver.ImageURL(b.CoverImage), ago(b.CreatedAt),
				})
			}
			return renderTable(cmd.OutOrStdout(), []string{"ID", "Title", "Category", "Status", "Cover", "Created"}, rows)
		},
	})

	var (
		in    resources.BlogInput
		cover string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Publish a blog post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cover != "" {
				f, err := media.LoadImage(cover, app.container.Config().Media.MaxUploadBytes)
				if err != nil {
					return err
				}
				in.Cover = &f
			}

			blog, err := app.container.Services().Blogs.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Blog %q created (%s)", blog.Title, orDash(blog.ID))
			return nil
		},
	}
	create.Flags().StringVar(&in.Title, "title", "", "Post title")
	create.Flags().StringVar(&in.Content, "content", "", "Post body")
	create.Flags().StringVar(&in.Category, "category", "", "Category")
	create.Flags().StringVar(&in.Author, "author", "", "Author")
	create.Flags().StringVar(&in.Status, "status", "", "Publication status")
	create.Flags().StringVar(&cover, "cover", "", "Path to a cover image")
	_ = create.MarkFlagRequired("title")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a blog post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.container.Services().Blogs.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Blog %s deleted", args[0])
			return nil
		},
	})

	return cmd
}
