package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goliatone/go-resource-client/resources"
	"github.com/spf13/cobra"
)

var legalNames = []string{resources.ResourcePrivacy, resources.ResourceTerms, resources.ResourceAbout}

func newLegalCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "legal",
		Short: "Read and edit the " + strings.Join(legalNames, ", ") + " pages",
	}

	cmd.AddCommand(&cobra.Command{
		Use:       "get <" + strings.Join(legalNames, "|") + ">",
		Short:     "Print a legal document",
		Args:      cobra.ExactArgs(1),
		ValidArgs: legalNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := legalDoc(app, args[0])
			if err != nil {
				return err
			}

			loading(cmd.ErrOrStderr(), args[0])
			content, exists, err := doc.Load(cmd.Context())
			if err != nil {
				return err
			}
			if !exists {
				_, _ = mutedColor.Fprintf(cmd.OutOrStdout(), "%s has not been written yet; save will create it\n", args[0])
				return nil
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), content.Content)
			return err
		},
	})

	var file string
	save := &cobra.Command{
		Use:       "save <" + strings.Join(legalNames, "|") + ">",
		Short:     "Create or update a legal document",
		Args:      cobra.ExactArgs(1),
		ValidArgs: legalNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := legalDoc(app, args[0])
			if err != nil {
				return err
			}
			content, err := readContent(cmd, file)
			if err != nil {
				return err
			}

			if _, _, err := doc.Load(cmd.Context()); err != nil {
				return err
			}
			mode, err := doc.Save(cmd.Context(), content)
			if err != nil {
				return err
			}

			verb := "updated"
			if mode == resources.SaveCreate {
				verb = "created"
			}
			success(cmd.OutOrStdout(), "%s %s", args[0], verb)
			return nil
		},
	}
	save.Flags().StringVarP(&file, "file", "f", "-", "File with the new content, - for stdin")
	cmd.AddCommand(save)

	return cmd
}

func legalDoc(app *App, name string) (*resources.LegalDoc, error) {
	doc, ok := app.container.Services().LegalDoc(name)
	if !ok {
		return nil, fmt.Errorf("unknown legal document %q, expected one of %s", name, strings.Join(legalNames, ", "))
	}
	return doc, nil
}

func readContent(cmd *cobra.Command, file string) (string, error) {
	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return "", err
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return "", fmt.Errorf("content is empty")
	}
	return content, nil
}
