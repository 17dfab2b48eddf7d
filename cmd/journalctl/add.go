package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"journal/internal/things"
)

var addForm things.Form

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an entry",
	Long:  "Create an entry. Pass --text - to read the body from stdin.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		form := addForm
		if form.Text == "-" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return err
			}
			form.Text = string(data)
		}
		t, err := form.Thing()
		if err != nil {
			return err
		}
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()
		created, err := st.Create(cmd.Context(), t)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %d %s\n", created.ID, created.Label())
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addForm.Title, "title", "", "Title")
	addCmd.Flags().StringVar(&addForm.Text, "text", "", "Markdown body, or - for stdin")
	addCmd.Flags().StringVar(&addForm.Link, "link", "", "Optional URL")
	addCmd.Flags().StringVar(&addForm.Tags, "tags", "", "Comma separated tags")
	addCmd.Flags().StringVar(&addForm.Date, "date", "", "Date as YYYY-MM-DD")
	rootCmd.AddCommand(addCmd)
}
