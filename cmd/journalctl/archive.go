package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"journal/internal/archive"
)

var (
	exportDir  string
	importDir  string
	importGlob string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every entry as a markdown file with YAML front matter",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()
		n, err := archive.Export(cmd.Context(), st, exportDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d entries to %s\n", n, exportDir)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Create entries from markdown files with YAML front matter",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()
		res, err := archive.Import(cmd.Context(), st, importDir, importGlob)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries, skipped %d with taken dates\n", res.Created, res.Skipped)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportDir, "dir", "export", "Destination directory")
	importCmd.Flags().StringVar(&importDir, "dir", ".", "Source directory")
	importCmd.Flags().StringVar(&importGlob, "glob", archive.DefaultPattern, "Files to import, relative to --dir")
	rootCmd.AddCommand(exportCmd, importCmd)
}
