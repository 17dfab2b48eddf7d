package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"journal/internal/auth"
	"journal/internal/config"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Inspect and prune the auth file",
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users in the auth file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := authFilePath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			fmt.Fprintln(cmd.ErrOrStderr(), "no users")
			return nil
		}
		users, err := auth.LoadFile(path)
		if err != nil {
			return err
		}
		for _, name := range users.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

var userRemoveCmd = &cobra.Command{
	Use:   "remove <username>",
	Short: "Remove a user from the auth file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := authFilePath()
		if err != nil {
			return err
		}
		user := strings.TrimSpace(args[0])
		removed, err := auth.RemoveFromFile(path, user)
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("user %q not found in %s", user, path)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s from %s\n", user, path)
		return nil
	},
}

func authFilePath() (string, error) {
	if path := config.Load().AuthFile; path != "" {
		return path, nil
	}
	return "", fmt.Errorf("JOURNAL_AUTH_FILE is not set")
}

func init() {
	userCmd.AddCommand(userListCmd, userRemoveCmd)
	rootCmd.AddCommand(userCmd)
}
