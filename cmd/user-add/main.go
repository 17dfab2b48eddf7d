package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"journal/internal/auth"
	"journal/internal/config"
)

const defaultAuthFile = "auth.txt"

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: user-add <username>")
		os.Exit(2)
	}
	user := strings.TrimSpace(os.Args[1])
	if user == "" || strings.Contains(user, ":") {
		fmt.Fprintln(os.Stderr, "username must be non-empty and must not contain ':'")
		os.Exit(2)
	}

	authPath := config.Load().AuthFile
	if authPath == "" {
		authPath = defaultAuthFile
	}

	exists, err := userExists(authPath, user)
	if err != nil {
		fatal(err)
	}
	if exists {
		ok, err := promptYesNo(fmt.Sprintf("User %q exists. Update password? [y/N]: ", user))
		if err != nil {
			fatal(err)
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "no changes made")
			return
		}
	}

	password, err := promptPassword("Password: ")
	if err != nil {
		fatal(err)
	}
	if password == "" {
		fatal(errors.New("password must not be empty"))
	}
	confirm, err := promptPassword("Confirm: ")
	if err != nil {
		fatal(err)
	}
	if password != confirm {
		fatal(errors.New("passwords do not match"))
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		fatal(err)
	}
	if err := auth.UpsertFile(authPath, user, hash); err != nil {
		fatal(err)
	}
	fmt.Fprintf(os.Stderr, "updated %s\n", authPath)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func promptPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, prompt)
	pass, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(pass)), nil
}

func promptYesNo(prompt string) (bool, error) {
	fmt.Fprint(os.Stderr, prompt)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("read response: %w", err)
	}
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes", nil
}

func userExists(path, user string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat auth file: %w", err)
	}
	users, err := auth.LoadFile(path)
	if err != nil {
		return false, err
	}
	return users.Has(user), nil
}
