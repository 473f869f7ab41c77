package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
)

func newLoginCommand() *Command {
	cmd := &Command{
		Name:        "login",
		Description: "Authenticate against the user service",
		Flags:       flag.NewFlagSet("login", flag.ExitOnError),
		Run:         runLogin,
	}

	cmd.Flags.String("username", "", "Username")
	cmd.Flags.String("password", "", "Password (read from stdin when omitted)")
	cmd.Flags.Bool("verbose", false, "Enable verbose output")

	return cmd
}

func runLogin(args []string) error {
	cmd := newLoginCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	username := cmd.Flags.Lookup("username").Value.String()
	password := cmd.Flags.Lookup("password").Value.String()
	verbose := cmd.Flags.Lookup("verbose").Value.String() == "true"

	if username == "" {
		return fmt.Errorf("username is required")
	}
	if password == "" {
		fmt.Fprint(os.Stderr, "Password: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	ctx := context.Background()
	a, err := newApp(ctx, verbose)
	if err != nil {
		return err
	}

	if err := a.store.Login(ctx, username, password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	identity, _ := a.store.Identity()
	fmt.Printf("Logged in as %s (%s)\n", identity.Subject, identity.Role)
	return nil
}
