package cli

import (
	"context"
	"flag"
	"fmt"
)

func newLogoutCommand() *Command {
	cmd := &Command{
		Name:        "logout",
		Description: "Drop the current session and persisted credentials",
		Flags:       flag.NewFlagSet("logout", flag.ExitOnError),
		Run:         runLogout,
	}

	cmd.Flags.Bool("verbose", false, "Enable verbose output")

	return cmd
}

func runLogout(args []string) error {
	cmd := newLogoutCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}
	verbose := cmd.Flags.Lookup("verbose").Value.String() == "true"

	ctx := context.Background()
	a, err := newApp(ctx, verbose)
	if err != nil {
		return err
	}

	if err := a.store.Logout(ctx); err != nil {
		return err
	}
	fmt.Println("Logged out")
	return nil
}
