package cli

import (
	"context"
	"flag"
	"fmt"
)

func newRefreshCommand() *Command {
	cmd := &Command{
		Name:        "refresh",
		Description: "Refetch effective permissions from the authority",
		Flags:       flag.NewFlagSet("refresh", flag.ExitOnError),
		Run:         runRefresh,
	}

	cmd.Flags.Bool("verbose", false, "Enable verbose output")

	return cmd
}

func runRefresh(args []string) error {
	cmd := newRefreshCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}
	verbose := cmd.Flags.Lookup("verbose").Value.String() == "true"

	ctx := context.Background()
	a, err := newApp(ctx, verbose)
	if err != nil {
		return err
	}
	if err := a.requireSession(); err != nil {
		return err
	}

	if err := a.store.RefreshPermissions(ctx); err != nil {
		return err
	}
	fmt.Printf("Refreshed %d permissions\n", len(a.store.EffectivePermissions()))
	return nil
}
