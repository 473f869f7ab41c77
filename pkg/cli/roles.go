package cli

import (
	"context"
	"flag"
	"fmt"
	"sort"

	"github.com/tillware/posgate/pkg/client"
	"github.com/tillware/posgate/pkg/rbac"
)

func newRolesCommand() *Command {
	cmd := &Command{
		Name:        "roles",
		Description: "List roles known to the user service",
		Flags:       flag.NewFlagSet("roles", flag.ExitOnError),
		Run:         runRoles,
	}

	cmd.Flags.Bool("local", false, "List the built-in role grants instead of asking the authority")
	cmd.Flags.Bool("verbose", false, "Enable verbose output")

	return cmd
}

func runRoles(args []string) error {
	cmd := newRolesCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}
	local := cmd.Flags.Lookup("local").Value.String() == "true"
	verbose := cmd.Flags.Lookup("verbose").Value.String() == "true"

	ctx := context.Background()
	a, err := newApp(ctx, verbose)
	if err != nil {
		return err
	}

	if local {
		printLocalRoles()
		return nil
	}

	roles, err := a.backend.Roles(ctx)
	if err != nil {
		if client.IsUnreachable(err) {
			a.log.Warn("authority unreachable, listing built-in role grants")
			printLocalRoles()
			return nil
		}
		return err
	}

	for _, role := range roles {
		fmt.Printf("%-10s %s\n", role.Role, role.Description)
	}
	return nil
}

func printLocalRoles() {
	policy := rbac.DefaultPolicy()
	for _, role := range policy.Roles() {
		grants := policy.PermissionsFor(role)
		perms := make([]string, 0, len(grants))
		for p := range grants {
			perms = append(perms, string(p))
		}
		sort.Strings(perms)
		fmt.Printf("%s:\n", role)
		for _, p := range perms {
			fmt.Printf("  %s\n", p)
		}
	}
}
