package cli

import (
	"context"
	"flag"
	"fmt"
	"sort"
)

func newWhoamiCommand() *Command {
	cmd := &Command{
		Name:        "whoami",
		Description: "Show the current identity and effective permissions",
		Flags:       flag.NewFlagSet("whoami", flag.ExitOnError),
		Run:         runWhoami,
	}

	cmd.Flags.Bool("verbose", false, "Enable verbose output")

	return cmd
}

func runWhoami(args []string) error {
	cmd := newWhoamiCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}
	verbose := cmd.Flags.Lookup("verbose").Value.String() == "true"

	ctx := context.Background()
	a, err := newApp(ctx, verbose)
	if err != nil {
		return err
	}

	identity, ok := a.store.Identity()
	if !ok {
		fmt.Println("Not logged in")
		return nil
	}

	fmt.Printf("Subject: %s\n", identity.Subject)
	fmt.Printf("Role:    %s\n", identity.Role)
	if !identity.ExpiresAt.IsZero() {
		fmt.Printf("Expires: %s\n", identity.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
	}

	effective := a.store.EffectivePermissions()
	if len(effective) == 0 {
		return nil
	}
	perms := make([]string, 0, len(effective))
	for p := range effective {
		perms = append(perms, string(p))
	}
	sort.Strings(perms)
	fmt.Println("Permissions:")
	for _, p := range perms {
		fmt.Printf("  %s\n", p)
	}
	return nil
}
