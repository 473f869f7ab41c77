package cli

import (
	"context"
	"flag"
	"fmt"
	"sort"
	"strings"

	"github.com/tillware/posgate/pkg/rbac"
)

func newCheckCommand() *Command {
	cmd := &Command{
		Name:        "check",
		Description: "Check whether the current session holds permissions",
		Flags:       flag.NewFlagSet("check", flag.ExitOnError),
		Run:         runCheck,
	}

	cmd.Flags.String("mode", "any", "Combination mode: any or all")
	cmd.Flags.Bool("verbose", false, "Enable verbose output")

	return cmd
}

func runCheck(args []string) error {
	cmd := newCheckCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	modeArg := cmd.Flags.Lookup("mode").Value.String()
	verbose := cmd.Flags.Lookup("verbose").Value.String() == "true"

	var mode rbac.Mode
	switch strings.ToLower(modeArg) {
	case "any":
		mode = rbac.ModeAny
	case "all":
		mode = rbac.ModeAll
	default:
		return fmt.Errorf("invalid mode %q, expected any or all", modeArg)
	}

	raw := cmd.Flags.Args()
	if len(raw) == 0 {
		return fmt.Errorf("at least one permission is required")
	}
	perms, unknown := rbac.SetFromStrings(raw)
	if len(unknown) > 0 {
		return fmt.Errorf("unknown permissions: %s", strings.Join(unknown, ", "))
	}

	ctx := context.Background()
	a, err := newApp(ctx, verbose)
	if err != nil {
		return err
	}

	requested := make([]rbac.Permission, 0, len(perms))
	for p := range perms {
		requested = append(requested, p)
	}
	sort.Slice(requested, func(i, j int) bool { return requested[i] < requested[j] })

	decision := a.resolver.Resolve(ctx, requested, mode)
	if decision.Degraded() {
		a.log.Warn("authority unreachable, answered from local policy")
	}

	if decision.Allowed {
		fmt.Println("allowed")
		return nil
	}

	identity, ok := a.store.Identity()
	if !ok {
		fmt.Println("denied: not logged in")
	} else {
		fmt.Printf("denied: role %s lacks %s of: %s\n",
			identity.Role, modeArg, strings.Join(raw, ", "))
	}
	return fmt.Errorf("permission denied")
}
