package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/tillware/posgate/pkg/auth"
	"github.com/tillware/posgate/pkg/client"
)

func newUsersCommand() *Command {
	cmd := &Command{
		Name:        "users",
		Description: "Manage user accounts (list, create, update, delete)",
		Flags:       flag.NewFlagSet("users", flag.ExitOnError),
		Run:         runUsers,
	}

	cmd.Flags.Int("skip", 0, "Pagination offset for list")
	cmd.Flags.Int("limit", 50, "Pagination limit for list")
	cmd.Flags.String("username", "", "Username for create")
	cmd.Flags.String("email", "", "Email for create")
	cmd.Flags.String("password", "", "Password for create")
	cmd.Flags.String("role", "", "Role for create or update")
	cmd.Flags.Int64("id", 0, "User id for update or delete")
	cmd.Flags.Bool("active", true, "Active flag for update")
	cmd.Flags.Bool("verbose", false, "Enable verbose output")

	return cmd
}

func runUsers(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: posgate users <list|create|update|delete> [flags]")
	}
	verb := args[0]

	cmd := newUsersCommand()
	if err := cmd.Flags.Parse(args[1:]); err != nil {
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

	switch verb {
	case "list":
		return listUsers(ctx, a, cmd)
	case "create":
		return createUser(ctx, a, cmd)
	case "update":
		return updateUser(ctx, a, cmd)
	case "delete":
		return deleteUser(ctx, a, cmd)
	default:
		return fmt.Errorf("unknown users subcommand: %s", verb)
	}
}

func listUsers(ctx context.Context, a *app, cmd *Command) error {
	skip, _ := strconv.Atoi(cmd.Flags.Lookup("skip").Value.String())
	limit, _ := strconv.Atoi(cmd.Flags.Lookup("limit").Value.String())

	users, err := a.backend.Users(ctx, skip, limit)
	if err != nil {
		return err
	}
	fmt.Printf("%-6s %-20s %-10s %-8s %s\n", "ID", "USERNAME", "ROLE", "ACTIVE", "EMAIL")
	for _, u := range users {
		fmt.Printf("%-6d %-20s %-10s %-8t %s\n", u.ID, u.Username, u.Role, u.IsActive, u.Email)
	}
	return nil
}

func createUser(ctx context.Context, a *app, cmd *Command) error {
	req := client.RegisterRequest{
		Username: cmd.Flags.Lookup("username").Value.String(),
		Email:    cmd.Flags.Lookup("email").Value.String(),
		Password: cmd.Flags.Lookup("password").Value.String(),
		Role:     auth.Role(cmd.Flags.Lookup("role").Value.String()),
	}
	if req.Username == "" || req.Password == "" || req.Role == "" {
		return fmt.Errorf("username, password, and role are required")
	}

	user, err := a.backend.Register(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("Created user %s (id %d)\n", user.Username, user.ID)
	return nil
}

func updateUser(ctx context.Context, a *app, cmd *Command) error {
	id, err := strconv.ParseInt(cmd.Flags.Lookup("id").Value.String(), 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("a positive user id is required")
	}

	var update client.UserUpdate
	if role := cmd.Flags.Lookup("role").Value.String(); role != "" {
		r := auth.Role(role)
		update.Role = &r
	}
	if email := cmd.Flags.Lookup("email").Value.String(); email != "" {
		update.Email = &email
	}
	active := cmd.Flags.Lookup("active").Value.String() == "true"
	update.IsActive = &active

	user, err := a.backend.UpdateUser(ctx, id, update)
	if err != nil {
		return err
	}
	fmt.Printf("Updated user %s (id %d)\n", user.Username, user.ID)
	return nil
}

func deleteUser(ctx context.Context, a *app, cmd *Command) error {
	id, err := strconv.ParseInt(cmd.Flags.Lookup("id").Value.String(), 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("a positive user id is required")
	}
	if err := a.backend.DeleteUser(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Deleted user %d\n", id)
	return nil
}
