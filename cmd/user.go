package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/peterh/liner"
	"github.com/rubiojr/cinegrid/pkg/auth"
	"github.com/rubiojr/cinegrid/pkg/storage"
	"github.com/urfave/cli/v3"
)

// UserCommand creates the user command with its subcommands
func UserCommand() *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Manage local accounts",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Create an account",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Usage:    "Account email",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Full name",
					},
					&cli.StringFlag{
						Name:  "password",
						Usage: "Password (prompted when omitted)",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return addUser(ctx, c.String("config"), c.String("email"), c.String("name"), c.String("password"))
				},
			},
			{
				Name:  "list",
				Usage: "List accounts",
				Action: func(ctx context.Context, c *cli.Command) error {
					return listUsers(ctx, c.String("config"))
				},
			},
		},
	}
}

func addUser(ctx context.Context, configPath, email, name, password string) error {
	if password == "" {
		var err error
		password, err = promptPassword()
		if err != nil {
			return err
		}
	}

	a, err := openApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := a.auth.SignUp(ctx, email, password, name)
	if err != nil {
		return fmt.Errorf("creating account: %w", err)
	}
	// The command only creates the account.
	if err := a.auth.SignOut(ctx, sess.Token); err != nil {
		return fmt.Errorf("closing session: %w", err)
	}

	fmt.Printf("Created account %s (%s)\n", sess.User.Email, auth.Initials(&sess.User))
	return nil
}

func promptPassword() (string, error) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	password, err := line.PasswordPrompt("Password: ")
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	confirm, err := line.PasswordPrompt("Repeat password: ")
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	if password != confirm {
		return "", errors.New("passwords do not match")
	}
	return password, nil
}

func listUsers(ctx context.Context, configPath string) error {
	a, err := openApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	users, err := a.store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("listing users: %w", err)
	}
	if len(users) == 0 {
		fmt.Println(noDataStyle.Render("No accounts yet. Create one with: cinegrid user add --email you@example.com"))
		return nil
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("%d accounts", len(users))))
	for _, u := range users {
		pu := auth.User{Email: u.Email, FullName: u.FullName}
		fmt.Printf("%-3s %-32s %-24s %s\n", auth.Initials(&pu), u.Email, u.FullName, metaStyle.Render("created "+formatTime(u.CreatedAt)))
	}
	return nil
}

// lookupUser resolves an account by email.
func lookupUser(ctx context.Context, a *app, email string) (*storage.User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, errors.New("--user is required")
	}
	u, err := a.store.UserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("no account for %s", email)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", email, err)
	}
	return u, nil
}
