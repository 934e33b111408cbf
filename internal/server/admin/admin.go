// Package admin implements the createadmin command: it makes sure an
// administrator account exists so the first operator can log in.
package admin

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/molyneaux/vehicle-photo-api/internal/flagx"
	"github.com/molyneaux/vehicle-photo-api/internal/server/models"
)

// PasswordEnv is read when -p is not given.
const PasswordEnv = "ADMIN_PASSWORD"

// Ensurer creates a user unless one with the same name already exists.
type Ensurer interface {
	EnsureUser(ctx context.Context, username, password string) (*models.User, bool, error)
}

type Options struct {
	Username string
	Password string
}

// ParseFlags reads -u and -p from args, ignoring everything else so the
// same command line can carry server configuration flags.
func ParseFlags(args []string) (Options, error) {
	o := Options{}

	fs := flag.NewFlagSet("createadmin", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&o.Username, "u", "admin", "admin username")
	fs.StringVar(&o.Password, "p", "", "admin password")

	if err := fs.Parse(flagx.FilterArgs(args, "-u", "-p")); err != nil {
		return o, fmt.Errorf("parse flags: %w", err)
	}
	return o, nil
}

// ResolvePassword picks the password from options, then the environment,
// then an interactive prompt.
func ResolvePassword(o Options, w io.Writer) (string, error) {
	if o.Password != "" {
		return o.Password, nil
	}
	if pw := os.Getenv(PasswordEnv); pw != "" {
		return pw, nil
	}
	return PromptPassword(w)
}

// Run ensures the admin user exists and reports the outcome on w.
func Run(ctx context.Context, e Ensurer, o Options, w io.Writer) error {
	password, err := ResolvePassword(o, w)
	if err != nil {
		return err
	}

	user, created, err := e.EnsureUser(ctx, o.Username, password)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	if created {
		fmt.Fprintf(w, "Admin user %q created (id %d)\n", user.UserName, user.ID)
	} else {
		fmt.Fprintf(w, "Admin user %q already exists\n", user.UserName)
	}
	return nil
}
