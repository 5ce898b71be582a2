package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pressly/goose/v3"
	"golang.org/x/crypto/bcrypt"

	"github.com/rajac/admission-portal/internal/models"
	"github.com/rajac/admission-portal/internal/validation"
)

var (
	gooseRunFunc = goose.Run // mockable

	errHelp = errors.New("help provided")
)

var migrateCommands = map[string]bool{
	"up": true, "up-by-one": true, "up-to": true,
	"down": true, "down-to": true, "redo": true, "reset": true,
	"status": true, "version": true,
}

type adminUpserter interface {
	UpsertAdmin(ctx context.Context, email, name, passwordHash string) (*models.AdminUser, error)
}

type commandLine struct {
	db     *sql.DB
	admins adminUpserter
	out    io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  up | up-by-one | up-to VERSION | down | down-to VERSION | redo | reset | status | version")
	fmt.Fprintln(cli.out, "  seed-admin -email EMAIL -name NAME  - create or update a staff account (password from ADMIN_PASSWORD)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return errHelp
	}

	if migrateCommands[args[0]] {
		return gooseRunFunc(args[0], cli.db, ".", args[1:]...)
	}

	switch args[0] {
	case "seed-admin":
		seedCmd := flag.NewFlagSet("seed-admin", flag.ContinueOnError)
		seedCmd.SetOutput(cli.out)
		email := seedCmd.String("email", "", "Staff e-mail address")
		name := seedCmd.String("name", "", "Display name")
		if err := seedCmd.Parse(args[1:]); err != nil {
			return err
		}
		if strings.TrimSpace(*email) == "" || strings.TrimSpace(*name) == "" {
			seedCmd.Usage()
			return errHelp
		}
		return cli.seedAdmin(*email, *name, os.Getenv("ADMIN_PASSWORD"))
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) seedAdmin(email, name, password string) error {
	email = strings.TrimSpace(email)
	if !validation.IsValidEmail(email) {
		return fmt.Errorf("invalid email %q", email)
	}
	if password == "" {
		return errors.New("ADMIN_PASSWORD is not set")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	admin, err := cli.admins.UpsertAdmin(context.Background(), email, strings.TrimSpace(name), string(hash))
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "admin %s ready (%s)\n", admin.Email, admin.ID)
	return nil
}
