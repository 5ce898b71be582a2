package main

import (
	"bytes"
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rajac/admission-portal/internal/models"
)

type fakeUpserter struct {
	email, name, hash string
}

func (f *fakeUpserter) UpsertAdmin(_ context.Context, email, name, passwordHash string) (*models.AdminUser, error) {
	f.email, f.name, f.hash = email, name, passwordHash
	return &models.AdminUser{ID: "admin-1", Email: email, Name: name}, nil
}

func newCLI() (*commandLine, *fakeUpserter, *bytes.Buffer) {
	admins := &fakeUpserter{}
	out := &bytes.Buffer{}
	return &commandLine{admins: admins, out: out}, admins, out
}

func TestMigrateCommandsReachGoose(t *testing.T) {
	original := gooseRunFunc
	defer func() { gooseRunFunc = original }()

	var gotCommand string
	var gotArgs []string
	gooseRunFunc = func(command string, _ *sql.DB, dir string, args ...string) error {
		gotCommand, gotArgs = command, args
		assert.Equal(t, ".", dir)
		return nil
	}

	cli, _, _ := newCLI()
	require.NoError(t, cli.run([]string{"up"}))
	assert.Equal(t, "up", gotCommand)

	require.NoError(t, cli.run([]string{"down-to", "2"}))
	assert.Equal(t, "down-to", gotCommand)
	assert.Equal(t, []string{"2"}, gotArgs)
}

func TestUnknownCommandPrintsUsage(t *testing.T) {
	cli, _, out := newCLI()

	assert.ErrorIs(t, cli.run(nil), errHelp)
	assert.ErrorIs(t, cli.run([]string{"create"}), errHelp)
	assert.Contains(t, out.String(), "seed-admin")
}

func TestSeedAdmin(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "staff-pass")
	cli, admins, out := newCLI()

	require.NoError(t, cli.run([]string{"seed-admin", "-email", " staff@rajac.example ", "-name", "Staff"}))
	assert.Equal(t, "staff@rajac.example", admins.email)
	assert.Equal(t, "Staff", admins.name)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admins.hash), []byte("staff-pass")))
	assert.Contains(t, out.String(), "admin staff@rajac.example ready")
}

func TestSeedAdminRejectsBadInput(t *testing.T) {
	cli, _, _ := newCLI()

	assert.ErrorIs(t, cli.run([]string{"seed-admin", "-email", "staff@rajac.example"}), errHelp)

	t.Setenv("ADMIN_PASSWORD", "")
	assert.EqualError(t, cli.run([]string{"seed-admin", "-email", "staff@rajac.example", "-name", "Staff"}), "ADMIN_PASSWORD is not set")

	t.Setenv("ADMIN_PASSWORD", "x")
	assert.Error(t, cli.run([]string{"seed-admin", "-email", "not-an-email", "-name", "Staff"}))
}
