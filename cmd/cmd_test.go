package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return out.String()
}

func useTempDB(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", filepath.Join(t.TempDir(), "cli.db")+"?_busy_timeout=5000&_foreign_keys=1")
	t.Setenv("LOG_LEVEL", "error")
}

func TestVersion(t *testing.T) {
	out := run(t, "version")
	assert.Contains(t, out, "reservation-app dev")
}

func TestSeedAndExportUsers(t *testing.T) {
	useTempDB(t)
	t.Setenv("ADMIN_PASSWORD", "admin-password")

	out := run(t, "seed")
	assert.Contains(t, out, "seeded 7 restaurants")
	assert.Contains(t, out, `created admin "admin"`)

	out = run(t, "seed")
	assert.Contains(t, out, "seeded 0 restaurants")

	out = run(t, "admin", "create", "--name", "ops", "--password", "ops-password", "--email", "ops@example.com")
	assert.Contains(t, out, `created admin "ops"`)

	target := filepath.Join(t.TempDir(), "users.csv")
	run(t, "export", "users", "--out", target)
	raw, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "username,email,phone", strings.TrimSpace(string(raw)))
}

func TestAdminCreateRequiresFlags(t *testing.T) {
	useTempDB(t)
	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"admin", "create", "--name", "ops"})
	assert.Error(t, root.Execute())

	root = NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"admin", "create", "--name", "ops", "--password", "short", "--email", "ops@example.com"})
	assert.ErrorContains(t, root.Execute(), "at least 8")
}
