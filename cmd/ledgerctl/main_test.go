package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerbook/internal/core/id"
	"ledgerbook/internal/core/security"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("LEDGER_JWT_SECRET", "cli-secret")
	user := id.New()

	out, err := execute(t, "token", "--user", user.String(), "--privileged")
	require.NoError(t, err)

	claims, err := security.NewJWTService(security.DefaultJWTConfig("cli-secret")).
		ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	actor, err := security.ActorFromUser(claims)
	require.NoError(t, err)
	assert.Equal(t, user, actor.UserID)
	assert.True(t, actor.Privileged)
}

func TestTokenCommand_NeedsSecret(t *testing.T) {
	t.Setenv("LEDGER_JWT_SECRET", "")
	_, err := execute(t, "token")
	assert.Error(t, err)
}

func TestImportCommand_MemoryUnknownCompany(t *testing.T) {
	t.Setenv("LEDGER_STORAGE", "memory")
	path := filepath.Join(t.TempDir(), "export.xml")
	require.NoError(t, os.WriteFile(path, []byte("<ENVELOPE/>"), 0o600))

	_, err := execute(t, "import", path, "--company", id.New().String())
	assert.Error(t, err)
}

func TestReportCommand_RequiresAsOf(t *testing.T) {
	t.Setenv("LEDGER_STORAGE", "memory")
	_, err := execute(t, "report", "balance-sheet", "--company", id.New().String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--as-of")
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("from", "")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = parseDate("from", "2024-04-01")
	require.NoError(t, err)
	assert.Equal(t, 2024, d.Year())

	_, err = parseDate("from", "01/04/2024")
	assert.Error(t, err)
}
