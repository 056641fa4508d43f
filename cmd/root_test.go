package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soteriahealth/soteria/utils"
)

func TestRootHasSubcommands(t *testing.T) {
	root := NewRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "seed", "reset", "hash-key", "token", "version"} {
		assert.True(t, names[want], "missing %s", want)
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestVersionOutput(t *testing.T) {
	orig := versionInfo
	t.Cleanup(func() { versionInfo = orig })
	SetVersion("1.2.3", "abc123", "2026-10-01")

	var out bytes.Buffer
	cmd := NewVersionCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "soteria 1.2.3")
	assert.Contains(t, out.String(), "abc123")
}

func TestHashKeyOutputVerifies(t *testing.T) {
	var out bytes.Buffer
	cmd := NewHashKeyCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"operator"})
	require.NoError(t, cmd.Execute())
	assert.True(t, utils.CheckKey(strings.TrimSpace(out.String()), "operator"))
}

func TestResetRequiresConfirmation(t *testing.T) {
	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	root.SetArgs([]string{"reset", "--user", "not-a-uuid", "--yes"})
	assert.ErrorContains(t, root.Execute(), "must be a UUID")

	resetYes = false
	root.SetArgs([]string{"reset", "--user", "6f1c2a34-5b6d-4e7f-8a9b-0c1d2e3f4a5b"})
	assert.ErrorContains(t, root.Execute(), "--yes")
}
