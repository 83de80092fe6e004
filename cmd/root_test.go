package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/openingbook/internal/buildinfo"
	"github.com/tphakala/openingbook/internal/conf"
)

func execute(t *testing.T, settings *conf.Settings, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	root := RootCommand(settings, buildinfo.NewContext("1.0.0", "2026-10-01"))
	root.SetOut(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	out := execute(t, &conf.Settings{}, "version")
	assert.Contains(t, out, "openingbook 1.0.0")
}

func TestConfigCommandMasksPassword(t *testing.T) {
	settings := &conf.Settings{}
	settings.Database.MySQL.Password = "hunter2"

	out := execute(t, settings, "config")
	assert.Contains(t, out, "database:")
	assert.Contains(t, out, "maxplies:")
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, "hunter2")
}

func TestSubcommandsRegistered(t *testing.T) {
	root := RootCommand(&conf.Settings{}, buildinfo.NewContext("", ""))

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"import", "moves", "book", "config", "version"})
}
