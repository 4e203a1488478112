package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigInit_WritesExampleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ahnlichd.yaml")

	cmd := newConfigInitCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()

	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Contains(t, buf.String(), "wrote example configuration")
}

func TestConfigInit_RefusesToOverwriteWithoutForce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ahnlichd.yaml")

	first := newConfigInitCmd()
	first.SetOut(&bytes.Buffer{})
	first.SetArgs([]string{path})
	require.NoError(t, first.Execute())

	second := newConfigInitCmd()
	buf := &bytes.Buffer{}
	second.SetOut(buf)
	second.SetArgs([]string{path})
	require.NoError(t, second.Execute())

	assert.Contains(t, buf.String(), "already exists")
}

func TestConfigShow_PrintsDefaultsAsYAML(t *testing.T) {
	cmd := newConfigShowCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "port: 1369")
}

func TestConfigShow_JSONOutput(t *testing.T) {
	cmd := newConfigShowCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--json"})

	err := cmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"port": 1369`)
}
