package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestResolveCommand(t *testing.T) {
	out, err := runCommand(t, "resolve", "reunión equipo mañana a las 3pm", "--ref", "2024-06-10T09:00:00-05:00")
	require.NoError(t, err)

	assert.Contains(t, out, "title: reunión equipo")
	assert.Contains(t, out, "start: 2024-06-11 15:00 -05")
	assert.Contains(t, out, "end:   2024-06-11 16:00 -05")
	assert.Contains(t, out, "zone:  America/Lima")
	assert.Contains(t, out, "time:  stated")
}

func TestResolveCommand_DefaultTime(t *testing.T) {
	out, err := runCommand(t, "resolve", "cierre el 20 de junio", "--ref", "2024-06-10T09:00:00-05:00")
	require.NoError(t, err)

	assert.Contains(t, out, "start: 2024-06-20 12:00 -05")
	assert.Contains(t, out, "time:  default")
}

func TestResolveCommand_Duration(t *testing.T) {
	out, err := runCommand(t, "resolve", "sync", "el", "3", "de", "junio", "a", "las", "11am",
		"--ref", "2024-06-10T09:00:00-05:00", "--duration", "30m")
	require.NoError(t, err)

	assert.Contains(t, out, "start: 2025-06-03 11:00 -05")
	assert.Contains(t, out, "end:   2025-06-03 11:30 -05")
}

func TestResolveCommand_Unresolved(t *testing.T) {
	out, err := runCommand(t, "resolve", "comprar leche")
	require.NoError(t, err)
	assert.Contains(t, out, "unresolved: no_temporal_expression_found")
}

func TestResolveCommand_Errors(t *testing.T) {
	_, err := runCommand(t, "resolve", "mañana", "--ref", "ayer")
	assert.Error(t, err)

	_, err = runCommand(t, "resolve", "mañana", "--timezone", "Mars/Olympus_Mons")
	assert.Error(t, err)

	_, err = runCommand(t, "resolve")
	assert.Error(t, err)
}
