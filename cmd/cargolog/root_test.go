// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmdHasSubcommands(t *testing.T) {
	cmd := NewRootCmd()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"run", "events", "migrate", "status"} {
		assert.Contains(t, names, want)
	}
}

func TestRunRequiresWorldFlag(t *testing.T) {
	_, err := executeCmd(t, "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "world")
}

func TestMigrateRequiresDatabaseURL(t *testing.T) {
	_, err := executeCmd(t, "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.url")
}

func TestEventsListRequiresDatabaseURL(t *testing.T) {
	_, err := executeCmd(t, "events", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.url")
}

func TestStatusWithoutDatabase(t *testing.T) {
	out, err := executeCmd(t, "status", "--json")
	require.NoError(t, err)

	var st logStatus
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, 1, st.FeedVersion)
	assert.Equal(t, "cargolog.events", st.FeedCapability)
	assert.Zero(t, st.EventCount)
}
