// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunReplaysJournal(t *testing.T) {
	dir := t.TempDir()
	world := writeFile(t, dir, "world.yaml", `
players:
  - id: 1
    name: alice
    main:
      - {name: iron-plate, count: 20}
`)
	journal := writeFile(t, dir, "journal.jsonl", strings.Join([]string{
		`{"op":"player_joined","tick":1,"player":1}`,
		`{"op":"adjust","target":"player:1","item":{"name":"iron-plate","count":-5}}`,
		`{"op":"hand","tick":2,"player":1,"stack":{"name":"iron-plate","count":5}}`,
	}, "\n"))

	out, err := executeCmd(t, "run", "--world", world, "--journal", journal, "--log-format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Replay complete: 1 events")
}

func TestRunRejectsMissingWorldFile(t *testing.T) {
	_, err := executeCmd(t, "run", "--world", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestRunRejectsBadJournal(t *testing.T) {
	dir := t.TempDir()
	world := writeFile(t, dir, "world.yaml", "players: []\n")
	journal := writeFile(t, dir, "journal.jsonl", `{"op":"teleport"}`)

	_, err := executeCmd(t, "run", "--world", world, "--journal", journal)
	require.Error(t, err)
}
