// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cargolog/cargolog/internal/logging"
)

func TestSetup_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("cargolog", "test", "json", &buf)

	logger.Info("hello", "tick", 42)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "cargolog", entry["service"])
	assert.Equal(t, "test", entry["version"])
	assert.EqualValues(t, 42, entry["tick"])
}

func TestSetup_TickFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("cargolog", "test", "json", &buf)

	ctx := logging.ContextWithTick(context.Background(), 360)
	logger.InfoContext(ctx, "notification dropped")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.EqualValues(t, 360, entry["tick"])

	// Records outside a notification carry no tick.
	buf.Reset()
	logger.Info("startup")
	var startup map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &startup))
	assert.NotContains(t, startup, "tick")
}

func TestSetup_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("cargolog", "test", "text", &buf)

	logger.Info("hello")

	out := buf.String()
	assert.Contains(t, out, "msg=hello")
	assert.Contains(t, out, "service=cargolog")
}
