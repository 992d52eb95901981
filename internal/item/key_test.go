// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

package item_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cargolog/cargolog/internal/item"
)

func TestNewKey_DefaultsQuality(t *testing.T) {
	k := item.NewKey("iron-plate", "")
	assert.Equal(t, "iron-plate", k.Name)
	assert.Equal(t, item.QualityNormal, k.Quality)
}

func TestNewKey_PreservesQuality(t *testing.T) {
	k := item.NewKey("speed-module", "epic")
	assert.Equal(t, "epic", k.Quality)
}

func TestKey_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		quality string
	}{
		{"iron-plate", "normal"},
		{"speed-module", "epic"},
		{"uranium-235", "legendary"},
		{"empty-barrel", ""},
	}

	for _, tc := range tests {
		k := item.NewKey(tc.name, tc.quality)
		parsed, err := item.ParseKey(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
}

func TestKey_UsableAsMapKey(t *testing.T) {
	m := map[item.Key]int{}
	m[item.NewKey("iron-plate", "")] = 3
	m[item.NewKey("iron-plate", "normal")] += 2

	assert.Len(t, m, 1)
	assert.Equal(t, 5, m[item.Key{Name: "iron-plate", Quality: "normal"}])
}

func TestParseKey_Rejects(t *testing.T) {
	tests := []struct {
		in string
	}{
		{""},
		{"iron-plate"},
		{":normal"},
		{"iron:plate:normal"},
	}

	for _, tc := range tests {
		_, err := item.ParseKey(tc.in)
		assert.Error(t, err, "input %q", tc.in)
	}
}
