// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

// Package item defines the structured item key used throughout the
// inference engine. A key is an (item name, quality) pair; maps keyed by
// Key replace string-concatenation encodings so item names never need
// escaping.
package item

import (
	"strings"

	"github.com/samber/oops"
)

// QualityNormal is the default quality assigned when a notification
// carries no quality.
const QualityNormal = "normal"

// Separator is the reserved separator used only by the textual rendering
// of a key (logs, JSON, database columns). Item names containing it are
// rejected at parse time.
const Separator = ":"

// Key identifies one logical item kind: a name plus a quality tier.
// The zero value is not a valid key; use NewKey.
type Key struct {
	Name    string
	Quality string
}

// NewKey builds a key, normalizing an absent quality to QualityNormal.
func NewKey(name, quality string) Key {
	if quality == "" {
		quality = QualityNormal
	}
	return Key{Name: name, Quality: quality}
}

// String renders the key as "name:quality" for logs and serialized forms.
func (k Key) String() string {
	return k.Name + Separator + k.Quality
}

// ParseKey is the inverse of String. Names containing the reserved
// separator cannot round-trip and are rejected.
func ParseKey(s string) (Key, error) {
	name, quality, ok := strings.Cut(s, Separator)
	if !ok {
		return Key{}, oops.Code("ITEM_KEY_MALFORMED").With("key", s).Errorf("item key missing separator")
	}
	if name == "" {
		return Key{}, oops.Code("ITEM_KEY_MALFORMED").With("key", s).Errorf("item key has empty name")
	}
	if strings.Contains(quality, Separator) {
		return Key{}, oops.Code("ITEM_KEY_MALFORMED").With("key", s).Errorf("item quality contains reserved separator")
	}
	return NewKey(name, quality), nil
}
