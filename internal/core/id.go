package core

import (
	"strings"

	"github.com/google/uuid"
)

// NewUID generates a short workspace uid. The uid ends up embedded in
// DNS-style resource names (pod-<uid>, svc-<uid>, ...) so it must be
// lowercase hex with no separators.
func NewUID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:12]
}

// NewID generates a UUID v7 (time-ordered), used for presets and task entries.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails (should not happen).
		return uuid.New().String()
	}
	return id.String()
}
