package utils

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateSnapshotID creates a sortable, human-readable snapshot ID.
// Format: {label}-{yyyymmdd}-{8charHexUUID}
//
// Example:
//   - Input: label="export", at=2024-03-01
//   - Output: "export-20240301-a3f8e2b1"
func GenerateSnapshotID(label string, at time.Time) string {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		label = "snapshot"
	}
	return label + "-" + at.UTC().Format("20060102") + "-" + generateShortUUID()
}

// generateShortUUID creates an 8-character hex string from a UUID.
func generateShortUUID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
