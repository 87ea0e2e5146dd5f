package models

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a short random identifier with the given prefix.
func NewID(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + id[:12]
}
