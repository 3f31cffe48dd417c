package store

import (
	"strings"

	"github.com/google/uuid"
)

// newID returns prefix-<uuid>.
func newID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// ValidID reports whether id looks like one of ours: prefix-<uuid>.
func ValidID(prefix, id string) bool {
	rest, ok := strings.CutPrefix(id, prefix+"-")
	if !ok {
		return false
	}
	_, err := uuid.Parse(rest)
	return err == nil
}
