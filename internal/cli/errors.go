package cli

import (
	"fmt"
	"strconv"
	"strings"
)

type usageError struct {
	msg string
}

func (e usageError) Error() string { return e.msg }

func errUsage(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

func parseLabelID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, errUsage("invalid label id: %q", s)
	}
	return id, nil
}
