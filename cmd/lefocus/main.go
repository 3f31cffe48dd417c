package main

import (
	"fmt"
	"os"
	"strings"

	"lefocus-cli/internal/cli"
	"lefocus-cli/internal/logger"
)

func isSessionID(s string) bool {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "session-") {
		return false
	}
	// Prefixes are fine; the store resolves them.
	return len(s) > len("session-")
}

func rewriteDirectSessionLookupArgs(argv []string) []string {
	// Convenience: `lefocus <session-id>` works like `lefocus sessions show <session-id>`.
	//
	// Cobra treats the first non-flag token as a subcommand, so we rewrite argv before parsing.
	// Persistent flags may come first (`lefocus --dir ... <session-id>`), so find the first
	// positional token rather than argv[1].
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--dir":    true,
		"--format": true,
	}
	boolFlags := map[string]bool{
		"--pretty": true,
	}

	insert := func(i int) []string {
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:i]...)
		out = append(out, "sessions", "show")
		return append(out, argv[i:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isSessionID(argv[i+1]) {
				return insert(i + 1)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if strings.Contains(a, "=") || boolFlags[a] {
				continue
			}
			if valueFlags[a] {
				i++
			}
			continue
		}
		if isSessionID(a) {
			return insert(i)
		}
		return argv
	}
	return argv
}

func main() {
	if err := logger.Init(logger.DefaultPath()); err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
	}
	logger.SetDebug(logger.DebugFromEnv())
	defer logger.Close()

	os.Args = rewriteDirectSessionLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		logger.Close()
		os.Exit(1)
	}
}
