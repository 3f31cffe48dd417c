// Package publish exports sessions as Markdown files.
package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"lefocus-cli/internal/model"
)

type WriteOptions struct {
	Overwrite bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// FileName is <start date>-<session id>.md, so exports sort chronologically.
func FileName(sess model.Session) string {
	return sess.StartedAt.Local().Format("2006-01-02") + "-" + sess.ID + ".md"
}

// WriteSessions writes one page per session under toDir/sessions. It stops at
// the first error and reports what was written before it.
func WriteSessions(all []model.SessionResults, toDir string, opt WriteOptions) (WriteResult, error) {
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	outDir := filepath.Join(filepath.Clean(toDir), "sessions")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	res := WriteResult{Written: []string{}}
	for _, r := range all {
		p := filepath.Join(outDir, FileName(r.Session))
		if err := writeFile(p, []byte(RenderSessionMarkdown(r)), opt.Overwrite); err != nil {
			return res, err
		}
		res.Written = append(res.Written, p)
	}
	return res, nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
