package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"lefocus-cli/internal/model"
)

const sessionColumns = `id, started_at_unixms, stopped_at_unixms, status, target_ms, active_ms, label_id, note, created_at_unixms, updated_at_unixms`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(r rowScanner) (model.Session, error) {
	var (
		s         model.Session
		started   int64
		stopped   sql.NullInt64
		status    string
		labelID   sql.NullInt64
		note      sql.NullString
		createdAt int64
		updatedAt int64
	)
	if err := r.Scan(&s.ID, &started, &stopped, &status, &s.TargetMs, &s.ActiveMs, &labelID, &note, &createdAt, &updatedAt); err != nil {
		return model.Session{}, err
	}
	s.StartedAt = fromUnixMs(started)
	s.StoppedAt = nullableTime(stopped)
	s.Status = model.SessionStatus(status)
	s.LabelID = nullableInt(labelID)
	s.Note = nullableString(note)
	s.CreatedAt = fromUnixMs(createdAt)
	s.UpdatedAt = fromUnixMs(updatedAt)
	return s, nil
}

// CreateSession inserts a new Running session.
func (s Store) CreateSession(ctx context.Context, target time.Duration, labelID *int64, now time.Time) (model.Session, error) {
	if target < 0 {
		target = 0
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return model.Session{}, err
	}
	defer db.Close()

	sess := model.Session{
		ID:        newID("session"),
		StartedAt: now.UTC(),
		Status:    model.SessionRunning,
		TargetMs:  target.Milliseconds(),
		LabelID:   labelID,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	var label any
	if labelID != nil {
		label = *labelID
	}
	ms := toUnixMs(now)
	if _, err := db.ExecContext(ctx, `INSERT INTO sessions(id, started_at_unixms, status, target_ms, active_ms, label_id, created_at_unixms, updated_at_unixms)
		VALUES(?, ?, ?, ?, 0, ?, ?, ?)`, sess.ID, ms, string(sess.Status), sess.TargetMs, label, ms, ms); err != nil {
		return model.Session{}, err
	}
	// Round-trip through the column precision.
	sess.StartedAt = fromUnixMs(ms)
	sess.CreatedAt = sess.StartedAt
	sess.UpdatedAt = sess.StartedAt
	return sess, nil
}

// UpdateSessionProgress records accumulated active time for a running session.
func (s Store) UpdateSessionProgress(ctx context.Context, id string, activeMs int64, now time.Time) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	return execOne(ctx, db, "session", id,
		`UPDATE sessions SET active_ms = ?, updated_at_unixms = ? WHERE id = ? AND status = ?`,
		activeMs, toUnixMs(now), id, string(model.SessionRunning))
}

// FinishSession moves a running session to a final status.
func (s Store) FinishSession(ctx context.Context, id string, status model.SessionStatus, activeMs int64, stoppedAt time.Time) error {
	if !status.Valid() || !status.Finished() {
		return fmt.Errorf("finish session: invalid status %q", status)
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	ms := toUnixMs(stoppedAt)
	return execOne(ctx, db, "session", id,
		`UPDATE sessions SET status = ?, active_ms = ?, stopped_at_unixms = ?, updated_at_unixms = ? WHERE id = ? AND status = ?`,
		string(status), activeMs, ms, ms, id, string(model.SessionRunning))
}

func (s Store) GetSession(ctx context.Context, id string) (model.Session, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return model.Session{}, err
	}
	defer db.Close()
	return getSession(ctx, db, id)
}

func getSession(ctx context.Context, db *sql.DB, id string) (model.Session, error) {
	sess, err := scanSession(db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Session{}, errNotFound("session", id)
	}
	return sess, err
}

// ResolveSessionID expands a unique id prefix (as printed by short listings).
func (s Store) ResolveSessionID(ctx context.Context, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", errNotFound("session", prefix)
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return "", err
	}
	defer db.Close()

	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)
	rows, err := db.QueryContext(ctx, `SELECT id FROM sessions WHERE id = ? OR id LIKE ? ESCAPE '\' LIMIT 2`, prefix, escaped+"%")
	if err != nil {
		return "", err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		if id == prefix {
			return id, nil
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	switch len(ids) {
	case 0:
		return "", errNotFound("session", prefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("session id %q is ambiguous", prefix)
	}
}

// ListSessions returns finished sessions newest first, each with its top apps.
func (s Store) ListSessions(ctx context.Context, limit, offset int) ([]model.SessionSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT `+sessionColumns+` FROM sessions
		WHERE status != ? ORDER BY started_at_unixms DESC LIMIT ? OFFSET ?`,
		string(model.SessionRunning), limit, offset)
	if err != nil {
		return nil, err
	}
	var sessions []model.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]model.SessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		apps, err := topApps(ctx, db, sess.ID, 3)
		if err != nil {
			return nil, err
		}
		out = append(out, model.SessionSummary{Session: sess, TopApps: apps})
	}
	return out, nil
}

// RunningSession returns the session still marked Running, if any.
func (s Store) RunningSession(ctx context.Context) (*model.Session, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	sess, err := scanSession(db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions
		WHERE status = ? ORDER BY started_at_unixms DESC LIMIT 1`, string(model.SessionRunning)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// MarkRunningInterrupted closes sessions left Running by a previous process.
func (s Store) MarkRunningInterrupted(ctx context.Context, now time.Time) (int, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return 0, err
	}
	defer db.Close()
	ms := toUnixMs(now)
	res, err := db.ExecContext(ctx, `UPDATE sessions SET status = ?, stopped_at_unixms = COALESCE(stopped_at_unixms, updated_at_unixms), updated_at_unixms = ?
		WHERE status = ?`, string(model.SessionInterrupted), ms, string(model.SessionRunning))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// SetSessionNote stores note; blank text clears it to NULL.
func (s Store) SetSessionNote(ctx context.Context, id, note string) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	var v any
	if trimmed := strings.TrimSpace(note); trimmed != "" {
		v = trimmed
	}
	return execOne(ctx, db, "session", id,
		`UPDATE sessions SET note = ?, updated_at_unixms = ? WHERE id = ?`, v, toUnixMs(time.Now()), id)
}

// SetSessionLabel assigns a label, or clears it when labelID is nil.
func (s Store) SetSessionLabel(ctx context.Context, id string, labelID *int64) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	var v any
	if labelID != nil {
		if _, err := getLabel(ctx, db, *labelID); err != nil {
			return err
		}
		v = *labelID
	}
	return execOne(ctx, db, "session", id,
		`UPDATE sessions SET label_id = ?, updated_at_unixms = ? WHERE id = ?`, v, toUnixMs(time.Now()), id)
}

func (s Store) DeleteSession(ctx context.Context, id string) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	return execOne(ctx, db, "session", id, `DELETE FROM sessions WHERE id = ?`, id)
}

// execOne runs a statement that must touch exactly one row.
func execOne(ctx context.Context, db *sql.DB, kind, id, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errNotFound(kind, id)
	}
	return nil
}
