package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"lefocus-cli/internal/model"
)

// SegmentInput is one segment to record. Duration is derived from the times.
type SegmentInput struct {
	StartTime   time.Time `json:"startTime" yaml:"startTime"`
	EndTime     time.Time `json:"endTime" yaml:"endTime"`
	BundleID    string    `json:"bundleId" yaml:"bundleId"`
	AppName     string    `json:"appName,omitempty" yaml:"appName,omitempty"`
	WindowTitle string    `json:"windowTitle,omitempty" yaml:"windowTitle,omitempty"`
	Confidence  float64   `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	Summary     string    `json:"summary,omitempty" yaml:"summary,omitempty"`
}

func (in SegmentInput) validate() error {
	if strings.TrimSpace(in.BundleID) == "" {
		return fmt.Errorf("segment: missing bundleId")
	}
	if in.StartTime.IsZero() || in.EndTime.IsZero() {
		return fmt.Errorf("segment %s: missing start or end time", in.BundleID)
	}
	if in.EndTime.Before(in.StartTime) {
		return fmt.Errorf("segment %s: ends before it starts", in.BundleID)
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return s
}

// AddSegments appends segments to a session in one transaction.
func (s Store) AddSegments(ctx context.Context, sessionID string, segs []SegmentInput) ([]model.Segment, error) {
	for _, in := range segs {
		if err := in.validate(); err != nil {
			return nil, err
		}
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	if _, err := getSession(ctx, db, sessionID); err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	out := make([]model.Segment, 0, len(segs))
	for _, in := range segs {
		seg := model.Segment{
			ID:           newID("segment"),
			SessionID:    sessionID,
			StartTime:    fromUnixMs(toUnixMs(in.StartTime)),
			EndTime:      fromUnixMs(toUnixMs(in.EndTime)),
			DurationSecs: int64(in.EndTime.Sub(in.StartTime) / time.Second),
			BundleID:     strings.TrimSpace(in.BundleID),
			Confidence:   in.Confidence,
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO segments(id, session_id, start_unixms, end_unixms, duration_secs, bundle_id, app_name, window_title, confidence, summary)
			VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			seg.ID, sessionID, toUnixMs(seg.StartTime), toUnixMs(seg.EndTime), seg.DurationSecs, seg.BundleID,
			nullIfEmpty(in.AppName), nullIfEmpty(in.WindowTitle), seg.Confidence, nullIfEmpty(in.Summary)); err != nil {
			return nil, err
		}
		if v, ok := nullIfEmpty(in.AppName).(string); ok {
			seg.AppName = &v
		}
		if v, ok := nullIfEmpty(in.WindowTitle).(string); ok {
			seg.WindowTitle = &v
		}
		if v, ok := nullIfEmpty(in.Summary).(string); ok {
			seg.Summary = &v
		}
		out = append(out, seg)
	}
	return out, tx.Commit()
}

func (s Store) ListSegments(ctx context.Context, sessionID string) ([]model.Segment, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return listSegments(ctx, db, sessionID)
}

func listSegments(ctx context.Context, db *sql.DB, sessionID string) ([]model.Segment, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, session_id, start_unixms, end_unixms, duration_secs, bundle_id, app_name, window_title, confidence, summary
		FROM segments WHERE session_id = ? ORDER BY start_unixms, id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Segment{}
	for rows.Next() {
		var (
			seg        model.Segment
			start, end int64
			app, title sql.NullString
			summary    sql.NullString
		)
		if err := rows.Scan(&seg.ID, &seg.SessionID, &start, &end, &seg.DurationSecs, &seg.BundleID, &app, &title, &seg.Confidence, &summary); err != nil {
			return nil, err
		}
		seg.StartTime = fromUnixMs(start)
		seg.EndTime = fromUnixMs(end)
		seg.AppName = nullableString(app)
		seg.WindowTitle = nullableString(title)
		seg.Summary = nullableString(summary)
		out = append(out, seg)
	}
	return out, rows.Err()
}

// TopApps aggregates segment time per application, largest first. limit <= 0
// returns every application.
func (s Store) TopApps(ctx context.Context, sessionID string, limit int) ([]model.TopApp, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return topApps(ctx, db, sessionID, limit)
}

func topApps(ctx context.Context, db *sql.DB, sessionID string, limit int) ([]model.TopApp, error) {
	if limit <= 0 {
		limit = -1
	}
	var total int64
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(SUM(duration_secs), 0) FROM segments WHERE session_id = ?`, sessionID).Scan(&total); err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT g.bundle_id, MAX(g.app_name), SUM(g.duration_secs) AS secs, COALESCE(MAX(a.selected), 0)
		FROM segments g
		LEFT JOIN app_selections a ON a.session_id = g.session_id AND a.bundle_id = g.bundle_id
		WHERE g.session_id = ?
		GROUP BY g.bundle_id
		ORDER BY secs DESC, g.bundle_id
		LIMIT ?`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.TopApp{}
	for rows.Next() {
		var (
			app      model.TopApp
			name     sql.NullString
			selected int
		)
		if err := rows.Scan(&app.BundleID, &name, &app.DurationSecs, &selected); err != nil {
			return nil, err
		}
		app.AppName = nullableString(name)
		app.Selected = selected != 0
		if total > 0 {
			app.Percentage = float64(app.DurationSecs) / float64(total) * 100
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

// ToggleAppSelection flips the selection flag of bundleID within a session
// and returns the new value.
func (s Store) ToggleAppSelection(ctx context.Context, sessionID, bundleID string) (bool, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return false, err
	}
	defer db.Close()
	if _, err := getSession(ctx, db, sessionID); err != nil {
		return false, err
	}
	var selected int
	err = db.QueryRowContext(ctx, `INSERT INTO app_selections(session_id, bundle_id, selected, updated_at_unixms) VALUES(?, ?, 1, ?)
		ON CONFLICT(session_id, bundle_id) DO UPDATE SET selected = 1 - selected, updated_at_unixms = excluded.updated_at_unixms
		RETURNING selected`, sessionID, bundleID, toUnixMs(time.Now())).Scan(&selected)
	if err != nil {
		return false, err
	}
	return selected != 0, nil
}

// SessionResults loads the session with its label, segments and every app.
func (s Store) SessionResults(ctx context.Context, sessionID string) (model.SessionResults, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return model.SessionResults{}, err
	}
	defer db.Close()

	sess, err := getSession(ctx, db, sessionID)
	if err != nil {
		return model.SessionResults{}, err
	}
	res := model.SessionResults{Session: sess}
	if sess.LabelID != nil {
		l, err := getLabel(ctx, db, *sess.LabelID)
		if err != nil && !IsNotFound(err) {
			return model.SessionResults{}, err
		}
		if err == nil {
			res.Label = &l
		}
	}
	if res.Segments, err = listSegments(ctx, db, sessionID); err != nil {
		return model.SessionResults{}, err
	}
	if res.TopApps, err = topApps(ctx, db, sessionID, 0); err != nil {
		return model.SessionResults{}, err
	}
	return res, nil
}
