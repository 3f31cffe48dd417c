package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"lefocus-cli/internal/model"
)

// DefaultLabelColors cycles through when a label is created without a color.
var DefaultLabelColors = []string{"#4C8BF5", "#34A853", "#FBBC05", "#EA4335", "#A142F4", "#24C1E0"}

const labelColumns = `id, name, color, order_index, created_at_unixms, updated_at_unixms, deleted_at_unixms`

func scanLabel(r rowScanner) (model.Label, error) {
	var (
		l                    model.Label
		createdAt, updatedAt int64
		deletedAt            sql.NullInt64
	)
	if err := r.Scan(&l.ID, &l.Name, &l.Color, &l.OrderIndex, &createdAt, &updatedAt, &deletedAt); err != nil {
		return model.Label{}, err
	}
	l.CreatedAt = fromUnixMs(createdAt)
	l.UpdatedAt = fromUnixMs(updatedAt)
	l.DeletedAt = nullableTime(deletedAt)
	return l, nil
}

func getLabel(ctx context.Context, db *sql.DB, id int64) (model.Label, error) {
	l, err := scanLabel(db.QueryRowContext(ctx, `SELECT `+labelColumns+` FROM labels WHERE id = ? AND deleted_at_unixms IS NULL`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Label{}, errNotFound("label", strconv.FormatInt(id, 10))
	}
	return l, err
}

// CreateLabel appends a label at the end of the ordering.
func (s Store) CreateLabel(ctx context.Context, name, color string) (model.Label, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Label{}, errEmptyName
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return model.Label{}, err
	}
	defer db.Close()

	var count, next int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(MAX(order_index) + 1, 0) FROM labels WHERE deleted_at_unixms IS NULL`).Scan(&count, &next); err != nil {
		return model.Label{}, err
	}
	color = strings.TrimSpace(color)
	if color == "" {
		color = DefaultLabelColors[int(count)%len(DefaultLabelColors)]
	}
	ms := toUnixMs(time.Now())
	res, err := db.ExecContext(ctx, `INSERT INTO labels(name, color, order_index, created_at_unixms, updated_at_unixms) VALUES(?, ?, ?, ?, ?)`,
		name, color, next, ms, ms)
	if err != nil {
		return model.Label{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Label{}, err
	}
	return getLabel(ctx, db, id)
}

// ListLabels returns live labels in display order.
func (s Store) ListLabels(ctx context.Context) ([]model.Label, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	rows, err := db.QueryContext(ctx, `SELECT `+labelColumns+` FROM labels WHERE deleted_at_unixms IS NULL ORDER BY order_index, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Label{}
	for rows.Next() {
		l, err := scanLabel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s Store) GetLabel(ctx context.Context, id int64) (model.Label, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return model.Label{}, err
	}
	defer db.Close()
	return getLabel(ctx, db, id)
}

// UpdateLabel changes name and/or color; nil leaves a field as is.
func (s Store) UpdateLabel(ctx context.Context, id int64, name, color *string) (model.Label, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return model.Label{}, err
	}
	defer db.Close()
	l, err := getLabel(ctx, db, id)
	if err != nil {
		return model.Label{}, err
	}
	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return model.Label{}, errEmptyName
		}
		l.Name = n
	}
	if color != nil && strings.TrimSpace(*color) != "" {
		l.Color = strings.TrimSpace(*color)
	}
	if _, err := db.ExecContext(ctx, `UPDATE labels SET name = ?, color = ?, updated_at_unixms = ? WHERE id = ? AND deleted_at_unixms IS NULL`,
		l.Name, l.Color, toUnixMs(time.Now()), id); err != nil {
		return model.Label{}, err
	}
	return getLabel(ctx, db, id)
}

// DeleteLabel soft-deletes a label and detaches it from every session.
func (s Store) DeleteLabel(ctx context.Context, id int64) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	ms := toUnixMs(time.Now())
	res, err := tx.ExecContext(ctx, `UPDATE labels SET deleted_at_unixms = ?, updated_at_unixms = ? WHERE id = ? AND deleted_at_unixms IS NULL`, ms, ms, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return errNotFound("label", strconv.FormatInt(id, 10))
	}
	if _, err := tx.ExecContext(ctx, `UPDATE sessions SET label_id = NULL WHERE label_id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}
