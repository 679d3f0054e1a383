package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/studyplan/internal/errors"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/utils"
)

const deadlineColumns = `id, course, task, due_date, priority, completed, effort_hours_remaining, effort_confidence`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeadline(row rowScanner) (models.Deadline, error) {
	var d models.Deadline
	var due, priority string
	var completed bool
	var effort, confidence sql.NullFloat64

	if err := row.Scan(&d.ID, &d.Course, &d.Task, &due, &priority, &completed, &effort, &confidence); err != nil {
		return models.Deadline{}, err
	}

	dueDate, err := utils.ParseTimestamp(due)
	if err != nil {
		return models.Deadline{}, err
	}
	d.DueDate = dueDate
	d.Priority = models.Priority(priority)
	d.Completed = completed
	if effort.Valid {
		d.EffortHoursRemaining = &effort.Float64
	}
	if confidence.Valid {
		d.EffortConfidence = &confidence.Float64
	}
	return d, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func (s *Store) AddDeadline(ctx context.Context, d models.Deadline) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO deadlines (`+deadlineColumns+`, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Course, d.Task, utils.FormatTimestamp(d.DueDate), string(d.Priority), d.Completed,
		nullFloat(d.EffortHoursRemaining), nullFloat(d.EffortConfidence), utils.FormatTimestamp(time.Now()),
	)
	return err
}

func (s *Store) GetDeadline(ctx context.Context, id string) (models.Deadline, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+deadlineColumns+` FROM deadlines WHERE id = ?`, id)
	d, err := scanDeadline(row)
	if err == sql.ErrNoRows {
		return models.Deadline{}, fmt.Errorf("%w: deadline %s", errors.ErrNotFound, id)
	}
	return d, err
}

func (s *Store) ListDeadlines(ctx context.Context, includeCompleted bool) ([]models.Deadline, error) {
	query := `SELECT ` + deadlineColumns + ` FROM deadlines`
	if !includeCompleted {
		query += ` WHERE completed = 0`
	}
	query += ` ORDER BY due_date, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deadlines := []models.Deadline{}
	for rows.Next() {
		d, err := scanDeadline(rows)
		if err != nil {
			return nil, err
		}
		deadlines = append(deadlines, d)
	}
	return deadlines, rows.Err()
}

func (s *Store) UpdateDeadline(ctx context.Context, d models.Deadline) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE deadlines
		SET course = ?, task = ?, due_date = ?, priority = ?, completed = ?,
		    effort_hours_remaining = ?, effort_confidence = ?
		WHERE id = ?`,
		d.Course, d.Task, utils.FormatTimestamp(d.DueDate), string(d.Priority), d.Completed,
		nullFloat(d.EffortHoursRemaining), nullFloat(d.EffortConfidence), d.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res, "deadline", d.ID)
}

func (s *Store) DeleteDeadline(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM study_sessions WHERE deadline_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete session records: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM deadlines WHERE id = ?", id)
	if err != nil {
		return err
	}
	if err := requireAffected(res, "deadline", id); err != nil {
		return err
	}
	return tx.Commit()
}

func requireAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", errors.ErrNotFound, kind, id)
	}
	return nil
}
