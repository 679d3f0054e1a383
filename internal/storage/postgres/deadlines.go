package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/julianstephens/studyplan/internal/errors"
	"github.com/julianstephens/studyplan/internal/models"
)

const deadlineColumns = `id, course, task, due_date, priority, completed, effort_hours_remaining, effort_confidence`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeadline(row rowScanner) (models.Deadline, error) {
	var d models.Deadline
	var priority string
	var effort, confidence sql.NullFloat64

	if err := row.Scan(&d.ID, &d.Course, &d.Task, &d.DueDate, &priority, &d.Completed, &effort, &confidence); err != nil {
		return models.Deadline{}, err
	}

	d.DueDate = d.DueDate.UTC()
	d.Priority = models.Priority(priority)
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
		INSERT INTO deadlines (`+deadlineColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		d.ID, d.Course, d.Task, d.DueDate.UTC(), string(d.Priority), d.Completed,
		nullFloat(d.EffortHoursRemaining), nullFloat(d.EffortConfidence),
	)
	return err
}

func (s *Store) GetDeadline(ctx context.Context, id string) (models.Deadline, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+deadlineColumns+` FROM deadlines WHERE id = $1`, id)
	d, err := scanDeadline(row)
	if err == sql.ErrNoRows {
		return models.Deadline{}, fmt.Errorf("%w: deadline %s", errors.ErrNotFound, id)
	}
	return d, err
}

func (s *Store) ListDeadlines(ctx context.Context, includeCompleted bool) ([]models.Deadline, error) {
	query := `SELECT ` + deadlineColumns + ` FROM deadlines`
	if !includeCompleted {
		query += ` WHERE completed = FALSE`
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
		SET course = $1, task = $2, due_date = $3, priority = $4, completed = $5,
		    effort_hours_remaining = $6, effort_confidence = $7
		WHERE id = $8`,
		d.Course, d.Task, d.DueDate.UTC(), string(d.Priority), d.Completed,
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

	if _, err := tx.ExecContext(ctx, "DELETE FROM study_sessions WHERE deadline_id = $1", id); err != nil {
		return fmt.Errorf("failed to delete session records: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM deadlines WHERE id = $1", id)
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
