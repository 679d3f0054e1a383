package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/julianstephens/studyplan/internal/errors"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/storage"
)

const sessionColumns = `id, deadline_id, course, task, priority, start_time, end_time, duration_minutes,
	score, gap_quality_score, priority_score, rationale, generated_at,
	status, checked_at, energy_level, focus_level, check_in_note`

func scanSession(row rowScanner) (models.StudyPlanSessionRecord, error) {
	var r models.StudyPlanSessionRecord
	var priority, status string
	var checked sql.NullTime
	var energy, focus sql.NullInt64

	err := row.Scan(
		&r.ID, &r.DeadlineID, &r.Course, &r.Task, &priority, &r.StartTime, &r.EndTime, &r.DurationMinutes,
		&r.Score, &r.GapQualityScore, &r.PriorityScore, &r.Rationale, &r.GeneratedAt,
		&status, &checked, &energy, &focus, &r.CheckInNote,
	)
	if err != nil {
		return models.StudyPlanSessionRecord{}, err
	}

	r.Priority = models.Priority(priority)
	r.Status = models.SessionStatus(status)
	r.StartTime, r.EndTime, r.GeneratedAt = r.StartTime.UTC(), r.EndTime.UTC(), r.GeneratedAt.UTC()
	if checked.Valid {
		t := checked.Time.UTC()
		r.CheckedAt = &t
	}
	if energy.Valid {
		v := int(energy.Int64)
		r.EnergyLevel = &v
	}
	if focus.Valid {
		v := int(focus.Int64)
		r.FocusLevel = &v
	}
	return r, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func (s *Store) SaveSessions(ctx context.Context, records []models.StudyPlanSessionRecord) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO study_sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NULL, NULL, NULL, '')
		ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, r := range records {
		status := r.Status
		if status == "" {
			status = models.SessionStatusPending
		}
		res, err := stmt.ExecContext(ctx,
			r.ID, r.DeadlineID, r.Course, r.Task, string(r.Priority),
			r.StartTime.UTC(), r.EndTime.UTC(), r.DurationMinutes,
			r.Score, r.GapQualityScore, r.PriorityScore, r.Rationale, r.GeneratedAt.UTC(),
			string(status),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to save session %s: %w", r.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

func (s *Store) GetSession(ctx context.Context, id string) (models.StudyPlanSessionRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM study_sessions WHERE id = $1`, id)
	r, err := scanSession(row)
	if err == sql.ErrNoRows {
		return models.StudyPlanSessionRecord{}, fmt.Errorf("%w: session %s", errors.ErrNotFound, id)
	}
	return r, err
}

func (s *Store) ListSessions(ctx context.Context, filter storage.SessionFilter) ([]models.StudyPlanSessionRecord, error) {
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Start != nil {
		where = append(where, "end_time > "+arg(filter.Start.UTC()))
	}
	if filter.End != nil {
		where = append(where, "start_time < "+arg(filter.End.UTC()))
	}
	if filter.Status != "" {
		where = append(where, "status = "+arg(string(filter.Status)))
	}
	if filter.DeadlineID != "" {
		where = append(where, "deadline_id = "+arg(filter.DeadlineID))
	}

	query := `SELECT ` + sessionColumns + ` FROM study_sessions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY start_time, id"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []models.StudyPlanSessionRecord{}
	for rows.Next() {
		r, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) CheckInSession(ctx context.Context, id string, checkIn models.CheckIn) (models.StudyPlanSessionRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE study_sessions
		SET status = $1, checked_at = $2, energy_level = $3, focus_level = $4, check_in_note = $5
		WHERE id = $6 AND status = 'pending'
		RETURNING `+sessionColumns,
		string(checkIn.Status), checkIn.CheckedAt.UTC(),
		nullInt(checkIn.EnergyLevel), nullInt(checkIn.FocusLevel), checkIn.Note, id,
	)
	record, err := scanSession(row)
	if err == nil {
		return record, nil
	}
	if err != sql.ErrNoRows {
		return models.StudyPlanSessionRecord{}, err
	}

	// Nothing updated: either the id is unknown or the record is already checked.
	current, err := s.GetSession(ctx, id)
	if err != nil {
		return models.StudyPlanSessionRecord{}, err
	}
	return models.StudyPlanSessionRecord{}, fmt.Errorf("%w: session %s is already %s",
		errors.ErrInvalidStateTransition, id, current.Status)
}
