package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/julianstephens/studyplan/internal/errors"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/storage"
	"github.com/julianstephens/studyplan/internal/utils"
)

const sessionColumns = `id, deadline_id, course, task, priority, start_time, end_time, duration_minutes,
	score, gap_quality_score, priority_score, rationale, generated_at,
	status, checked_at, energy_level, focus_level, check_in_note`

func scanSession(row rowScanner) (models.StudyPlanSessionRecord, error) {
	var r models.StudyPlanSessionRecord
	var priority, start, end, generated, status string
	var checked sql.NullString
	var energy, focus sql.NullInt64

	err := row.Scan(
		&r.ID, &r.DeadlineID, &r.Course, &r.Task, &priority, &start, &end, &r.DurationMinutes,
		&r.Score, &r.GapQualityScore, &r.PriorityScore, &r.Rationale, &generated,
		&status, &checked, &energy, &focus, &r.CheckInNote,
	)
	if err != nil {
		return models.StudyPlanSessionRecord{}, err
	}

	r.Priority = models.Priority(priority)
	r.Status = models.SessionStatus(status)
	if r.StartTime, err = utils.ParseTimestamp(start); err != nil {
		return models.StudyPlanSessionRecord{}, err
	}
	if r.EndTime, err = utils.ParseTimestamp(end); err != nil {
		return models.StudyPlanSessionRecord{}, err
	}
	if r.GeneratedAt, err = utils.ParseTimestamp(generated); err != nil {
		return models.StudyPlanSessionRecord{}, err
	}
	if checked.Valid && checked.String != "" {
		t, err := utils.ParseTimestamp(checked.String)
		if err != nil {
			return models.StudyPlanSessionRecord{}, err
		}
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
		INSERT OR IGNORE INTO study_sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, NULL, NULL, '')`)
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
			utils.FormatTimestamp(r.StartTime), utils.FormatTimestamp(r.EndTime), r.DurationMinutes,
			r.Score, r.GapQualityScore, r.PriorityScore, r.Rationale, utils.FormatTimestamp(r.GeneratedAt),
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
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM study_sessions WHERE id = ?`, id)
	r, err := scanSession(row)
	if err == sql.ErrNoRows {
		return models.StudyPlanSessionRecord{}, fmt.Errorf("%w: session %s", errors.ErrNotFound, id)
	}
	return r, err
}

func (s *Store) ListSessions(ctx context.Context, filter storage.SessionFilter) ([]models.StudyPlanSessionRecord, error) {
	var where []string
	var args []any

	if filter.Start != nil {
		where = append(where, "end_time > ?")
		args = append(args, utils.FormatTimestamp(*filter.Start))
	}
	if filter.End != nil {
		where = append(where, "start_time < ?")
		args = append(args, utils.FormatTimestamp(*filter.End))
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.DeadlineID != "" {
		where = append(where, "deadline_id = ?")
		args = append(args, filter.DeadlineID)
	}

	query := `SELECT ` + sessionColumns + ` FROM study_sessions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY start_time, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
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
	res, err := s.db.ExecContext(ctx, `
		UPDATE study_sessions
		SET status = ?, checked_at = ?, energy_level = ?, focus_level = ?, check_in_note = ?
		WHERE id = ? AND status = 'pending'`,
		string(checkIn.Status), utils.FormatTimestamp(checkIn.CheckedAt),
		nullInt(checkIn.EnergyLevel), nullInt(checkIn.FocusLevel), checkIn.Note, id,
	)
	if err != nil {
		return models.StudyPlanSessionRecord{}, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return models.StudyPlanSessionRecord{}, err
	}

	record, err := s.GetSession(ctx, id)
	if err != nil {
		return models.StudyPlanSessionRecord{}, err
	}
	if n == 0 {
		return models.StudyPlanSessionRecord{}, fmt.Errorf("%w: session %s is already %s",
			errors.ErrInvalidStateTransition, id, record.Status)
	}
	return record, nil
}
