package sqlite

import (
	"context"
	"time"

	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/utils"
)

func (s *Store) AddLecture(ctx context.Context, l models.LectureEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lectures (id, course, title, start_time, end_time)
		VALUES (?, ?, ?, ?, ?)`,
		l.ID, l.Course, l.Title, utils.FormatTimestamp(l.StartTime), utils.FormatTimestamp(l.EndTime),
	)
	return err
}

// ListLectures returns lectures overlapping [start, end), ordered by start time.
func (s *Store) ListLectures(ctx context.Context, start, end time.Time) ([]models.LectureEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, course, title, start_time, end_time
		FROM lectures
		WHERE end_time > ? AND start_time < ?
		ORDER BY start_time, id`,
		utils.FormatTimestamp(start), utils.FormatTimestamp(end),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lectures := []models.LectureEvent{}
	for rows.Next() {
		var l models.LectureEvent
		var startStr, endStr string
		if err := rows.Scan(&l.ID, &l.Course, &l.Title, &startStr, &endStr); err != nil {
			return nil, err
		}
		if l.StartTime, err = utils.ParseTimestamp(startStr); err != nil {
			return nil, err
		}
		if l.EndTime, err = utils.ParseTimestamp(endStr); err != nil {
			return nil, err
		}
		lectures = append(lectures, l)
	}
	return lectures, rows.Err()
}

func (s *Store) DeleteLecture(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM lectures WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireAffected(res, "lecture", id)
}
