package postgres

import (
	"context"
	"time"

	"github.com/julianstephens/studyplan/internal/models"
)

func (s *Store) AddLecture(ctx context.Context, l models.LectureEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lectures (id, course, title, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5)`,
		l.ID, l.Course, l.Title, l.StartTime.UTC(), l.EndTime.UTC(),
	)
	return err
}

func (s *Store) ListLectures(ctx context.Context, start, end time.Time) ([]models.LectureEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, course, title, start_time, end_time
		FROM lectures
		WHERE end_time > $1 AND start_time < $2
		ORDER BY start_time, id`,
		start.UTC(), end.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lectures := []models.LectureEvent{}
	for rows.Next() {
		var l models.LectureEvent
		if err := rows.Scan(&l.ID, &l.Course, &l.Title, &l.StartTime, &l.EndTime); err != nil {
			return nil, err
		}
		l.StartTime, l.EndTime = l.StartTime.UTC(), l.EndTime.UTC()
		lectures = append(lectures, l)
	}
	return lectures, rows.Err()
}

func (s *Store) DeleteLecture(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM lectures WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireAffected(res, "lecture", id)
}
