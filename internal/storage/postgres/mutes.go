package postgres

import (
	"context"
	"fmt"

	"github.com/julianstephens/studyplan/internal/errors"
	"github.com/julianstephens/studyplan/internal/models"
)

func (s *Store) AddMute(ctx context.Context, m models.ScheduleSuggestionMute) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO suggestion_mutes (day, scope, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (day, scope) DO NOTHING`,
		m.Day, string(m.Scope), m.CreatedAt.UTC(),
	)
	return err
}

func (s *Store) ListMutes(ctx context.Context, fromDay, toDay string) ([]models.ScheduleSuggestionMute, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT day, scope, created_at
		FROM suggestion_mutes
		WHERE day >= $1 AND day <= $2
		ORDER BY day, scope`,
		fromDay, toDay,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	mutes := []models.ScheduleSuggestionMute{}
	for rows.Next() {
		var m models.ScheduleSuggestionMute
		var scope string
		if err := rows.Scan(&m.Day, &scope, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Scope = models.MuteScope(scope)
		m.CreatedAt = m.CreatedAt.UTC()
		mutes = append(mutes, m)
	}
	return mutes, rows.Err()
}

func (s *Store) DeleteMute(ctx context.Context, day string, scope models.MuteScope) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM suggestion_mutes WHERE day = $1 AND scope = $2", day, string(scope))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: mute %s/%s", errors.ErrNotFound, day, scope)
	}
	return nil
}
