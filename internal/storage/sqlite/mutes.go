package sqlite

import (
	"context"
	"fmt"

	"github.com/julianstephens/studyplan/internal/errors"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/utils"
)

// AddMute records a mute. Muting the same day and scope twice is a no-op.
func (s *Store) AddMute(ctx context.Context, m models.ScheduleSuggestionMute) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO suggestion_mutes (day, scope, created_at)
		VALUES (?, ?, ?)`,
		m.Day, string(m.Scope), utils.FormatTimestamp(m.CreatedAt),
	)
	return err
}

// ListMutes returns mutes for days in [fromDay, toDay] (YYYY-MM-DD, inclusive).
func (s *Store) ListMutes(ctx context.Context, fromDay, toDay string) ([]models.ScheduleSuggestionMute, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT day, scope, created_at
		FROM suggestion_mutes
		WHERE day >= ? AND day <= ?
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
		var scope, created string
		if err := rows.Scan(&m.Day, &scope, &created); err != nil {
			return nil, err
		}
		m.Scope = models.MuteScope(scope)
		if m.CreatedAt, err = utils.ParseTimestamp(created); err != nil {
			return nil, err
		}
		mutes = append(mutes, m)
	}
	return mutes, rows.Err()
}

func (s *Store) DeleteMute(ctx context.Context, day string, scope models.MuteScope) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM suggestion_mutes WHERE day = ? AND scope = ?", day, string(scope))
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
