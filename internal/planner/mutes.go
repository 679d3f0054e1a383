package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/studyplan/internal/constants"
	"github.com/julianstephens/studyplan/internal/errors"
	"github.com/julianstephens/studyplan/internal/models"
)

// AddMute suppresses suggestions for scope on day (YYYY-MM-DD). Muting the same
// day and scope twice is a no-op.
func (s *Service) AddMute(ctx context.Context, day string, scope models.MuteScope) (models.ScheduleSuggestionMute, error) {
	if _, err := time.Parse(constants.DateFormat, day); err != nil {
		return models.ScheduleSuggestionMute{}, fmt.Errorf("%w: mute day %q must be YYYY-MM-DD", errors.ErrInvalidWindow, day)
	}
	if _, _, err := scope.Hours(); err != nil {
		return models.ScheduleSuggestionMute{}, fmt.Errorf("%w: %v", errors.ErrInvalidWindow, err)
	}

	mute := models.ScheduleSuggestionMute{
		Day:       day,
		Scope:     scope,
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := s.store.AddMute(ctx, mute); err != nil {
		return models.ScheduleSuggestionMute{}, fmt.Errorf("failed to add mute: %w", err)
	}
	return mute, nil
}

// ListMutes returns mutes for days in [fromDay, toDay]. Empty bounds select today in
// the configured timezone.
func (s *Service) ListMutes(ctx context.Context, fromDay, toDay string) ([]models.ScheduleSuggestionMute, error) {
	if fromDay == "" {
		loc, err := s.location(ctx)
		if err != nil {
			return nil, err
		}
		fromDay = s.clock.Now().In(loc).Format(constants.DateFormat)
	}
	if toDay == "" {
		toDay = fromDay
	}
	if toDay < fromDay {
		return nil, fmt.Errorf("%w: %s is before %s", errors.ErrInvalidWindow, toDay, fromDay)
	}
	return s.store.ListMutes(ctx, fromDay, toDay)
}

func (s *Service) DeleteMute(ctx context.Context, day string, scope models.MuteScope) error {
	return s.store.DeleteMute(ctx, day, scope)
}
