package settings

import (
	"context"
	"fmt"
	"sort"

	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/scheduler"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	DayStart       *int     `help:"First hour sessions may start (0-23)."`
	DayEnd         *int     `help:"Hour by which sessions must end (1-24)."`
	PreferredStart *int     `help:"Hour the time-of-day score peaks."`
	GapWeight      *float64 `help:"Weight of gap quality in session scoring."`
	PriorityWeight *float64 `help:"Weight of deadline priority in session scoring."`
	MinSession     *int     `help:"Shortest session worth scheduling, in minutes."`
	DefaultSession *int     `help:"Default session length, in minutes."`
	MaxSession     *int     `help:"Longest single session, in minutes."`
	Step           *int     `help:"Candidate slide step inside a gap, in minutes."`
	MinGap         *int     `help:"Ignore free gaps shorter than this many minutes."`
	SpacingBuffer  *int     `help:"Minutes kept between sessions of the same course."`
	HorizonDays    *int     `help:"Default planning horizon in days."`
	MaxHorizonDays *int     `help:"Longest planning window in days."`
	Timezone       *string  `help:"IANA timezone (or Local)."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	bg := context.Background()

	settings, err := ctx.Store.GetSettings(bg)
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.List {
		printSettings(settings)
		return nil
	}

	updated := c.apply(&settings)
	if !updated {
		fmt.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}

	cfg, err := scheduler.ConfigFromSettings(settings)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := ctx.Store.SaveSettings(bg, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Println("Settings updated successfully.")
	return nil
}

func (c *SettingsCmd) apply(s *models.Settings) bool {
	updated := false
	setInt := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
			updated = true
		}
	}
	setFloat := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
			updated = true
		}
	}

	setInt(&s.DayStartHour, c.DayStart)
	setInt(&s.DayEndHour, c.DayEnd)
	setInt(&s.PreferredStartHour, c.PreferredStart)
	setFloat(&s.GapWeight, c.GapWeight)
	setFloat(&s.PriorityWeight, c.PriorityWeight)
	setInt(&s.MinSessionMinutes, c.MinSession)
	setInt(&s.DefaultSessionMinutes, c.DefaultSession)
	setInt(&s.MaxSessionMinutes, c.MaxSession)
	setInt(&s.StepMinutes, c.Step)
	setInt(&s.MinGapMinutes, c.MinGap)
	setInt(&s.SpacingBufferMinutes, c.SpacingBuffer)
	setInt(&s.DefaultHorizonDays, c.HorizonDays)
	setInt(&s.MaxHorizonDays, c.MaxHorizonDays)
	if c.Timezone != nil {
		s.Timezone = *c.Timezone
		updated = true
	}
	return updated
}

func printSettings(s models.Settings) {
	values := models.SettingsToMap(s)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, values[k]})
	}
	fmt.Println(cli.Table([]string{"Setting", "Value"}, rows))
}
