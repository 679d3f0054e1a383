package mutes

import (
	"context"
	"fmt"

	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/models"
)

type MuteAddCmd struct {
	Day   string `arg:"" help:"Day to mute (YYYY-MM-DD)."`
	Scope string `short:"s" help:"Part of the day to mute." enum:"all_day,morning,afternoon,evening" default:"all_day"`
}

func (c *MuteAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	m, err := ctx.Planner().AddMute(context.Background(), c.Day, models.MuteScope(c.Scope))
	if err != nil {
		return err
	}
	fmt.Printf("Muted suggestions on %s (%s)\n", m.Day, m.Scope)
	return nil
}

type MuteListCmd struct {
	From string `help:"First day to list (YYYY-MM-DD). Defaults to today."`
	To   string `help:"Last day to list (YYYY-MM-DD). Defaults to --from."`
}

func (c *MuteListCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	mutes, err := ctx.Planner().ListMutes(context.Background(), c.From, c.To)
	if err != nil {
		return err
	}
	if len(mutes) == 0 {
		fmt.Println("No muted days")
		return nil
	}

	rows := make([][]string, 0, len(mutes))
	for _, m := range mutes {
		rows = append(rows, []string{m.Day, string(m.Scope), m.CreatedAt.Local().Format("2006-01-02 15:04")})
	}
	fmt.Println(cli.Table([]string{"Day", "Scope", "Muted At"}, rows))
	return nil
}

type MuteDeleteCmd struct {
	Day   string `arg:"" help:"Muted day (YYYY-MM-DD)."`
	Scope string `short:"s" help:"Scope to unmute." enum:"all_day,morning,afternoon,evening" default:"all_day"`
}

func (c *MuteDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	if err := ctx.Planner().DeleteMute(context.Background(), c.Day, models.MuteScope(c.Scope)); err != nil {
		return err
	}
	fmt.Printf("Unmuted %s (%s)\n", c.Day, c.Scope)
	return nil
}
