package plans

import (
	"context"
	"fmt"
	"strconv"

	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/storage"
)

type SessionsCmd struct {
	Start    string `help:"Only sessions ending after this time."`
	End      string `help:"Only sessions starting before this time."`
	Status   string `help:"Filter by status." enum:",pending,done,skipped" default:""`
	Deadline string `help:"Filter by deadline id."`
	Limit    int    `help:"Maximum number of sessions (default 100, max 500)."`
}

func (c *SessionsCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	loc := ctx.Location()
	start, err := cli.ParseOptionalTime(c.Start, loc)
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}
	end, err := cli.ParseOptionalTime(c.End, loc)
	if err != nil {
		return fmt.Errorf("invalid --end: %w", err)
	}

	records, err := ctx.Planner().ListSessions(context.Background(), storage.SessionFilter{
		Start:      start,
		End:        end,
		Status:     models.SessionStatus(c.Status),
		DeadlineID: c.Deadline,
		Limit:      c.Limit,
	})
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No sessions found.")
		return nil
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			shortID(r.ID),
			r.StartTime.In(loc).Format("Mon Jan 2 15:04"),
			strconv.Itoa(r.DurationMinutes) + "m",
			r.Course,
			r.Task,
			string(r.Status),
		})
	}
	fmt.Println(cli.Table([]string{"ID", "Start", "Length", "Course", "Task", "Status"}, rows))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
