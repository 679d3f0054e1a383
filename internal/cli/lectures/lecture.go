package lectures

import (
	"context"
	"fmt"

	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/models"
)

type LectureAddCmd struct {
	Course string `arg:"" help:"Course the lecture belongs to."`
	Title  string `arg:"" help:"Lecture title."`
	Start  string `short:"s" help:"Start time (RFC3339 or YYYY-MM-DD HH:MM)." required:""`
	End    string `short:"e" help:"End time (RFC3339 or YYYY-MM-DD HH:MM)." required:""`
}

func (c *LectureAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	loc := ctx.Location()
	start, err := cli.ParseTime(c.Start, loc)
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}
	end, err := cli.ParseTime(c.End, loc)
	if err != nil {
		return fmt.Errorf("invalid --end: %w", err)
	}

	l, err := ctx.Planner().AddLecture(context.Background(), models.LectureEvent{
		Course:    c.Course,
		Title:     c.Title,
		StartTime: start,
		EndTime:   end,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Added lecture: %s %s (ID: %s)\n", l.Course, l.Title, l.ID)
	return nil
}

type LectureListCmd struct {
	Days int `help:"How many days ahead to show." default:"7"`
}

func (c *LectureListCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	lectures, err := ctx.Planner().ListLectures(context.Background(), c.Days)
	if err != nil {
		return err
	}
	if len(lectures) == 0 {
		fmt.Println("No upcoming lectures")
		return nil
	}

	loc := ctx.Location()
	rows := make([][]string, 0, len(lectures))
	for _, l := range lectures {
		rows = append(rows, []string{
			l.ID,
			l.Course,
			l.Title,
			l.StartTime.In(loc).Format("Mon Jan 2 15:04"),
			l.EndTime.In(loc).Format("15:04"),
		})
	}
	fmt.Println(cli.Table([]string{"ID", "Course", "Title", "Start", "End"}, rows))
	return nil
}

type LectureDeleteCmd struct {
	ID string `arg:"" help:"Lecture id."`
}

func (c *LectureDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	if err := ctx.Planner().DeleteLecture(context.Background(), c.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted lecture %s\n", c.ID)
	return nil
}
