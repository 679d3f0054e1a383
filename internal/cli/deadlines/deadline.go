package deadlines

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/constants"
	"github.com/julianstephens/studyplan/internal/models"
)

type DeadlineAddCmd struct {
	Course     string   `arg:"" help:"Course the work belongs to."`
	Task       string   `arg:"" help:"What is due."`
	Due        string   `short:"d" help:"Due time (RFC3339, YYYY-MM-DD HH:MM, or YYYY-MM-DD for end of day)." required:""`
	Priority   string   `short:"p" help:"Priority (low|medium|high|critical)." enum:"low,medium,high,critical" default:"medium"`
	Effort     *float64 `short:"e" help:"Remaining effort in hours."`
	Confidence *float64 `short:"c" help:"Confidence in the effort estimate (0-1)."`
	ID         string   `help:"Explicit deadline id. Generated when omitted."`
}

func (c *DeadlineAddCmd) Validate() error {
	if c.Effort != nil && *c.Effort < 0 {
		return fmt.Errorf("effort must not be negative")
	}
	if c.Confidence != nil && (*c.Confidence < 0 || *c.Confidence > 1) {
		return fmt.Errorf("confidence must be between 0 and 1")
	}
	return nil
}

func (c *DeadlineAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	due, err := parseDue(c.Due, ctx.Location())
	if err != nil {
		return fmt.Errorf("invalid --due: %w", err)
	}

	d, err := ctx.Planner().AddDeadline(context.Background(), models.Deadline{
		ID:                   c.ID,
		Course:               c.Course,
		Task:                 c.Task,
		DueDate:              due,
		Priority:             models.Priority(c.Priority),
		EffortHoursRemaining: c.Effort,
		EffortConfidence:     c.Confidence,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Added deadline: %s %s (ID: %s)\n", d.Course, d.Task, d.ID)
	return nil
}

// parseDue treats a bare date as the last minute of that day.
func parseDue(value string, loc *time.Location) (time.Time, error) {
	if day, err := time.ParseInLocation(constants.DateFormat, value, loc); err == nil {
		return day.Add(24*time.Hour - time.Minute), nil
	}
	return cli.ParseTime(value, loc)
}

type DeadlineListCmd struct {
	All bool `help:"Include completed deadlines."`
}

func (c *DeadlineListCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	deadlines, err := ctx.Planner().ListDeadlines(context.Background(), c.All)
	if err != nil {
		return err
	}
	if len(deadlines) == 0 {
		fmt.Println("No deadlines found")
		return nil
	}

	loc := ctx.Location()
	rows := make([][]string, 0, len(deadlines))
	for _, d := range deadlines {
		status := "open"
		if d.Completed {
			status = "done"
		}
		rows = append(rows, []string{
			d.ID,
			d.Course,
			d.Task,
			d.DueDate.In(loc).Format("Mon Jan 2 15:04"),
			string(d.Priority),
			formatEffort(d),
			status,
		})
	}
	fmt.Println(cli.Table([]string{"ID", "Course", "Task", "Due", "Priority", "Effort", "Status"}, rows))
	return nil
}

func formatEffort(d models.Deadline) string {
	if d.EffortHoursRemaining == nil {
		return "-"
	}
	s := strconv.FormatFloat(*d.EffortHoursRemaining, 'f', -1, 64) + "h"
	if d.EffortConfidence != nil {
		s += fmt.Sprintf(" (%.0f%%)", *d.EffortConfidence*100)
	}
	return s
}

type DeadlineDoneCmd struct {
	ID string `arg:"" help:"Deadline id."`
}

func (c *DeadlineDoneCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	d, err := ctx.Planner().CompleteDeadline(context.Background(), c.ID)
	if err != nil {
		return err
	}
	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Completed %s %s", d.Course, d.Task)))
	return nil
}

type DeadlineDeleteCmd struct {
	ID string `arg:"" help:"Deadline id."`
}

func (c *DeadlineDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	if err := ctx.Planner().DeleteDeadline(context.Background(), c.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted deadline %s and its sessions\n", c.ID)
	return nil
}
