package plans

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/planner"
	"github.com/julianstephens/studyplan/internal/scheduler"
)

type PlanCmd struct {
	Start          string   `help:"Window start (RFC3339, 'YYYY-MM-DD HH:MM' or YYYY-MM-DD). Defaults to now."`
	End            string   `help:"Window end. Defaults to start plus the horizon."`
	Days           int      `help:"Planning horizon in days." default:"0"`
	GapWeight      *float64 `help:"Override the gap quality weight for this plan."`
	PriorityWeight *float64 `help:"Override the priority weight for this plan."`
	Accept         bool     `help:"Accept the plan without asking."`
	DryRun         bool     `help:"Show the plan without offering to accept it."`
}

func (c *PlanCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	bg := context.Background()
	svc := ctx.Planner()

	req, err := c.request(ctx)
	if err != nil {
		return err
	}
	if c.GapWeight != nil || c.PriorityWeight != nil {
		settings, err := svc.GetSettings(bg)
		if err != nil {
			return err
		}
		weights := scheduler.ScoringWeights{GapWeight: settings.GapWeight, PriorityWeight: settings.PriorityWeight}
		if c.GapWeight != nil {
			weights.GapWeight = *c.GapWeight
		}
		if c.PriorityWeight != nil {
			weights.PriorityWeight = *c.PriorityWeight
		}
		req.Weights = &weights
	}

	plan, err := svc.Generate(bg, req)
	if err != nil {
		return err
	}
	PrintPlan(plan, ctx.Location())

	if c.DryRun || len(plan.Sessions) == 0 {
		return nil
	}

	accept := c.Accept
	if !accept {
		form := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Accept %d session(s)?", len(plan.Sessions))).
				Affirmative("Accept").
				Negative("Discard").
				Value(&accept),
		))
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive form error: %w", err)
		}
	}
	if !accept {
		fmt.Println("Plan discarded.")
		return nil
	}

	records, err := svc.AcceptPlan(bg, plan)
	if err != nil {
		return err
	}
	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Accepted %d session(s)", len(records))))
	return nil
}

func (c *PlanCmd) request(ctx *cli.Context) (planner.GenerateRequest, error) {
	req := planner.GenerateRequest{HorizonDays: c.Days}
	if c.Start == "" && c.End == "" {
		return req, nil
	}

	loc := ctx.Location()
	start := ctx.Now()
	if c.Start != "" {
		t, err := cli.ParseTime(c.Start, loc)
		if err != nil {
			return req, fmt.Errorf("invalid --start: %w", err)
		}
		start = t
	}

	var end time.Time
	if c.End != "" {
		t, err := cli.ParseTime(c.End, loc)
		if err != nil {
			return req, fmt.Errorf("invalid --end: %w", err)
		}
		end = t
	} else {
		days := c.Days
		if days == 0 {
			settings, err := ctx.Store.GetSettings(context.Background())
			if err != nil {
				return req, err
			}
			days = settings.DefaultHorizonDays
		}
		end = start.In(loc).AddDate(0, 0, days)
	}
	req.WindowStart, req.WindowEnd = start, end
	return req, nil
}

// PrintPlan renders the sessions and unallocated work of plan in loc.
func PrintPlan(plan models.StudyPlan, loc *time.Location) {
	fmt.Println(cli.HeaderStyle.Render(fmt.Sprintf("Study plan %s → %s",
		plan.WindowStart.In(loc).Format("Mon Jan 2 15:04"),
		plan.WindowEnd.In(loc).Format("Mon Jan 2 15:04"))))
	fmt.Println(cli.MutedStyle.Render(plan.Summary))

	if len(plan.Sessions) > 0 {
		rows := make([][]string, 0, len(plan.Sessions))
		for _, s := range plan.Sessions {
			rows = append(rows, []string{
				s.StartTime.In(loc).Format("Mon Jan 2 15:04"),
				strconv.Itoa(s.DurationMinutes) + "m",
				s.Course,
				s.Task,
				string(s.Priority),
				strconv.FormatFloat(s.Score, 'f', 2, 64),
				s.Rationale,
			})
		}
		fmt.Println(cli.Table([]string{"Start", "Length", "Course", "Task", "Priority", "Score", "Why"}, rows))
	}

	if len(plan.Unallocated) > 0 {
		fmt.Println(cli.WarningStyle.Render("Could not fully schedule:"))
		rows := make([][]string, 0, len(plan.Unallocated))
		for _, u := range plan.Unallocated {
			rows = append(rows, []string{
				u.Course,
				u.Task,
				u.DueDate.In(loc).Format("Mon Jan 2 15:04"),
				strconv.Itoa(u.RemainingMinutes) + "m",
				string(u.Reason),
			})
		}
		fmt.Println(cli.Table([]string{"Course", "Task", "Due", "Remaining", "Reason"}, rows))
	}
}
