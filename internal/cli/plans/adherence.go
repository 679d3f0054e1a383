package plans

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/models"
)

type AdherenceCmd struct {
	Start string `help:"Window start. Defaults to seven days before --end."`
	End   string `help:"Window end. Defaults to now."`
}

func (c *AdherenceCmd) Run(ctx *cli.Context) error {
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

	m, err := ctx.Planner().Adherence(context.Background(), start, end)
	if err != nil {
		return err
	}
	PrintAdherence(m, loc)
	return nil
}

func pct(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 1, 64) + "%"
}

// PrintAdherence renders adherence metrics as two tables plus recent notes, with times in loc.
func PrintAdherence(m models.StudyPlanAdherenceMetrics, loc *time.Location) {
	fmt.Println(cli.HeaderStyle.Render(fmt.Sprintf("Adherence %s → %s",
		m.WindowStart.In(loc).Format("Jan 2 15:04"),
		m.WindowEnd.In(loc).Format("Jan 2 15:04"))))

	fmt.Println(cli.Table(
		[]string{"", "Sessions", "Minutes"},
		[][]string{
			{"Planned", strconv.Itoa(m.SessionsPlanned), strconv.Itoa(m.MinutesPlanned)},
			{"Done", strconv.Itoa(m.SessionsDone), strconv.Itoa(m.MinutesDone)},
			{"Skipped", strconv.Itoa(m.SessionsSkipped), strconv.Itoa(m.MinutesSkipped)},
			{"Pending", strconv.Itoa(m.SessionsPending), strconv.Itoa(m.MinutesPending)},
		},
	))
	fmt.Printf("Completion: %s   Adherence: %s\n", pct(m.CompletionRate), pct(m.AdherenceRate))

	tr := m.CheckInTrends
	if tr.CheckedCount == 0 {
		fmt.Println(cli.MutedStyle.Render("No check-ins in this window."))
		return
	}
	fmt.Println(cli.Table(
		[]string{"", "Average", "Low days (≤2)", "High days (≥4)"},
		[][]string{
			{"Energy", strconv.FormatFloat(tr.AverageEnergy, 'f', 2, 64), strconv.Itoa(tr.LowEnergyCount), strconv.Itoa(tr.HighEnergyCount)},
			{"Focus", strconv.FormatFloat(tr.AverageFocus, 'f', 2, 64), strconv.Itoa(tr.LowFocusCount), strconv.Itoa(tr.HighFocusCount)},
		},
	))
	for _, n := range tr.RecentNotes {
		fmt.Printf("  %s  %s: %s\n", cli.MutedStyle.Render(n.CheckedAt.In(loc).Format("Jan 2 15:04")), n.Course, n.Note)
	}
}
