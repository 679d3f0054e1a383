package plans

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/errors"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/planner"
	"github.com/julianstephens/studyplan/internal/storage"
)

type CheckinCmd struct {
	Session string `arg:"" help:"Session id (a unique prefix is enough)."`
	Status  string `arg:"" help:"done or skipped." enum:"done,skipped"`
	Energy  *int   `help:"Energy level 1-5."`
	Focus   *int   `help:"Focus level 1-5."`
	Note    string `help:"Free-form note."`
	At      string `help:"When the check-in happened. Defaults to now."`
}

func (c *CheckinCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	bg := context.Background()
	svc := ctx.Planner()

	id, err := resolveSessionID(bg, ctx, c.Session)
	if err != nil {
		return err
	}
	checkedAt, err := cli.ParseOptionalTime(c.At, ctx.Location())
	if err != nil {
		return fmt.Errorf("invalid --at: %w", err)
	}

	record, err := svc.CheckIn(bg, planner.CheckInRequest{
		SessionID:   id,
		Status:      models.SessionStatus(c.Status),
		CheckedAt:   checkedAt,
		EnergyLevel: c.Energy,
		FocusLevel:  c.Focus,
		Note:        c.Note,
	})
	if err != nil {
		return err
	}

	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ %s: %s (%s)", record.Status, record.Task, record.Course)))
	return nil
}

// resolveSessionID expands a unique id prefix to the full session id.
func resolveSessionID(bg context.Context, ctx *cli.Context, prefix string) (string, error) {
	if _, err := ctx.Store.GetSession(bg, prefix); err == nil {
		return prefix, nil
	}

	records, err := ctx.Store.ListSessions(bg, storage.SessionFilter{})
	if err != nil {
		return "", err
	}
	var matches []string
	for _, r := range records {
		if strings.HasPrefix(r.ID, prefix) {
			matches = append(matches, r.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: session %s", errors.ErrNotFound, prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("session prefix %q is ambiguous (%d matches)", prefix, len(matches))
	}
}
