package system

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/scheduler"
	"github.com/julianstephens/studyplan/internal/storage"
	"github.com/julianstephens/studyplan/internal/validation"
)

type DoctorCmd struct{}

type check struct {
	name string
	// needsDB skips the check when the database could not be loaded.
	needsDB bool
	// warnOnly reports failures without failing the command.
	warnOnly bool
	run      func(*cli.Context) error
}

var checks = []check{
	{name: "Database reachable", run: checkDBReachable},
	{name: "Migrations complete", needsDB: true, run: checkMigrationsComplete},
	{name: "Settings valid", needsDB: true, run: checkSettings},
	{name: "Deadlines valid", needsDB: true, run: checkDeadlines},
	{name: "Sessions consistent", needsDB: true, run: checkSessions},
	{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
	{name: "Clock/timezone", run: checkClockTimezone},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := false

	for i, c := range checks {
		if c.needsDB && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
			if i == 0 {
				dbReachable = true
			}
		case c.warnOnly:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	fmt.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	_, err := ctx.Store.GetSettings(context.Background())
	return err
}

func checkMigrationsComplete(ctx *cli.Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		return nil
	}
	runner, err := m.MigrationRunner()
	if err != nil {
		return err
	}
	status, err := runner.Status()
	if err != nil {
		return err
	}
	if !status.UpToDate() {
		return fmt.Errorf("%d pending migration(s); run 'studyplan migrate'", len(status.Pending))
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings(context.Background())
	if err != nil {
		return err
	}
	cfg, err := scheduler.ConfigFromSettings(settings)
	if err != nil {
		return err
	}
	return cfg.Validate()
}

func checkDeadlines(ctx *cli.Context) error {
	deadlines, err := ctx.Store.ListDeadlines(context.Background(), true)
	if err != nil {
		return err
	}
	return validation.New().ValidateDeadlines(deadlines)
}

func checkSessions(ctx *cli.Context) error {
	records, err := ctx.Store.ListSessions(context.Background(), storage.SessionFilter{})
	if err != nil {
		return err
	}
	result := validation.New().ValidateRecords(records)
	return result.Err()
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr := ctx.Backups()
	if mgr == nil {
		return fmt.Errorf("automatic backups are only taken for SQLite storage")
	}
	backups, err := mgr.List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found in %s", mgr.Dir())
	}
	return nil
}

func checkClockTimezone(_ *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	if _, err := time.LoadLocation("UTC"); err != nil {
		return fmt.Errorf("timezone database unavailable: %w", err)
	}
	return nil
}
