package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/cli/backups"
	"github.com/julianstephens/studyplan/internal/cli/deadlines"
	"github.com/julianstephens/studyplan/internal/cli/lectures"
	"github.com/julianstephens/studyplan/internal/cli/mutes"
	"github.com/julianstephens/studyplan/internal/cli/optimize"
	"github.com/julianstephens/studyplan/internal/cli/plans"
	"github.com/julianstephens/studyplan/internal/cli/settings"
	"github.com/julianstephens/studyplan/internal/cli/system"
	"github.com/julianstephens/studyplan/internal/config"
	"github.com/julianstephens/studyplan/internal/constants"
	"github.com/julianstephens/studyplan/internal/errors"
	"github.com/julianstephens/studyplan/internal/keyring"
	"github.com/julianstephens/studyplan/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	DB      string `help:"SQLite file path or PostgreSQL connection string. PostgreSQL passwords must NOT be embedded here; use STUDYPLAN_DB_CONNECTION or the OS keyring instead." type:"string"`
	Config  string `help:"YAML config file path." env:"STUDYPLAN_CONFIG" type:"string"`
	Debug   bool   `help:"Log debug output to stderr."`

	Init      system.InitCmd       `cmd:"" help:"Initialize studyplan storage."`
	Migrate   system.MigrateCmd    `cmd:"" help:"Run database migrations."`
	Doctor    system.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	Serve     system.ServeCmd      `cmd:"" help:"Serve the HTTP API."`
	Plan      plans.PlanCmd        `cmd:"" help:"Generate a study plan."`
	Sessions  plans.SessionsCmd    `cmd:"" help:"List planned sessions."`
	Checkin   plans.CheckinCmd     `cmd:"" help:"Record the outcome of a session."`
	Adherence plans.AdherenceCmd   `cmd:"" help:"Show plan adherence metrics."`
	Optimize  optimize.OptimizeCmd `cmd:"" help:"Suggest scheduler tuning from check-in history."`
	Deadline  struct {
		Add    deadlines.DeadlineAddCmd    `cmd:"" help:"Add a deadline."`
		List   deadlines.DeadlineListCmd   `cmd:"" help:"List deadlines." default:"1"`
		Done   deadlines.DeadlineDoneCmd   `cmd:"" help:"Mark a deadline complete."`
		Delete deadlines.DeadlineDeleteCmd `cmd:"" help:"Delete a deadline and its sessions."`
	} `cmd:"" help:"Manage deadlines."`
	Lecture struct {
		Add    lectures.LectureAddCmd    `cmd:"" help:"Add a lecture."`
		List   lectures.LectureListCmd   `cmd:"" help:"List upcoming lectures." default:"1"`
		Delete lectures.LectureDeleteCmd `cmd:"" help:"Delete a lecture."`
	} `cmd:"" help:"Manage lectures."`
	Mute struct {
		Add    mutes.MuteAddCmd    `cmd:"" help:"Mute suggestions for a day."`
		List   mutes.MuteListCmd   `cmd:"" help:"List muted days." default:"1"`
		Delete mutes.MuteDeleteCmd `cmd:"" help:"Remove a mute."`
	} `cmd:"" help:"Manage suggestion mutes."`
	Settings settings.SettingsCmd `cmd:"" help:"View or change scheduler settings."`
	Keyring  struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store the database connection string."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string (masked)."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check keyring availability."`
	} `cmd:"" help:"Manage the database connection string in the OS keyring."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage SQLite database backups."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Study plan scheduler and adherence tracker"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		errors.Fatal(fmt.Errorf("failed to load config: %w", err))
	}
	cfg.Log.Debug = cfg.Log.Debug || CLI.Debug

	dsn, source := cli.ResolveDSN(CLI.DB, cfg, keyring.Default())

	if err := logger.Init(logger.Config{
		Debug:     cfg.Log.Debug,
		ConfigDir: config.ConfigDir(dsn),
		LogDir:    cfg.Log.Dir,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}
	logger.Debug("Resolved database", "source", source, "dsn", cli.MaskPassword(dsn))

	store, err := cli.NewStore(dsn, source)
	if err != nil {
		errors.Fatal(err)
	}

	appCtx := &cli.Context{
		Store:  store,
		Config: cfg,
	}

	err = ctx.Run(appCtx)
	if closeErr := store.Close(); closeErr != nil {
		logger.Warn("Failed to close store", "error", closeErr)
	}
	errors.Fatal(err)
}
