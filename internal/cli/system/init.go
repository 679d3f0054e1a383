package system

import (
	"context"
	"fmt"
	"os"

	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/storage/sqlite"
)

type InitCmd struct {
	Force bool `help:"Delete an existing SQLite database before initializing."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if _, ok := ctx.Store.(*sqlite.Store); !ok {
			return fmt.Errorf("--force is only supported for SQLite storage")
		}
		dbPath := ctx.Store.GetConfigPath()
		if _, err := os.Stat(dbPath); err == nil {
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			fmt.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}

	// Overlay scheduler values from the config file onto the stored settings.
	if ctx.Config != nil {
		bg := context.Background()
		settings, err := ctx.Store.GetSettings(bg)
		if err != nil {
			return fmt.Errorf("failed to read settings: %w", err)
		}
		seeded := ctx.Config.Scheduler.Seed(settings)
		if seeded != settings {
			if err := ctx.Store.SaveSettings(bg, seeded); err != nil {
				return fmt.Errorf("failed to save settings: %w", err)
			}
			fmt.Println("Applied scheduler settings from config file.")
		}
	}

	fmt.Printf("Initialized studyplan storage at: %s\n", ctx.Store.GetConfigPath())
	return nil
}
