// Package cli holds the state shared by the studyplan commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/studyplan/internal/backup"
	"github.com/julianstephens/studyplan/internal/config"
	"github.com/julianstephens/studyplan/internal/constants"
	"github.com/julianstephens/studyplan/internal/keyring"
	"github.com/julianstephens/studyplan/internal/planner"
	"github.com/julianstephens/studyplan/internal/storage"
	"github.com/julianstephens/studyplan/internal/storage/postgres"
	"github.com/julianstephens/studyplan/internal/storage/sqlite"
	"github.com/julianstephens/studyplan/internal/utils"
)

type Context struct {
	Store  storage.Provider
	Config *config.Config
	// Clock is nil outside tests.
	Clock utils.Clock
}

func (c *Context) clock() utils.Clock {
	if c.Clock == nil {
		return utils.SystemClock{}
	}
	return c.Clock
}

// Now returns the command clock's current time.
func (c *Context) Now() time.Time {
	return c.clock().Now()
}

// Location is the configured study timezone, falling back to the machine's
// local zone when settings cannot be read.
func (c *Context) Location() *time.Location {
	settings, err := c.Store.GetSettings(context.Background())
	if err != nil {
		return time.Local
	}
	loc, err := utils.LocationFromSettings(settings)
	if err != nil {
		return time.Local
	}
	return loc
}

// Backups returns the backup manager for a SQLite store, or nil for PostgreSQL.
func (c *Context) Backups() *backup.Manager {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return nil
	}
	return backup.NewManager(c.Store.GetConfigPath(), c.clock())
}

// Planner builds the planner service over the loaded store.
func (c *Context) Planner(opts ...planner.Option) *planner.Service {
	base := []planner.Option{planner.WithClock(c.clock())}
	if mgr := c.Backups(); mgr != nil {
		base = append(base, planner.WithBackups(mgr))
	}
	return planner.New(c.Store, append(base, opts...)...)
}

// DSNSource records where a connection string came from. Only sources that are
// written to disk or shell history must be free of passwords.
type DSNSource int

const (
	SourceDefault DSNSource = iota
	SourceFlag
	SourceEnv
	SourceConfigFile
	SourceKeyring
)

func (s DSNSource) String() string {
	switch s {
	case SourceFlag:
		return "flag"
	case SourceEnv:
		return "environment"
	case SourceConfigFile:
		return "config file"
	case SourceKeyring:
		return "keyring"
	default:
		return "default"
	}
}

func (s DSNSource) mustBeCredentialFree() bool {
	return s == SourceFlag || s == SourceConfigFile
}

// ResolveDSN picks the database location: --db flag, then the environment, then
// the config file, then the OS keyring, then the default SQLite path.
func ResolveDSN(flagDSN string, cfg *config.Config, creds keyring.Credentials) (string, DSNSource) {
	if flagDSN != "" {
		return flagDSN, SourceFlag
	}
	if v := os.Getenv(constants.EnvDBConnection); v != "" {
		return v, SourceEnv
	}
	if cfg != nil && cfg.Database.DSN != "" && cfg.Database.DSN != constants.DefaultConfigPath {
		return cfg.Database.DSN, SourceConfigFile
	}
	if v := creds.Lookup(); v != "" {
		return v, SourceKeyring
	}
	return constants.DefaultConfigPath, SourceDefault
}

// NewStore opens the provider for dsn without loading it.
func NewStore(dsn string, source DSNSource) (storage.Provider, error) {
	if config.IsPostgresDSN(dsn) {
		if source.mustBeCredentialFree() {
			if _, err := postgres.ValidateConnString(dsn); err != nil {
				return nil, fmt.Errorf("%s connection string rejected: %w", source, err)
			}
		}
		return postgres.New(dsn), nil
	}
	return sqlite.NewStore(config.ExpandPath(dsn)), nil
}

// MaskPassword hides the password of a PostgreSQL connection string for display.
func MaskPassword(connStr string) string {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		idx := strings.Index(connStr, "://")
		remaining := connStr[idx+3:]
		if atIdx := strings.LastIndex(remaining, "@"); atIdx != -1 {
			userInfo := remaining[:atIdx]
			if colonIdx := strings.Index(userInfo, ":"); colonIdx != -1 {
				return connStr[:idx+3] + userInfo[:colonIdx] + ":****" + connStr[idx+3+atIdx:]
			}
		}
		return connStr
	}

	if strings.Contains(connStr, "password=") {
		parts := strings.Fields(connStr)
		for i, part := range parts {
			if strings.HasPrefix(part, "password=") {
				parts[i] = "password=****"
			}
		}
		return strings.Join(parts, " ")
	}
	return connStr
}

// ParseTime accepts RFC3339, "YYYY-MM-DD HH:MM" or a bare date in loc.
func ParseTime(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	if value == "now" {
		return time.Now().In(loc), nil
	}
	return utils.ParseInstant(value, loc)
}

// ParseOptionalTime is ParseTime for optional flags; empty yields nil.
func ParseOptionalTime(value string, loc *time.Location) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := ParseTime(value, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
