// Package keyring keeps the database connection string in the OS keyring so it
// never has to live in a config file or shell history.
package keyring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/studyplan/internal/constants"
)

var (
	// ErrNotFound is returned when no credentials are found in the keyring
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Credentials addresses one keyring entry.
type Credentials struct {
	Service string
	User    string
}

// Default returns the entry used for the database connection string.
func Default() Credentials {
	return Credentials{Service: constants.AppName, User: constants.DefaultKeyringUser}
}

// Get returns the stored connection string or ErrNotFound.
func (c Credentials) Get() (string, error) {
	secret, err := keyring.Get(c.Service, c.User)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return secret, nil
}

func (c Credentials) Set(connStr string) error {
	connStr = strings.TrimSpace(connStr)
	if connStr == "" {
		return errors.New("connection string cannot be empty")
	}
	if err := keyring.Set(c.Service, c.User, connStr); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

func (c Credentials) Delete() error {
	if err := keyring.Delete(c.Service, c.User); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// Available is a best-effort probe: a lookup that fails with anything other
// than "not found" means there is no usable keyring backend.
func (c Credentials) Available() bool {
	_, err := keyring.Get(c.Service, "availability-probe")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

// Lookup returns the stored connection string, or "" when none is stored or the
// keyring is unavailable. It is used when resolving the database DSN.
func (c Credentials) Lookup() string {
	secret, err := c.Get()
	if err != nil {
		return ""
	}
	return secret
}
