package backend

import (
	"fmt"

	"pokerledger/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	types := make([]Type, 0, len(appConfig.DataBackends))
	for _, name := range appConfig.DataBackends {
		t := Type(name)
		if !t.IsValid() {
			return Config{}, fmt.Errorf("invalid backend type in config: %s", name)
		}
		types = append(types, t)
	}
	if len(types) == 0 {
		return Config{}, fmt.Errorf("no data backends configured")
	}

	return Config{
		Types:         types,
		SQLiteDBPath:  appConfig.SQLiteDBPath,
		SheetDBAPIURL: appConfig.SheetDBAPIURL,
		SheetDBAPIKey: appConfig.SheetDBAPIKey,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if len(c.Types) == 0 {
		return fmt.Errorf("no backend types configured")
	}
	for _, t := range c.Types {
		if !t.IsValid() {
			return fmt.Errorf("invalid backend type: %s", t)
		}
		switch t {
		case LocalBackend:
			if c.SQLiteDBPath == "" {
				return fmt.Errorf("SQLite database path is required for local backend")
			}
		case SheetDBBackend:
			if c.SheetDBAPIURL == "" {
				return fmt.Errorf("SheetDB API URL is required for sheetdb backend")
			}
		case SheetsBackend:
			// Credentials are read from the environment at creation time.
		}
	}
	return nil
}
