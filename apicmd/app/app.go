// Package app wires configuration, storage, and the session store together
// for the CLI commands and the MCP service.
package app

import (
	"fmt"
	"path/filepath"

	"github.com/gcnwokike/API-Commander/apicmd/config"
	"github.com/gcnwokike/API-Commander/apicmd/session"
	"github.com/gcnwokike/API-Commander/apicmd/storage"
)

// App is an opened workspace: resolved config plus the session store backed
// by the on-disk record directory.
type App struct {
	Config   *config.Config
	Sessions *session.Store

	backing storage.Storage
}

// Open loads the config (creating defaults when absent) and opens the
// session store. Callers must Close to release the directory lock.
func Open() (*App, error) {
	cfg := config.LoadOrDefault(config.DefaultConfigPath())

	backing, err := storage.NewFileStorage(filepath.Join(cfg.DataDir, "sessions"))
	if err != nil {
		return nil, fmt.Errorf("open session storage: %w", err)
	}

	store, err := session.NewStore(backing, cfg.NameTruncate)
	if err != nil {
		_ = backing.Close()
		return nil, fmt.Errorf("open session store: %w", err)
	}

	return &App{Config: cfg, Sessions: store, backing: backing}, nil
}

// Close releases the storage lock.
func (a *App) Close() error {
	return a.backing.Close()
}
