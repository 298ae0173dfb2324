package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"stageline/internal/config"
	"stageline/internal/db"
	"stageline/internal/engine"
	"stageline/internal/migrate"
	"stageline/internal/repo"
	"stageline/internal/repo/gormrepo"
	"stageline/internal/storage"
)

// Runtime is everything a command or server needs, opened from a workspace.
type Runtime struct {
	Config    *config.Config
	Env       config.Env
	Objects   *storage.BoltStore
	Workspace *Workspace
	closers   []func() error
}

// Open resolves the workspace config (file, then environment), connects the
// configured store, opens the object store and loads the catalog.
func Open(ctx context.Context, workspace string, logger *log.Logger) (*Runtime, error) {
	cfg, err := config.LoadOptional(workspace)
	if err != nil {
		return nil, err
	}
	return OpenConfig(ctx, workspace, cfg, logger)
}

// OpenConfig is Open with the config file already loaded.
func OpenConfig(ctx context.Context, workspace string, cfg *config.Config, logger *log.Logger) (*Runtime, error) {
	if logger == nil {
		logger = log.Default()
	}
	env, err := config.ParseEnv()
	if err != nil {
		return nil, err
	}
	if err := cfg.Apply(env); err != nil {
		return nil, err
	}
	rt := &Runtime{Config: cfg, Env: env}

	store, err := rt.openStore(workspace, logger)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	if _, err := db.EnsureWorkspace(workspace); err != nil {
		_ = rt.Close()
		return nil, err
	}
	objects, err := storage.OpenBolt(db.ObjectsPath(workspace), cfg.Storage.Bucket, cfg.Storage.PublicBaseURL)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.Objects = objects
	rt.closers = append(rt.closers, objects.Close)

	ttl, err := cfg.StagedTTL()
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	if n, err := objects.PurgeStaged(ctx, ttl); err != nil {
		logger.Printf("purge staged uploads: %v", err)
	} else if n > 0 {
		logger.Printf("purged %d stale staged uploads", n)
	}

	eng, err := engine.New(store, objects, cfg)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.Workspace = &Workspace{Engine: eng, Catalog: NewCatalog(cfg.Language()), Logger: logger}
	if err := rt.Workspace.Reload(ctx); err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return rt, nil
}

func (rt *Runtime) openStore(workspace string, logger *log.Logger) (engine.Store, error) {
	switch rt.Config.Database.Driver {
	case config.DriverPostgres:
		s, err := gormrepo.Open(rt.Config.Database.DSN, 10, logger)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, s.Close)
		return s, nil
	default:
		conn, err := OpenSQLite(workspace)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, conn.Close)
		return repo.Repo{DB: conn}, nil
	}
}

// OpenSQLite opens the workspace database and applies migrations.
func OpenSQLite(workspace string) (*sql.DB, error) {
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return nil, err
	}
	if err := migrate.Migrate(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

func (rt *Runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}
