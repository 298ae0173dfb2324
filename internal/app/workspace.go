package app

import (
	"context"
	"log"

	"stageline/internal/domain"
	"stageline/internal/engine"
)

// Workspace pairs the engine with the catalog it feeds. Mutations go through
// here so the catalog is refetched after each one that succeeds, and left
// alone after each one that fails.
type Workspace struct {
	Engine  engine.Engine
	Catalog *Catalog
	Logger  *log.Logger
}

func (w *Workspace) logger() *log.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return log.Default()
}

func (w *Workspace) Reload(ctx context.Context) error {
	if err := w.Catalog.Reload(ctx, w.Engine); err != nil {
		w.logger().Printf("reload catalog: %v", err)
		return err
	}
	return nil
}

func (w *Workspace) Save(ctx context.Context, req engine.SaveRequest) (domain.ProjectView, error) {
	v, err := w.Engine.Save(ctx, req)
	if err != nil {
		return domain.ProjectView{}, err
	}
	action := req.Action
	if action == "" {
		action = domain.ActionSave
	}
	w.logger().Printf("project %d %s by %s, status %s", v.ID, action, req.Role, v.Status)
	_ = w.Reload(ctx)
	return v, nil
}

func (w *Workspace) Delete(ctx context.Context, req engine.DeleteRequest) error {
	if err := w.Engine.Delete(ctx, req); err != nil {
		return err
	}
	w.logger().Printf("project %d deleted by %s", req.ProjectID, req.Role)
	_ = w.Reload(ctx)
	return nil
}

func (w *Workspace) AddEmployee(ctx context.Context, e domain.Employee) (domain.Employee, error) {
	e, err := w.Engine.AddEmployee(ctx, e)
	if err != nil {
		return domain.Employee{}, err
	}
	_ = w.Reload(ctx)
	return e, nil
}

func (w *Workspace) AddLocation(ctx context.Context, l domain.Location) (domain.Location, error) {
	l, err := w.Engine.AddLocation(ctx, l)
	if err != nil {
		return domain.Location{}, err
	}
	_ = w.Reload(ctx)
	return l, nil
}
