package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stageline/internal/access"
	"stageline/internal/assemble"
	"stageline/internal/config"
	"stageline/internal/domain"
	"stageline/internal/repo"
	"stageline/internal/schema"
	"stageline/internal/storage"
	"stageline/internal/validation"
	"stageline/internal/workflow"
)

// Store is the persistence boundary. Implementations return repo.ErrNotFound
// for missing rows.
type Store interface {
	ListProjects(ctx context.Context) ([]domain.ProjectView, error)
	GetProject(ctx context.Context, id int64) (domain.ProjectView, error)
	InsertProject(ctx context.Context, p domain.Project) (int64, error)
	UpdateProject(ctx context.Context, p domain.Project) error
	DeleteProject(ctx context.Context, id int64) error
	ListEmployees(ctx context.Context) ([]domain.Employee, error)
	ListLocations(ctx context.Context) ([]domain.Location, error)
	InsertEmployee(ctx context.Context, e domain.Employee) (int64, error)
	InsertLocation(ctx context.Context, l domain.Location) (int64, error)
}

// ValidationError carries every failure found in a draft. Nothing was
// uploaded or written.
type ValidationError struct {
	Result validation.Result
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Result.String()
}

// PersistenceError wraps a store failure with the operation that hit it.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

type Engine struct {
	Store    Store
	Objects  storage.Uploader
	Registry schema.Registry
	Gate     access.Gate
	Now      func() time.Time
}

func New(store Store, objects storage.Uploader, cfg *config.Config) (Engine, error) {
	gate, err := access.NewGate(cfg.Access.Secret)
	if err != nil {
		return Engine{}, err
	}
	return Engine{
		Store:    store,
		Objects:  objects,
		Registry: schema.NewRegistry(cfg.Types()),
		Gate:     gate,
		Now:      time.Now,
	}, nil
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// SaveRequest is one form submission. ProjectID zero creates a project.
type SaveRequest struct {
	Role      domain.Role
	Action    domain.Action
	ProjectID int64
	Draft     schema.Draft
	Secret    string
}

// Save applies a submission: it checks who may act, computes the next status,
// validates, uploads staged files and writes the record. Every check runs
// before the first upload, and nothing is written if an upload fails.
func (e Engine) Save(ctx context.Context, req SaveRequest) (domain.ProjectView, error) {
	action := req.Action
	if action == "" {
		action = domain.ActionSave
	}

	var (
		existing *domain.ProjectView
		current  domain.Status
	)
	if req.ProjectID == 0 {
		if err := e.Gate.AuthorizeCreate(req.Role, req.Secret); err != nil {
			return domain.ProjectView{}, err
		}
		st, err := workflow.Initial(req.Role)
		if err != nil {
			return domain.ProjectView{}, err
		}
		current = st
	} else {
		v, err := e.Store.GetProject(ctx, req.ProjectID)
		if err != nil {
			return domain.ProjectView{}, err
		}
		if err := workflow.CanEdit(req.Role, v.Status); err != nil {
			return domain.ProjectView{}, err
		}
		existing = &v
		current = v.Status
	}

	next, err := workflow.Next(req.Role, action, current)
	if err != nil {
		return domain.ProjectView{}, err
	}

	fields := e.Registry.Fields(req.Role)
	in := validation.Input{Role: req.Role, Action: action, Fields: fields, Draft: req.Draft}
	if existing != nil {
		in.Existing = &existing.Project
	}
	if res := validation.Check(in); !res.Valid() {
		return domain.ProjectView{}, &ValidationError{Result: res}
	}

	p, err := assemble.Assembler{Uploader: e.Objects}.Assemble(ctx, assemble.Input{
		Fields:   fields,
		Existing: existing,
		Draft:    req.Draft,
		Next:     next,
	})
	if err != nil {
		return domain.ProjectView{}, err
	}

	now := e.now().UTC().Format(time.RFC3339)
	p.UpdatedAt = now
	id := p.ID
	if existing == nil {
		p.CreatedAt = now
		id, err = e.Store.InsertProject(ctx, p)
		if err != nil {
			return domain.ProjectView{}, &PersistenceError{Op: "insert project", Err: err}
		}
	} else if err := e.Store.UpdateProject(ctx, p); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return domain.ProjectView{}, err
		}
		return domain.ProjectView{}, &PersistenceError{Op: "update project", Err: err}
	}
	v, err := e.Store.GetProject(ctx, id)
	if err != nil {
		// The write is committed. Report it without the joined reference rows.
		p.ID = id
		return domain.ProjectView{Project: p}, nil
	}
	return v, nil
}

// DeleteRequest removes a project once the access gate lets it through.
type DeleteRequest struct {
	Role      domain.Role
	ProjectID int64
	Secret    string
	Confirmed bool
}

func (e Engine) Delete(ctx context.Context, req DeleteRequest) error {
	v, err := e.Store.GetProject(ctx, req.ProjectID)
	if err != nil {
		return err
	}
	if err := e.Gate.AuthorizeDelete(req.Role, v.Project, req.Secret, req.Confirmed); err != nil {
		return err
	}
	if err := e.Store.DeleteProject(ctx, req.ProjectID); err != nil {
		return &PersistenceError{Op: "delete project", Err: err}
	}
	return nil
}

func (e Engine) List(ctx context.Context) ([]domain.ProjectView, error) {
	return e.Store.ListProjects(ctx)
}

func (e Engine) Get(ctx context.Context, id int64) (domain.ProjectView, error) {
	return e.Store.GetProject(ctx, id)
}

func (e Engine) Employees(ctx context.Context) ([]domain.Employee, error) {
	return e.Store.ListEmployees(ctx)
}

func (e Engine) Locations(ctx context.Context) ([]domain.Location, error) {
	return e.Store.ListLocations(ctx)
}

func (e Engine) AddEmployee(ctx context.Context, emp domain.Employee) (domain.Employee, error) {
	emp.FirstName = strings.TrimSpace(emp.FirstName)
	emp.LastName = strings.TrimSpace(emp.LastName)
	if emp.FirstName == "" {
		return domain.Employee{}, errors.New("first name is required")
	}
	id, err := e.Store.InsertEmployee(ctx, emp)
	if err != nil {
		return domain.Employee{}, &PersistenceError{Op: "insert employee", Err: err}
	}
	emp.ID = id
	return emp, nil
}

func (e Engine) AddLocation(ctx context.Context, loc domain.Location) (domain.Location, error) {
	loc.SiteName = strings.TrimSpace(loc.SiteName)
	loc.Activity = strings.TrimSpace(loc.Activity)
	if loc.SiteName == "" {
		return domain.Location{}, errors.New("site name is required")
	}
	id, err := e.Store.InsertLocation(ctx, loc)
	if err != nil {
		return domain.Location{}, &PersistenceError{Op: "insert location", Err: err}
	}
	loc.ID = id
	return loc, nil
}

// Schema returns the fields role edits.
func (e Engine) Schema(role domain.Role) []schema.Field {
	return e.Registry.Fields(role)
}
