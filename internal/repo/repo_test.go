package repo_test

import (
	"context"
	"errors"
	"testing"

	"stageline/internal/db"
	"stageline/internal/domain"
	"stageline/internal/migrate"
	"stageline/internal/repo"
)

func newRepo(t *testing.T) repo.Repo {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repo.Repo{DB: conn}
}

func TestProjectJoinsReferenceRows(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	empID, err := r.InsertEmployee(ctx, domain.Employee{FirstName: "Somchai", LastName: "Jaidee"})
	if err != nil {
		t.Fatalf("insert employee: %v", err)
	}
	locID, err := r.InsertLocation(ctx, domain.Location{SiteName: "Depot", Activity: "roof"})
	if err != nil {
		t.Fatalf("insert location: %v", err)
	}
	id, err := r.InsertProject(ctx, domain.Project{
		Name:       "Depot roof",
		Status:     domain.StatusSurvey,
		LocationID: &locID,
		SurveyorID: &empID,
		CreatedAt:  "2026-01-02T03:04:05Z",
		UpdatedAt:  "2026-01-02T03:04:05Z",
	})
	if err != nil {
		t.Fatalf("insert project: %v", err)
	}
	v, err := r.GetProject(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if v.Location == nil || v.Location.SiteName != "Depot" {
		t.Fatalf("expected joined location, got %+v", v.Location)
	}
	if v.Surveyor == nil || v.Surveyor.FirstName != "Somchai" {
		t.Fatalf("expected joined surveyor, got %+v", v.Surveyor)
	}
	if v.DesignOwner != nil {
		t.Fatalf("expected no design owner, got %+v", v.DesignOwner)
	}
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	for _, name := range []string{"first", "second"} {
		if _, err := r.InsertProject(ctx, domain.Project{Name: name, Status: domain.StatusSurvey}); err != nil {
			t.Fatalf("insert %s: %v", name, err)
		}
	}
	items, err := r.ListProjects(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 || items[0].Name != "second" {
		t.Fatalf("expected newest first, got %+v", items)
	}
}

func TestUpdateKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	id, err := r.InsertProject(ctx, domain.Project{Name: "Depot", Status: domain.StatusSurvey, CreatedAt: "2026-01-01T00:00:00Z"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	budget := 1500.0
	err = r.UpdateProject(ctx, domain.Project{
		ID: id, Name: "Depot", Status: domain.StatusDesign, Budget: &budget,
		CreatedAt: "2030-01-01T00:00:00Z", UpdatedAt: "2026-02-01T00:00:00Z",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	v, err := r.GetProject(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if v.Status != domain.StatusDesign || v.Budget == nil || *v.Budget != 1500 {
		t.Fatalf("update not applied: %+v", v.Project)
	}
	if v.CreatedAt != "2026-01-01T00:00:00Z" {
		t.Fatalf("created_at changed to %q", v.CreatedAt)
	}
}

func TestMissingProject(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	if _, err := r.GetProject(ctx, 42); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("get: expected ErrNotFound, got %v", err)
	}
	if err := r.UpdateProject(ctx, domain.Project{ID: 42, Name: "x", Status: domain.StatusSurvey}); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("update: expected ErrNotFound, got %v", err)
	}
	if err := r.DeleteProject(ctx, 42); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("delete: expected ErrNotFound, got %v", err)
	}
}
