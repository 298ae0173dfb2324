package app_test

import (
	"context"
	"errors"
	"io"
	"log"
	"strconv"
	"strings"
	"testing"

	"golang.org/x/text/language"

	"stageline/internal/app"
	"stageline/internal/domain"
	"stageline/internal/engine"
	"stageline/internal/schema"
)

type fakeSource struct {
	projects  []domain.ProjectView
	employees []domain.Employee
	locations []domain.Location
	err       error
}

func (f *fakeSource) List(context.Context) ([]domain.ProjectView, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.projects, nil
}

func (f *fakeSource) Employees(context.Context) ([]domain.Employee, error) { return f.employees, nil }
func (f *fakeSource) Locations(context.Context) ([]domain.Location, error) { return f.locations, nil }

func view(id int64, name string, st domain.Status) domain.ProjectView {
	return domain.ProjectView{Project: domain.Project{ID: id, Name: name, Status: st}}
}

func TestCatalogVisible(t *testing.T) {
	src := &fakeSource{projects: []domain.ProjectView{
		view(3, "Depot roof", domain.StatusDesign),
		view(2, "Harbour office", domain.StatusDesign),
		view(1, "Depot yard", domain.StatusSurvey),
	}}
	c := app.NewCatalog(language.Thai)
	if err := c.Reload(context.Background(), src); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := c.Visible(domain.RoleDesign, ""); len(got) != 2 {
		t.Fatalf("design should see 2, got %d", len(got))
	}
	if got := c.Visible(domain.RoleSurvey, ""); len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("survey sees its own stage: %v", got)
	}
	if got := c.Visible(domain.RolePM, ""); len(got) != 0 {
		t.Fatalf("pm should see nothing, got %d", len(got))
	}
	if got := c.Visible(domain.RoleAdmin, "DEPOT"); len(got) != 2 {
		t.Fatalf("admin search: %v", got)
	}
	if got := c.Visible(domain.RoleAdmin, ""); len(got) != 3 {
		t.Fatalf("admin sees all: %d", len(got))
	}
}

func TestCatalogReloadFailureKeepsSnapshot(t *testing.T) {
	src := &fakeSource{projects: []domain.ProjectView{view(1, "A", domain.StatusSurvey)}}
	c := app.NewCatalog(language.English)
	if err := c.Reload(context.Background(), src); err != nil {
		t.Fatalf("reload: %v", err)
	}
	src.err = errors.New("store offline")
	src.projects = nil
	if err := c.Reload(context.Background(), src); err == nil {
		t.Fatalf("expected reload error")
	}
	if _, ok := c.Project(1); !ok {
		t.Fatalf("previous snapshot lost")
	}
}

func TestCatalogSortsReferenceData(t *testing.T) {
	src := &fakeSource{
		employees: []domain.Employee{{ID: 1, FirstName: "somchai"}, {ID: 2, FirstName: "Anan"}, {ID: 3, FirstName: "malee"}},
		locations: []domain.Location{{ID: 1, SiteName: "Yard"}, {ID: 2, SiteName: "depot"}},
	}
	c := app.NewCatalog(language.English)
	if err := c.Reload(context.Background(), src); err != nil {
		t.Fatalf("reload: %v", err)
	}
	emps := c.Employees()
	if emps[0].FirstName != "Anan" || emps[1].FirstName != "malee" || emps[2].FirstName != "somchai" {
		t.Fatalf("employees not collated: %v", emps)
	}
	if locs := c.Locations(); locs[0].SiteName != "depot" {
		t.Fatalf("locations not collated: %v", locs)
	}
}

func TestSubmitter(t *testing.T) {
	v := view(1, "A", domain.StatusBidding)
	v.Surveyor = &domain.Employee{ID: 1, FirstName: "S"}
	v.DesignOwner = &domain.Employee{ID: 2, FirstName: "D"}
	v.BiddingOwner = &domain.Employee{ID: 3, FirstName: "B"}
	cases := map[domain.Role]int64{domain.RoleDesign: 1, domain.RoleBidding: 2, domain.RolePM: 3}
	for role, want := range cases {
		if got := app.Submitter(role, v); got == nil || got.ID != want {
			t.Fatalf("%s submitter: %+v", role, got)
		}
	}
	if app.Submitter(domain.RoleAdmin, v) != nil {
		t.Fatalf("admin has no submitter")
	}
}

func TestFormRequest(t *testing.T) {
	reg := schema.NewRegistry(nil)
	budget := 900.0
	v := view(4, "Depot", domain.StatusSurvey)
	v.Budget = &budget

	f := app.NewForm(reg, domain.RoleSurvey)
	if got := f.Actions(); len(got) != 2 || got[1] != domain.ActionForward {
		t.Fatalf("new survey form actions: %v", got)
	}
	f.Open(&v)
	if got := f.Value("budget"); got != "900" {
		t.Fatalf("stored value shown as %q", got)
	}
	f.SetValue("budget", "1200")
	if got := f.Value("budget"); got != "1200" {
		t.Fatalf("pending value shown as %q", got)
	}
	f.Stage("boqPDF", "boq.pdf", strings.NewReader("x"))
	f.RemoveFile("boqPDF")

	req := f.Request(domain.ActionForward, "")
	if req.ProjectID != 4 || req.Role != domain.RoleSurvey || req.Action != domain.ActionForward {
		t.Fatalf("unexpected request %+v", req)
	}
	if req.Draft.Values["budget"] != "1200" || !req.Draft.Cleared["boqPDF"] || len(req.Draft.Files) != 0 {
		t.Fatalf("unexpected draft %+v", req.Draft)
	}

	f.Open(nil)
	if f.ProjectID() != 0 || f.Value("budget") != "" {
		t.Fatalf("open(nil) should reset the form")
	}
}

func TestRuntimeSaveReloadsCatalog(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	logger := log.New(io.Discard, "", 0)
	rt, err := app.Open(ctx, dir, logger)
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	defer rt.Close()
	ws := rt.Workspace

	emp, err := ws.AddEmployee(ctx, domain.Employee{FirstName: "Anan"})
	if err != nil {
		t.Fatalf("add employee: %v", err)
	}
	loc, err := ws.AddLocation(ctx, domain.Location{SiteName: "North Yard"})
	if err != nil {
		t.Fatalf("add location: %v", err)
	}
	if len(ws.Catalog.Employees()) != 1 || len(ws.Catalog.Locations()) != 1 {
		t.Fatalf("reference data not reloaded")
	}

	f := app.NewForm(ws.Engine.Registry, domain.RoleSurvey)
	f.SetValue("projectName", "Site A")
	f.SetValue("location_id", strconv.FormatInt(loc.ID, 10))
	f.SetValue("constructionType", "Renovation")
	f.SetValue("survey_by_id", strconv.FormatInt(emp.ID, 10))
	f.SetValue("workScopeBidding", "on")
	f.Stage("biddingPDF", "x.pdf", strings.NewReader("x"))
	if _, err := ws.Save(ctx, f.Request(domain.ActionForward, "")); err == nil {
		t.Fatalf("survey cannot attach a design file")
	}
	if len(ws.Catalog.Visible(domain.RoleAdmin, "")) != 0 {
		t.Fatalf("failed save must not change the catalog")
	}

	f.Open(nil)
	f.SetValue("projectName", "Site A")
	f.SetValue("location_id", strconv.FormatInt(loc.ID, 10))
	f.SetValue("constructionType", "Renovation")
	f.SetValue("survey_by_id", strconv.FormatInt(emp.ID, 10))
	f.SetValue("workScopeBidding", "on")
	v, err := ws.Save(ctx, f.Request(domain.ActionForward, ""))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	got := ws.Catalog.Visible(domain.RoleDesign, "")
	if len(got) != 1 || got[0].ID != v.ID {
		t.Fatalf("design queue not refreshed: %v", got)
	}

	err = ws.Delete(ctx, engine.DeleteRequest{Role: domain.RoleAdmin, ProjectID: v.ID, Secret: rt.Config.Access.Secret, Confirmed: true})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(ws.Catalog.Visible(domain.RoleAdmin, "")) != 0 {
		t.Fatalf("catalog still lists deleted project")
	}
}
