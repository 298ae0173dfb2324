package app

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"stageline/internal/domain"
)

// Source is what a Catalog reloads from.
type Source interface {
	List(ctx context.Context) ([]domain.ProjectView, error)
	Employees(ctx context.Context) ([]domain.Employee, error)
	Locations(ctx context.Context) ([]domain.Location, error)
}

// Catalog is the process-wide snapshot of projects and dropdown data. It is
// only ever replaced wholesale by Reload.
type Catalog struct {
	mu        sync.RWMutex
	lang      language.Tag
	projects  []domain.ProjectView
	employees []domain.Employee
	locations []domain.Location
}

func NewCatalog(lang language.Tag) *Catalog {
	return &Catalog{lang: lang}
}

// Reload refetches everything from src. On error the previous snapshot stays.
func (c *Catalog) Reload(ctx context.Context, src Source) error {
	projects, err := src.List(ctx)
	if err != nil {
		return err
	}
	employees, err := src.Employees(ctx)
	if err != nil {
		return err
	}
	locations, err := src.Locations(ctx)
	if err != nil {
		return err
	}
	col := collate.New(c.lang, collate.IgnoreCase)
	col.Sort(employeeList(employees))
	col.Sort(locationList(locations))

	c.mu.Lock()
	c.projects = projects
	c.employees = employees
	c.locations = locations
	c.mu.Unlock()
	return nil
}

// Visible lists what role sees on its landing page. Admin sees every project,
// optionally narrowed by a case-insensitive name search; other roles see the
// projects waiting at their own stage.
func (c *Catalog) Visible(role domain.Role, search string) []domain.ProjectView {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []domain.ProjectView
	if role == domain.RoleAdmin {
		needle := strings.ToLower(strings.TrimSpace(search))
		for _, p := range c.projects {
			if needle == "" || strings.Contains(strings.ToLower(p.Name), needle) {
				out = append(out, p)
			}
		}
		return out
	}
	stage, ok := role.Stage()
	if !ok {
		return nil
	}
	for _, p := range c.projects {
		if p.Status == stage {
			out = append(out, p)
		}
	}
	return out
}

// Project returns the cached view for id.
func (c *Catalog) Project(id int64) (domain.ProjectView, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.projects {
		if p.ID == id {
			return p, true
		}
	}
	return domain.ProjectView{}, false
}

func (c *Catalog) Employees() []domain.Employee {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Employee(nil), c.employees...)
}

func (c *Catalog) Locations() []domain.Location {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Location(nil), c.locations...)
}

// Submitter is the upstream owner a team sees next to each project: whoever
// handed it over from the previous stage.
func Submitter(role domain.Role, v domain.ProjectView) *domain.Employee {
	switch role {
	case domain.RoleDesign:
		return v.Surveyor
	case domain.RoleBidding:
		return v.DesignOwner
	case domain.RolePM:
		return v.BiddingOwner
	}
	return nil
}

type employeeList []domain.Employee

func (l employeeList) Len() int           { return len(l) }
func (l employeeList) Swap(i, j int)      { l[i], l[j] = l[j], l[i] }
func (l employeeList) Bytes(i int) []byte { return []byte(l[i].DisplayName()) }

type locationList []domain.Location

func (l locationList) Len() int           { return len(l) }
func (l locationList) Swap(i, j int)      { l[i], l[j] = l[j], l[i] }
func (l locationList) Bytes(i int) []byte { return []byte(l[i].SiteName + " " + l[i].Activity) }
