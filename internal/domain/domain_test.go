package domain_test

import (
	"testing"

	"stageline/internal/domain"
)

func TestDisplayNamesQualifiesDuplicates(t *testing.T) {
	got := domain.DisplayNames([]domain.Location{
		{ID: 1, SiteName: "North Yard", Activity: "Storage"},
		{ID: 2, SiteName: "North Yard", Activity: "Office"},
		{ID: 3, SiteName: "Harbour"},
	})
	if got[1] != "North Yard (Storage)" || got[2] != "North Yard (Office)" {
		t.Fatalf("duplicates not qualified: %v", got)
	}
	if got[3] != "Harbour" {
		t.Fatalf("unique site changed: %q", got[3])
	}
}

func TestEmployeeName(t *testing.T) {
	if got := domain.EmployeeName(nil); got != "-" {
		t.Fatalf("nil employee: %q", got)
	}
	if got := domain.EmployeeName(&domain.Employee{FirstName: "Somchai"}); got != "Somchai" {
		t.Fatalf("first name only: %q", got)
	}
}

func TestParseEnums(t *testing.T) {
	if _, err := domain.ParseStatus("archived"); err == nil {
		t.Fatalf("expected unknown status to fail")
	}
	if _, err := domain.ParseRole("guest"); err == nil {
		t.Fatalf("expected unknown role to fail")
	}
	if a, err := domain.ParseAction(""); err != nil || a != domain.ActionSave {
		t.Fatalf("blank action: %s %v", a, err)
	}
	if domain.StatusPM.Label() == string(domain.StatusPM) {
		t.Fatalf("pm status has no label")
	}
}

func TestCloneSharesNoPointers(t *testing.T) {
	budget := 10.0
	p := domain.Project{Name: "A", Budget: &budget}
	c := p.Clone()
	*c.Budget = 20
	if *p.Budget != 10 {
		t.Fatalf("clone shares budget pointer")
	}
}
