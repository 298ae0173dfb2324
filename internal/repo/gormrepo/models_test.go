package gormrepo

import (
	"testing"

	"stageline/internal/domain"
)

func TestRowKeepsWriteModel(t *testing.T) {
	cost := 125000.0
	url := "http://files.test/Site_A/boq.pdf"
	owner := int64(4)
	p := domain.Project{
		ID: 7, Name: "Site A", Status: domain.StatusPM,
		ActualCost: &cost, BOQPDF: &url, PMOwnerID: &owner, WorkScopePM: true,
		CreatedAt: "2024-01-01T00:00:00Z", UpdatedAt: "2024-01-02T08:30:00Z",
	}
	row := toRow(p)
	row.PMOwner = &employeeRow{ID: 4, FirstName: "Malee"}
	v := row.view()
	if v.Name != p.Name || v.Status != p.Status || !v.WorkScopePM {
		t.Fatalf("scalars changed: %+v", v.Project)
	}
	if v.ActualCost == nil || *v.ActualCost != cost || v.BOQPDF == nil || *v.BOQPDF != url {
		t.Fatalf("pointers changed: %+v", v.Project)
	}
	if v.CreatedAt != p.CreatedAt || v.UpdatedAt != p.UpdatedAt {
		t.Fatalf("timestamps changed: %s %s", v.CreatedAt, v.UpdatedAt)
	}
	if v.PMOwner == nil || v.PMOwner.FirstName != "Malee" || v.Surveyor != nil {
		t.Fatalf("joins not mapped: %+v %+v", v.PMOwner, v.Surveyor)
	}
	*row.ActualCost = 1
	if *p.ActualCost != cost {
		t.Fatalf("row aliases the project")
	}
}
