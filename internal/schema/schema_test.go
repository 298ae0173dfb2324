package schema_test

import (
	"testing"

	"stageline/internal/domain"
	"stageline/internal/schema"
)

func TestEveryFieldIsBound(t *testing.T) {
	reg := schema.NewRegistry(nil)
	for _, role := range domain.Roles {
		fields := reg.Fields(role)
		if len(fields) == 0 {
			t.Fatalf("role %s has no fields", role)
		}
		for _, f := range fields {
			if !schema.Bound(f.Name) {
				t.Fatalf("role %s field %s has no binding", role, f.Name)
			}
		}
	}
}

func TestDownstreamSchemasOmitUpstreamOwners(t *testing.T) {
	reg := schema.NewRegistry(nil)
	owners := map[domain.Role]string{
		domain.RoleSurvey:  "survey_by_id",
		domain.RoleDesign:  "design_owner_id",
		domain.RoleBidding: "bidding_owner_id",
		domain.RolePM:      "pm_owner_id",
	}
	order := []domain.Role{domain.RoleSurvey, domain.RoleDesign, domain.RoleBidding, domain.RolePM}
	for i, role := range order {
		for _, upstream := range order[:i] {
			if _, ok := reg.Field(role, owners[upstream]); ok {
				t.Fatalf("%s schema lists upstream owner %s", role, owners[upstream])
			}
		}
	}
}

func TestRequiredFields(t *testing.T) {
	reg := schema.NewRegistry(nil)
	want := map[domain.Role][]string{
		domain.RoleSurvey:  {"projectName", "location_id", "constructionType", "survey_by_id"},
		domain.RoleDesign:  {"design_owner_id", "project_manager_id"},
		domain.RoleBidding: {"bidding_owner_id", "actualCost"},
		domain.RolePM:      {"pm_owner_id"},
		domain.RoleAdmin:   nil,
	}
	for role, names := range want {
		got := reg.Required(role)
		if len(got) != len(names) {
			t.Fatalf("%s required: got %d fields want %d", role, len(got), len(names))
		}
		for i, f := range got {
			if f.Name != names[i] {
				t.Fatalf("%s required[%d]: got %s want %s", role, i, f.Name, names[i])
			}
		}
	}
}

func TestFieldsReturnsCopy(t *testing.T) {
	reg := schema.NewRegistry(nil)
	fields := reg.Fields(domain.RoleSurvey)
	fields[0].Label = "changed"
	if f, _ := reg.Field(domain.RoleSurvey, fields[0].Name); f.Label == "changed" {
		t.Fatalf("registry was mutated through Fields")
	}
}

func TestConfiguredConstructionTypes(t *testing.T) {
	reg := schema.NewRegistry([]string{"Road"})
	f, ok := reg.Field(domain.RoleSurvey, "constructionType")
	if !ok || len(f.Options) != 1 || f.Options[0] != "Road" {
		t.Fatalf("unexpected options %v", f.Options)
	}
	if _, err := schema.Parse(f, "Road"); err != nil {
		t.Fatalf("parse configured option: %v", err)
	}
	if _, err := schema.Parse(f, "New construction"); err == nil {
		t.Fatalf("expected default option to be rejected")
	}
}

func TestParse(t *testing.T) {
	reg := schema.NewRegistry(nil)
	field := func(name string) schema.Field {
		f, ok := reg.Field(domain.RoleSurvey, name)
		if !ok {
			t.Fatalf("missing field %s", name)
		}
		return f
	}

	v, err := schema.Parse(field("budget"), " 1500.5 ")
	if err != nil || v.Number == nil || *v.Number != 1500.5 {
		t.Fatalf("budget: %+v %v", v, err)
	}
	v, err = schema.Parse(field("budget"), "0")
	if err != nil || v.Empty() {
		t.Fatalf("zero must be a value: %+v %v", v, err)
	}
	v, err = schema.Parse(field("budget"), "")
	if err != nil || !v.Empty() {
		t.Fatalf("blank number should be empty: %+v %v", v, err)
	}
	v, err = schema.Parse(field("location_id"), "42")
	if err != nil || v.Ref == nil || *v.Ref != 42 {
		t.Fatalf("location: %+v %v", v, err)
	}
	if _, err := schema.Parse(field("location_id"), "abc"); err == nil {
		t.Fatalf("expected bad reference to fail")
	}
	if _, err := schema.Parse(field("surveyStartDate"), "2024-02-30"); err == nil {
		t.Fatalf("expected bad date to fail")
	}
	for raw, want := range map[string]bool{"on": true, "true": true, "1": true, "off": false, "": false, "false": false} {
		v, err := schema.Parse(field("workScopePM"), raw)
		if err != nil || v.Bool != want {
			t.Fatalf("checkbox %q: %+v %v", raw, v, err)
		}
	}
}

func TestBindingRoundTrip(t *testing.T) {
	reg := schema.NewRegistry(nil)
	var p domain.Project
	inputs := map[string]string{
		"projectName":      "Depot",
		"location_id":      "7",
		"constructionType": "Renovation",
		"budget":           "250000",
		"workScopeDesign":  "on",
		"surveyEndDate":    "2025-01-31",
	}
	for name, raw := range inputs {
		f, _ := reg.Field(domain.RoleSurvey, name)
		v, err := schema.Parse(f, raw)
		if err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		if err := schema.Set(&p, f, v); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}
	if p.Name != "Depot" || p.LocationID == nil || *p.LocationID != 7 || !p.WorkScopeDesign {
		t.Fatalf("unexpected project %+v", p)
	}
	if p.Budget == nil || *p.Budget != 250000 {
		t.Fatalf("budget not bound: %+v", p.Budget)
	}

	f, _ := reg.Field(domain.RoleSurvey, "budget")
	got, err := schema.Get(p, f)
	if err != nil || got.Number == nil || *got.Number != 250000 {
		t.Fatalf("get budget: %+v %v", got, err)
	}

	if err := schema.Set(&p, f, schema.Value{Kind: schema.KindNumber}); err != nil {
		t.Fatalf("clear budget: %v", err)
	}
	if p.Budget != nil {
		t.Fatalf("expected budget cleared")
	}
}

func TestDraftAccessors(t *testing.T) {
	var d schema.Draft
	if _, ok := d.Raw("x"); ok {
		t.Fatalf("nil draft has no values")
	}
	d.Files = map[string]schema.Upload{"boqPDF": {Filename: "a.pdf"}}
	if _, ok := d.Staged("boqPDF"); ok {
		t.Fatalf("upload without body should not count as staged")
	}
}
