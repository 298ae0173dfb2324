package validation_test

import (
	"strings"
	"testing"

	"stageline/internal/domain"
	"stageline/internal/schema"
	"stageline/internal/validation"
)

var registry = schema.NewRegistry(nil)

func check(role domain.Role, action domain.Action, d schema.Draft, existing *domain.Project) validation.Result {
	return validation.Check(validation.Input{
		Role:     role,
		Action:   action,
		Fields:   registry.Fields(role),
		Draft:    d,
		Existing: existing,
	})
}

func ref(i int64) *int64 { return &i }

func TestSaveOnlyNeedsName(t *testing.T) {
	for _, role := range []domain.Role{domain.RoleSurvey, domain.RoleAdmin} {
		res := check(role, domain.ActionSave, schema.Draft{Values: map[string]string{"projectName": "Site A"}}, nil)
		if !res.Valid() {
			t.Fatalf("%s save: unexpected failures %v", role, res.Failures)
		}
	}
	existing := &domain.Project{ID: 1, Name: "Site A", Status: domain.StatusDesign}
	for _, role := range []domain.Role{domain.RoleDesign, domain.RoleAdmin} {
		res := check(role, domain.ActionSave, schema.Draft{}, existing)
		if !res.Valid() {
			t.Fatalf("%s save on existing: unexpected failures %v", role, res.Failures)
		}
	}
}

func TestSaveNewWithoutNameFails(t *testing.T) {
	res := check(domain.RoleSurvey, domain.ActionSave, schema.Draft{Values: map[string]string{"budget": "100"}}, nil)
	if !res.Has(validation.CodeMissingName) {
		t.Fatalf("expected missing name, got %v", res.Failures)
	}
	if res.Has(validation.CodeRequired) {
		t.Fatalf("save must not enforce required fields: %v", res.Failures)
	}
}

func TestForwardRequiresFields(t *testing.T) {
	existing := &domain.Project{ID: 1, Name: "Site A", Status: domain.StatusDesign}
	res := check(domain.RoleDesign, domain.ActionForward, schema.Draft{Values: map[string]string{"design_owner_id": "3"}}, existing)
	if res.Valid() {
		t.Fatalf("expected failure for missing project manager")
	}
	if len(res.Failures) != 1 || res.Failures[0].Field != "project_manager_id" {
		t.Fatalf("unexpected failures %v", res.Failures)
	}
}

func TestStoredValueSatisfiesRequired(t *testing.T) {
	existing := &domain.Project{ID: 1, Name: "Site A", Status: domain.StatusDesign, DesignOwnerID: ref(3), ProjectManagerID: ref(4)}
	res := check(domain.RoleDesign, domain.ActionForward, schema.Draft{Values: map[string]string{"design_owner_id": ""}}, existing)
	if !res.Valid() {
		t.Fatalf("blank resubmission of stored value should pass: %v", res.Failures)
	}
}

func TestSurveyForwardNeedsWorkScope(t *testing.T) {
	d := schema.Draft{Values: map[string]string{
		"projectName":      "Site A",
		"location_id":      "1",
		"constructionType": schema.DefaultConstructionTypes[0],
		"survey_by_id":     "2",
	}}
	res := check(domain.RoleSurvey, domain.ActionForward, d, nil)
	if !res.Has(validation.CodeWorkScope) {
		t.Fatalf("expected work scope failure, got %v", res.Failures)
	}
	if res.Has(validation.CodeRequired) {
		t.Fatalf("required fields were present: %v", res.Failures)
	}

	d.Values["isBudgetEstimated"] = "true"
	if res := check(domain.RoleSurvey, domain.ActionForward, d, nil); !res.Valid() {
		t.Fatalf("budget estimate alone should satisfy work scope: %v", res.Failures)
	}
}

func TestWorkScopeFromStoredRecord(t *testing.T) {
	existing := &domain.Project{
		ID: 1, Name: "Site A", Status: domain.StatusSurvey,
		LocationID: ref(1), SurveyorID: ref(2), WorkScopePM: true,
	}
	ct := schema.DefaultConstructionTypes[1]
	existing.ConstructionType = &ct
	if res := check(domain.RoleSurvey, domain.ActionForward, schema.Draft{}, existing); !res.Valid() {
		t.Fatalf("stored work scope should count: %v", res.Failures)
	}
	res := check(domain.RoleSurvey, domain.ActionForward, schema.Draft{Values: map[string]string{"workScopePM": "false"}}, existing)
	if !res.Has(validation.CodeWorkScope) {
		t.Fatalf("unticked flag should override stored value: %v", res.Failures)
	}
}

func TestPMCompleteWithoutActualDuration(t *testing.T) {
	existing := &domain.Project{ID: 1, Name: "Site A", Status: domain.StatusPM}
	res := check(domain.RolePM, domain.ActionComplete, schema.Draft{Values: map[string]string{"pm_owner_id": "5"}}, existing)
	if !res.Valid() {
		t.Fatalf("actual duration is optional: %v", res.Failures)
	}
}

func TestInvalidValues(t *testing.T) {
	d := schema.Draft{Values: map[string]string{
		"projectName":      "Site A",
		"budget":           "lots",
		"surveyStartDate":  "31/12/2024",
		"constructionType": "Bridge",
	}}
	res := check(domain.RoleSurvey, domain.ActionSave, d, nil)
	count := 0
	for _, f := range res.Failures {
		if f.Code == validation.CodeInvalidValue {
			count++
		}
	}
	if count != 3 {
		t.Fatalf("expected 3 invalid values, got %v", res.Failures)
	}
}

func TestDownstreamRoleCannotRename(t *testing.T) {
	existing := &domain.Project{ID: 1, Name: "Site A", Status: domain.StatusBidding}
	res := check(domain.RoleBidding, domain.ActionSave, schema.Draft{Values: map[string]string{"projectName": "Other"}}, existing)
	if !res.Has(validation.CodeNotEditable) {
		t.Fatalf("expected not editable failure, got %v", res.Failures)
	}
	if !strings.Contains(res.String(), "projectName") {
		t.Fatalf("message should name the field: %s", res.String())
	}
}

func TestRequiredFileFieldsNotPresent(t *testing.T) {
	existing := &domain.Project{ID: 1, Name: "Site A", Status: domain.StatusBidding}
	d := schema.Draft{
		Values: map[string]string{"bidding_owner_id": "1", "actualCost": "0"},
		Files:  map[string]schema.Upload{"boqPDF": {Filename: "boq.pdf", Body: strings.NewReader("x")}},
	}
	if res := check(domain.RoleBidding, domain.ActionForward, d, existing); !res.Valid() {
		t.Fatalf("zero cost is a value and files are optional: %v", res.Failures)
	}
}
