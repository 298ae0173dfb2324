// Package schema declares which form fields each role edits and how raw
// form values bind onto a project record.
package schema

import (
	"stageline/internal/domain"
)

// Kind is the input type of a field.
type Kind string

const (
	KindText     Kind = "text"
	KindNumber   Kind = "number"
	KindDate     Kind = "date"
	KindSelect   Kind = "select"
	KindCheckbox Kind = "checkbox"
	KindFile     Kind = "file"
)

// Source names the reference list a select draws its options from.
type Source string

const (
	SourceEmployees Source = "employees"
	SourceLocations Source = "locations"
)

const GroupWorkScope = "workScope"

// Field names referenced outside the registry table.
const (
	FieldProjectName       = "projectName"
	FieldIsBudgetEstimated = "isBudgetEstimated"
	FieldWorkScopeDesign   = "workScopeDesign"
	FieldWorkScopeBidding  = "workScopeBidding"
	FieldWorkScopePM       = "workScopePM"
)

type Field struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Kind     Kind     `json:"type" enum:"text,number,date,select,checkbox,file"`
	Required bool     `json:"required"`
	Source   Source   `json:"source,omitempty"`
	Options  []string `json:"options,omitempty"`
	Group    string   `json:"group,omitempty"`
	Accept   string   `json:"accept,omitempty"`
}

// DefaultConstructionTypes is used when the config does not list any.
var DefaultConstructionTypes = []string{
	"New construction",
	"Renovation",
	"Change order to existing contract",
}

const fileHint = " (English file name, no spaces)"

// Registry holds the ordered field list for every role.
type Registry struct {
	byRole map[domain.Role][]Field
}

func NewRegistry(constructionTypes []string) Registry {
	if len(constructionTypes) == 0 {
		constructionTypes = DefaultConstructionTypes
	}
	types := append([]string(nil), constructionTypes...)
	return Registry{byRole: map[domain.Role][]Field{
		domain.RoleSurvey: {
			{Name: FieldProjectName, Label: "Project name", Kind: KindText, Required: true},
			{Name: "location_id", Label: "Location", Kind: KindSelect, Source: SourceLocations, Required: true},
			{Name: "constructionType", Label: "Construction type", Kind: KindSelect, Options: types, Required: true},
			{Name: "surveyStartDate", Label: "Construction start date", Kind: KindDate},
			{Name: "surveyEndDate", Label: "Construction end date", Kind: KindDate},
			{Name: "plannedDuration", Label: "Planned duration (days)", Kind: KindNumber},
			{Name: FieldIsBudgetEstimated, Label: "Budget estimate", Kind: KindCheckbox, Group: GroupWorkScope},
			{Name: FieldWorkScopeDesign, Label: "Design", Kind: KindCheckbox, Group: GroupWorkScope},
			{Name: FieldWorkScopeBidding, Label: "Bidding", Kind: KindCheckbox, Group: GroupWorkScope},
			{Name: FieldWorkScopePM, Label: "Project management", Kind: KindCheckbox, Group: GroupWorkScope},
			{Name: "budget", Label: "Budget", Kind: KindNumber},
			{Name: "survey_by_id", Label: "Filled in by", Kind: KindSelect, Source: SourceEmployees, Required: true},
		},
		domain.RoleDesign: {
			{Name: "design_owner_id", Label: "Filled in by", Kind: KindSelect, Source: SourceEmployees, Required: true},
			{Name: "project_manager_id", Label: "Project manager", Kind: KindSelect, Source: SourceEmployees, Required: true},
			{Name: "biddingPDF", Label: "Bidding drawings (.pdf)" + fileHint, Kind: KindFile, Accept: ".pdf"},
		},
		domain.RoleBidding: {
			{Name: "bidding_owner_id", Label: "Filled in by", Kind: KindSelect, Source: SourceEmployees, Required: true},
			{Name: "actualCost", Label: "Actual construction cost", Kind: KindNumber, Required: true},
			{Name: "boqPDF", Label: "BOQ (.pdf)" + fileHint, Kind: KindFile, Accept: ".pdf"},
			{Name: "projectImage", Label: "Project image" + fileHint, Kind: KindFile, Accept: "image/*"},
			{Name: "constructionPDF", Label: "Construction drawings (.pdf)" + fileHint, Kind: KindFile, Accept: ".pdf"},
			{Name: "rvtModel", Label: "3D construction model (.rvt)" + fileHint, Kind: KindFile, Accept: ".rvt"},
			{Name: "ifcModel", Label: "3D model (.ifc)" + fileHint, Kind: KindFile, Accept: ".ifc"},
		},
		domain.RolePM: {
			{Name: "pm_owner_id", Label: "Filled in by", Kind: KindSelect, Source: SourceEmployees, Required: true},
			{Name: "actualDuration", Label: "Actual construction duration (days)", Kind: KindNumber},
			{Name: "asBuiltPDF", Label: "As-built drawings (.pdf)" + fileHint, Kind: KindFile, Accept: ".pdf"},
		},
		domain.RoleAdmin: {
			{Name: FieldProjectName, Label: "Project name", Kind: KindText},
			{Name: "location_id", Label: "Location", Kind: KindSelect, Source: SourceLocations},
			{Name: "project_manager_id", Label: "Project manager", Kind: KindSelect, Source: SourceEmployees},
			{Name: "survey_by_id", Label: "Filled in by (survey)", Kind: KindSelect, Source: SourceEmployees},
			{Name: "design_owner_id", Label: "Filled in by (design)", Kind: KindSelect, Source: SourceEmployees},
			{Name: "bidding_owner_id", Label: "Filled in by (bidding)", Kind: KindSelect, Source: SourceEmployees},
			{Name: "pm_owner_id", Label: "Filled in by (PM)", Kind: KindSelect, Source: SourceEmployees},
			{Name: "budget", Label: "Budget", Kind: KindNumber},
			{Name: "actualCost", Label: "Actual construction cost", Kind: KindNumber},
			{Name: "constructionType", Label: "Construction type", Kind: KindSelect, Options: types},
			{Name: "surveyStartDate", Label: "Construction start date", Kind: KindDate},
			{Name: "surveyEndDate", Label: "Construction end date", Kind: KindDate},
			{Name: FieldIsBudgetEstimated, Label: "Scope: budget estimate", Kind: KindCheckbox},
			{Name: FieldWorkScopeDesign, Label: "Scope: design", Kind: KindCheckbox},
			{Name: FieldWorkScopeBidding, Label: "Scope: bidding", Kind: KindCheckbox},
			{Name: FieldWorkScopePM, Label: "Scope: project management", Kind: KindCheckbox},
			{Name: "startDate", Label: "Start date (PM)", Kind: KindDate},
			{Name: "plannedDuration", Label: "Planned duration (days)", Kind: KindNumber},
			{Name: "actualDuration", Label: "Actual construction duration (days)", Kind: KindNumber},
			{Name: "biddingPDF", Label: "Bidding drawings (.pdf)" + fileHint, Kind: KindFile, Accept: ".pdf"},
			{Name: "constructionPDF", Label: "Construction drawings (.pdf)" + fileHint, Kind: KindFile, Accept: ".pdf"},
			{Name: "rvtModel", Label: "3D construction model (.rvt)" + fileHint, Kind: KindFile, Accept: ".rvt"},
			{Name: "ifcModel", Label: "3D model (.ifc)" + fileHint, Kind: KindFile, Accept: ".ifc"},
			{Name: "boqPDF", Label: "BOQ (.pdf)" + fileHint, Kind: KindFile, Accept: ".pdf"},
			{Name: "projectImage", Label: "Project image" + fileHint, Kind: KindFile, Accept: "image/*"},
			{Name: "asBuiltPDF", Label: "As-built drawings (.pdf)" + fileHint, Kind: KindFile, Accept: ".pdf"},
		},
	}}
}

// Fields returns a copy of the ordered field list for role.
func (r Registry) Fields(role domain.Role) []Field {
	return append([]Field(nil), r.byRole[role]...)
}

func (r Registry) Required(role domain.Role) []Field {
	var out []Field
	for _, f := range r.byRole[role] {
		if f.Required {
			out = append(out, f)
		}
	}
	return out
}

// Field looks up a single descriptor in role's schema.
func (r Registry) Field(role domain.Role, name string) (Field, bool) {
	for _, f := range r.byRole[role] {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
