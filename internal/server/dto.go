package server

import (
	"stageline/internal/app"
	"stageline/internal/domain"
	"stageline/internal/workflow"
)

// Request payloads

// SaveProjectRequest is one form submission. Values carries raw input text
// keyed by field name, Cleared names file fields to empty, and Files maps a
// file field to an upload token returned by POST /uploads.
type SaveProjectRequest struct {
	Action  string            `json:"action,omitempty" enum:"save,forward,complete"`
	Values  map[string]string `json:"values,omitempty"`
	Cleared []string          `json:"cleared,omitempty"`
	Files   map[string]string `json:"files,omitempty"`
}

// Response payloads

// ProjectFields carries the stored columns without domain.Project's methods,
// which huma cannot embed in its schema-linked response types.
type ProjectFields domain.Project

type ProjectResponse struct {
	ProjectFields
	Location       *domain.Location `json:"location,omitempty"`
	Surveyor       *domain.Employee `json:"surveyor,omitempty"`
	ProjectManager *domain.Employee `json:"project_manager,omitempty"`
	DesignOwner    *domain.Employee `json:"design_owner,omitempty"`
	BiddingOwner   *domain.Employee `json:"bidding_owner,omitempty"`
	PMOwner        *domain.Employee `json:"pm_owner,omitempty"`
	StatusLabel  string          `json:"status_label"`
	LocationName string          `json:"location_name,omitempty"`
	Submitter    string          `json:"submitter,omitempty"`
	Actions      []domain.Action `json:"actions"`
}

type EmployeeResponse struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name,omitempty"`
	DisplayName string `json:"display_name"`
}

type LocationResponse struct {
	ID          int64  `json:"id"`
	SiteName    string `json:"site_name"`
	Activity    string `json:"activity,omitempty"`
	DisplayName string `json:"display_name"`
}

type UploadResponse struct {
	Token    string `json:"token" format:"uuid"`
	Filename string `json:"filename"`
}

// Conversion helpers

// projectResponse renders v for role. names are the location display names
// from the full reference list, so shared site names stay distinguishable.
func projectResponse(role domain.Role, v domain.ProjectView, names map[int64]string) ProjectResponse {
	out := ProjectResponse{
		ProjectFields:  ProjectFields(v.Project),
		Location:       v.Location,
		Surveyor:       v.Surveyor,
		ProjectManager: v.ProjectManager,
		DesignOwner:    v.DesignOwner,
		BiddingOwner:   v.BiddingOwner,
		PMOwner:        v.PMOwner,
		StatusLabel:    v.Status.Label(),
		Actions:        workflow.Actions(role, v.Status),
	}
	if v.Location != nil {
		out.LocationName = v.Location.SiteName
		if name, ok := names[v.Location.ID]; ok {
			out.LocationName = name
		}
	}
	if sub := app.Submitter(role, v); sub != nil {
		out.Submitter = sub.DisplayName()
	}
	if out.Actions == nil {
		out.Actions = []domain.Action{}
	}
	return out
}

func mapProjects(role domain.Role, items []domain.ProjectView, names map[int64]string) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(items))
	for _, v := range items {
		out = append(out, projectResponse(role, v, names))
	}
	return out
}

func mapEmployees(items []domain.Employee) []EmployeeResponse {
	out := make([]EmployeeResponse, 0, len(items))
	for _, e := range items {
		out = append(out, EmployeeResponse{
			ID:          e.ID,
			FirstName:   e.FirstName,
			LastName:    e.LastName,
			DisplayName: e.DisplayName(),
		})
	}
	return out
}

func mapLocations(items []domain.Location) []LocationResponse {
	names := domain.DisplayNames(items)
	out := make([]LocationResponse, 0, len(items))
	for _, l := range items {
		out = append(out, LocationResponse{
			ID:          l.ID,
			SiteName:    l.SiteName,
			Activity:    l.Activity,
			DisplayName: names[l.ID],
		})
	}
	return out
}
