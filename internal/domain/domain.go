package domain

import (
	"fmt"
	"strings"
)

// Status is the workflow stage a project currently sits in.
type Status string

const (
	StatusSurvey  Status = "survey"
	StatusDesign  Status = "design"
	StatusBidding Status = "bidding"
	StatusPM      Status = "pm"
	StatusClosed  Status = "closed"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{StatusSurvey, StatusDesign, StatusBidding, StatusPM, StatusClosed}

var statusLabels = map[Status]string{
	StatusSurvey:  "Awaiting survey team",
	StatusDesign:  "Awaiting design team",
	StatusBidding: "Awaiting bidding team",
	StatusPM:      "Awaiting project management",
	StatusClosed:  "Project closed",
}

func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid status %q", s)
}

// Label returns the human readable stage label.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Role is the perspective a user edits a project from.
type Role string

const (
	RoleSurvey  Role = "survey"
	RoleDesign  Role = "design"
	RoleBidding Role = "bidding"
	RolePM      Role = "pm"
	RoleAdmin   Role = "admin"
)

var Roles = []Role{RoleSurvey, RoleDesign, RoleBidding, RolePM, RoleAdmin}

func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if string(r) == strings.TrimSpace(s) {
			return r, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", s)
}

// Stage returns the status a non-admin role works on. Admin has no stage.
func (r Role) Stage() (Status, bool) {
	switch r {
	case RoleSurvey:
		return StatusSurvey, true
	case RoleDesign:
		return StatusDesign, true
	case RoleBidding:
		return StatusBidding, true
	case RolePM:
		return StatusPM, true
	}
	return "", false
}

// Action is what the user asked for when submitting a form.
type Action string

const (
	ActionSave     Action = "save"
	ActionForward  Action = "forward"
	ActionComplete Action = "complete"
)

func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionSave, ActionForward, ActionComplete:
		return Action(s), nil
	case "":
		return ActionSave, nil
	}
	return "", fmt.Errorf("invalid action %q", s)
}

// Project is the write model persisted to the store.
type Project struct {
	ID     int64  `json:"id"`
	Name   string `json:"projectName"`
	Status Status `json:"status" enum:"survey,design,bidding,pm,closed"`

	LocationID       *int64   `json:"location_id,omitempty"`
	ConstructionType *string  `json:"constructionType,omitempty"`
	SurveyStartDate  *string  `json:"surveyStartDate,omitempty"`
	SurveyEndDate    *string  `json:"surveyEndDate,omitempty"`
	PlannedDuration  *float64 `json:"plannedDuration,omitempty"`
	Budget           *float64 `json:"budget,omitempty"`

	IsBudgetEstimated bool `json:"isBudgetEstimated"`
	WorkScopeDesign   bool `json:"workScopeDesign"`
	WorkScopeBidding  bool `json:"workScopeBidding"`
	WorkScopePM       bool `json:"workScopePM"`

	SurveyorID       *int64 `json:"survey_by_id,omitempty"`
	DesignOwnerID    *int64 `json:"design_owner_id,omitempty"`
	ProjectManagerID *int64 `json:"project_manager_id,omitempty"`
	BiddingOwnerID   *int64 `json:"bidding_owner_id,omitempty"`
	PMOwnerID        *int64 `json:"pm_owner_id,omitempty"`

	ActualCost     *float64 `json:"actualCost,omitempty"`
	StartDate      *string  `json:"startDate,omitempty"`
	ActualDuration *float64 `json:"actualDuration,omitempty"`

	BiddingPDF      *string `json:"biddingPDF,omitempty"`
	BOQPDF          *string `json:"boqPDF,omitempty"`
	ProjectImage    *string `json:"projectImage,omitempty"`
	ConstructionPDF *string `json:"constructionPDF,omitempty"`
	RVTModel        *string `json:"rvtModel,omitempty"`
	IFCModel        *string `json:"ifcModel,omitempty"`
	AsBuiltPDF      *string `json:"asBuiltPDF,omitempty"`

	CreatedAt string `json:"created_at,omitempty" format:"date-time"`
	UpdatedAt string `json:"updated_at,omitempty" format:"date-time"`
}

// WorkScopeSelected reports whether at least one work-scope flag is set.
func (p Project) WorkScopeSelected() bool {
	return p.IsBudgetEstimated || p.WorkScopeDesign || p.WorkScopeBidding || p.WorkScopePM
}

// Clone returns a copy that shares no pointers with p.
func (p Project) Clone() Project {
	c := p
	c.LocationID = cloneInt(p.LocationID)
	c.ConstructionType = cloneString(p.ConstructionType)
	c.SurveyStartDate = cloneString(p.SurveyStartDate)
	c.SurveyEndDate = cloneString(p.SurveyEndDate)
	c.PlannedDuration = cloneFloat(p.PlannedDuration)
	c.Budget = cloneFloat(p.Budget)
	c.SurveyorID = cloneInt(p.SurveyorID)
	c.DesignOwnerID = cloneInt(p.DesignOwnerID)
	c.ProjectManagerID = cloneInt(p.ProjectManagerID)
	c.BiddingOwnerID = cloneInt(p.BiddingOwnerID)
	c.PMOwnerID = cloneInt(p.PMOwnerID)
	c.ActualCost = cloneFloat(p.ActualCost)
	c.StartDate = cloneString(p.StartDate)
	c.ActualDuration = cloneFloat(p.ActualDuration)
	c.BiddingPDF = cloneString(p.BiddingPDF)
	c.BOQPDF = cloneString(p.BOQPDF)
	c.ProjectImage = cloneString(p.ProjectImage)
	c.ConstructionPDF = cloneString(p.ConstructionPDF)
	c.RVTModel = cloneString(p.RVTModel)
	c.IFCModel = cloneString(p.IFCModel)
	c.AsBuiltPDF = cloneString(p.AsBuiltPDF)
	return c
}

// ProjectView is the read projection: the project plus joined reference rows.
// It is never written back.
type ProjectView struct {
	Project
	Location       *Location `json:"location,omitempty"`
	Surveyor       *Employee `json:"surveyor,omitempty"`
	ProjectManager *Employee `json:"project_manager,omitempty"`
	DesignOwner    *Employee `json:"design_owner,omitempty"`
	BiddingOwner   *Employee `json:"bidding_owner,omitempty"`
	PMOwner        *Employee `json:"pm_owner,omitempty"`
}

// Files returns the non-empty file references keyed by field name.
func (v ProjectView) Files() map[string]string {
	out := map[string]string{}
	for name, ref := range map[string]*string{
		"biddingPDF":      v.BiddingPDF,
		"constructionPDF": v.ConstructionPDF,
		"rvtModel":        v.RVTModel,
		"ifcModel":        v.IFCModel,
		"boqPDF":          v.BOQPDF,
		"projectImage":    v.ProjectImage,
		"asBuiltPDF":      v.AsBuiltPDF,
	} {
		if ref != nil && *ref != "" {
			out[name] = *ref
		}
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneInt(i *int64) *int64 {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
