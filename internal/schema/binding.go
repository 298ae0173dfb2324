package schema

import (
	"fmt"

	"stageline/internal/domain"
)

// bindings maps field names onto the Project member they read and write.
var bindings = map[string]func(p *domain.Project) any{
	FieldProjectName:       func(p *domain.Project) any { return &p.Name },
	"location_id":          func(p *domain.Project) any { return &p.LocationID },
	"constructionType":     func(p *domain.Project) any { return &p.ConstructionType },
	"surveyStartDate":      func(p *domain.Project) any { return &p.SurveyStartDate },
	"surveyEndDate":        func(p *domain.Project) any { return &p.SurveyEndDate },
	"plannedDuration":      func(p *domain.Project) any { return &p.PlannedDuration },
	"budget":               func(p *domain.Project) any { return &p.Budget },
	FieldIsBudgetEstimated: func(p *domain.Project) any { return &p.IsBudgetEstimated },
	FieldWorkScopeDesign:   func(p *domain.Project) any { return &p.WorkScopeDesign },
	FieldWorkScopeBidding:  func(p *domain.Project) any { return &p.WorkScopeBidding },
	FieldWorkScopePM:       func(p *domain.Project) any { return &p.WorkScopePM },
	"survey_by_id":         func(p *domain.Project) any { return &p.SurveyorID },
	"design_owner_id":      func(p *domain.Project) any { return &p.DesignOwnerID },
	"project_manager_id":   func(p *domain.Project) any { return &p.ProjectManagerID },
	"bidding_owner_id":     func(p *domain.Project) any { return &p.BiddingOwnerID },
	"pm_owner_id":          func(p *domain.Project) any { return &p.PMOwnerID },
	"actualCost":           func(p *domain.Project) any { return &p.ActualCost },
	"startDate":            func(p *domain.Project) any { return &p.StartDate },
	"actualDuration":       func(p *domain.Project) any { return &p.ActualDuration },
	"biddingPDF":           func(p *domain.Project) any { return &p.BiddingPDF },
	"boqPDF":               func(p *domain.Project) any { return &p.BOQPDF },
	"projectImage":         func(p *domain.Project) any { return &p.ProjectImage },
	"constructionPDF":      func(p *domain.Project) any { return &p.ConstructionPDF },
	"rvtModel":             func(p *domain.Project) any { return &p.RVTModel },
	"ifcModel":             func(p *domain.Project) any { return &p.IFCModel },
	"asBuiltPDF":           func(p *domain.Project) any { return &p.AsBuiltPDF },
}

// Get reads field f from p.
func Get(p domain.Project, f Field) (Value, error) {
	bind, ok := bindings[f.Name]
	if !ok {
		return Value{}, fmt.Errorf("field %s is not bound", f.Name)
	}
	v := Value{Kind: f.Kind}
	switch ptr := bind(&p).(type) {
	case *string:
		s := *ptr
		v.Text = &s
	case **string:
		v.Text = *ptr
	case **float64:
		v.Number = *ptr
	case **int64:
		v.Ref = *ptr
	case *bool:
		v.Bool = *ptr
	default:
		return Value{}, fmt.Errorf("field %s has unsupported binding %T", f.Name, ptr)
	}
	return v, nil
}

// Set writes v into field f of p. An empty value stores nil (or the zero
// value for non-pointer members).
func Set(p *domain.Project, f Field, v Value) error {
	bind, ok := bindings[f.Name]
	if !ok {
		return fmt.Errorf("field %s is not bound", f.Name)
	}
	switch ptr := bind(p).(type) {
	case *string:
		if v.Text == nil {
			*ptr = ""
		} else {
			*ptr = *v.Text
		}
	case **string:
		*ptr = copyString(v.Text)
	case **float64:
		*ptr = copyFloat(v.Number)
	case **int64:
		*ptr = copyInt(v.Ref)
	case *bool:
		*ptr = v.Bool
	default:
		return fmt.Errorf("field %s has unsupported binding %T", f.Name, ptr)
	}
	return nil
}

// Bound reports whether name has a Project binding.
func Bound(name string) bool {
	_, ok := bindings[name]
	return ok
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}

func copyInt(i *int64) *int64 {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}
