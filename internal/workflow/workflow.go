// Package workflow holds the project status machine: where a project starts,
// which role/action pairs move it forward, and who may edit it at each stage.
package workflow

import (
	"errors"
	"fmt"

	"stageline/internal/domain"
)

var (
	ErrClosed       = errors.New("project is closed")
	ErrCannotCreate = errors.New("role cannot create projects")
)

// ActionError reports a role/action pair that is not legal at a status.
type ActionError struct {
	Role   domain.Role
	Action domain.Action
	Status domain.Status
}

func (e ActionError) Error() string {
	return fmt.Sprintf("action %s not allowed for role %s at status %s", e.Action, e.Role, e.Status)
}

// StageError reports a role editing a project outside its own stage.
type StageError struct {
	Role   domain.Role
	Status domain.Status
}

func (e StageError) Error() string {
	return fmt.Sprintf("role %s cannot edit a project at status %s", e.Role, e.Status)
}

var successors = map[domain.Status]domain.Status{
	domain.StatusSurvey:  domain.StatusDesign,
	domain.StatusDesign:  domain.StatusBidding,
	domain.StatusBidding: domain.StatusPM,
	domain.StatusPM:      domain.StatusClosed,
}

// Successor returns the only status that may follow s.
func Successor(s domain.Status) (domain.Status, bool) {
	next, ok := successors[s]
	return next, ok
}

// Initial is the status a newly created project starts at. Admin-created
// projects skip the survey stage.
func Initial(role domain.Role) (domain.Status, error) {
	switch role {
	case domain.RoleSurvey:
		return domain.StatusSurvey, nil
	case domain.RoleAdmin:
		return domain.StatusDesign, nil
	}
	return "", ErrCannotCreate
}

// Next computes the status after role performs action on a project at
// current. Save keeps the status; forward and complete advance exactly one
// step and only from the acting role's own stage.
func Next(role domain.Role, action domain.Action, current domain.Status) (domain.Status, error) {
	if current == domain.StatusClosed {
		return "", ErrClosed
	}
	if action == domain.ActionSave {
		return current, nil
	}
	if role == domain.RoleAdmin {
		return "", ActionError{Role: role, Action: action, Status: current}
	}
	stage, ok := role.Stage()
	if !ok || stage != current {
		return "", ActionError{Role: role, Action: action, Status: current}
	}
	switch {
	case action == domain.ActionForward && current != domain.StatusPM:
	case action == domain.ActionComplete && current == domain.StatusPM:
	default:
		return "", ActionError{Role: role, Action: action, Status: current}
	}
	return successors[current], nil
}

// CanEdit reports whether role may change a project at status.
func CanEdit(role domain.Role, status domain.Status) error {
	if status == domain.StatusClosed {
		return ErrClosed
	}
	if role == domain.RoleAdmin {
		return nil
	}
	if stage, ok := role.Stage(); ok && stage == status {
		return nil
	}
	return StageError{Role: role, Status: status}
}

// Actions lists what role can submit for a project at status, in the order
// a form would offer them.
func Actions(role domain.Role, status domain.Status) []domain.Action {
	if CanEdit(role, status) != nil {
		return nil
	}
	out := []domain.Action{domain.ActionSave}
	for _, a := range []domain.Action{domain.ActionForward, domain.ActionComplete} {
		if _, err := Next(role, a, status); err == nil {
			out = append(out, a)
		}
	}
	return out
}
