// Package validation checks a form draft against a role's field schema before
// anything is uploaded or written.
package validation

import (
	"fmt"
	"sort"
	"strings"

	"stageline/internal/domain"
	"stageline/internal/schema"
)

type Code string

const (
	CodeMissingName  Code = "missing_name"
	CodeRequired     Code = "required"
	CodeWorkScope    Code = "work_scope"
	CodeInvalidValue Code = "invalid_value"
	CodeNotEditable  Code = "not_editable"
)

type Failure struct {
	Code    Code   `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type Result struct {
	Failures []Failure `json:"failures"`
}

func (r Result) Valid() bool { return len(r.Failures) == 0 }

// Has reports whether any failure carries code.
func (r Result) Has(code Code) bool {
	for _, f := range r.Failures {
		if f.Code == code {
			return true
		}
	}
	return false
}

func (r Result) String() string {
	msgs := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

// Input is everything Check looks at. Existing is nil for new projects.
type Input struct {
	Role     domain.Role
	Action   domain.Action
	Fields   []schema.Field
	Draft    schema.Draft
	Existing *domain.Project
}

var workScopeFlags = []string{
	schema.FieldIsBudgetEstimated,
	schema.FieldWorkScopeDesign,
	schema.FieldWorkScopeBidding,
	schema.FieldWorkScopePM,
}

// Check runs the rules for in.Action. Save only insists on a name for new
// projects; forward and complete require every required field to resolve
// from either the draft or the stored record.
func Check(in Input) Result {
	var res Result
	byName := make(map[string]schema.Field, len(in.Fields))
	for _, f := range in.Fields {
		byName[f.Name] = f
	}

	res.Failures = append(res.Failures, checkEditable(in, byName)...)
	parsed := map[string]schema.Value{}
	for _, f := range in.Fields {
		if f.Kind == schema.KindFile {
			continue
		}
		raw, ok := in.Draft.Raw(f.Name)
		if !ok {
			continue
		}
		v, err := schema.Parse(f, raw)
		if err != nil {
			res.Failures = append(res.Failures, Failure{Code: CodeInvalidValue, Field: f.Name, Message: err.Error()})
			continue
		}
		parsed[f.Name] = v
	}

	nameMissing := false
	if in.Existing == nil {
		name := ""
		if v, ok := parsed[schema.FieldProjectName]; ok && v.Text != nil {
			name = strings.TrimSpace(*v.Text)
		}
		if name == "" {
			nameMissing = true
			res.Failures = append(res.Failures, Failure{
				Code:    CodeMissingName,
				Field:   schema.FieldProjectName,
				Message: "project name is required",
			})
		}
	}

	if in.Action == domain.ActionSave {
		return res
	}

	for _, f := range in.Fields {
		if !f.Required {
			continue
		}
		if f.Name == schema.FieldProjectName && nameMissing {
			continue
		}
		if !resolved(f, parsed, in.Draft, in.Existing) {
			res.Failures = append(res.Failures, Failure{
				Code:    CodeRequired,
				Field:   f.Name,
				Message: fmt.Sprintf("%s is required", f.Label),
			})
		}
	}

	if in.Role == domain.RoleSurvey && in.Action == domain.ActionForward && !workScopeSelected(byName, parsed, in.Existing) {
		res.Failures = append(res.Failures, Failure{
			Code:    CodeWorkScope,
			Message: "select at least one work scope",
		})
	}
	return res
}

// resolved reports whether f has a non-empty value from the draft, falling
// back to the stored record when the draft leaves it blank.
func resolved(f schema.Field, parsed map[string]schema.Value, d schema.Draft, existing *domain.Project) bool {
	if f.Kind == schema.KindFile {
		if _, ok := d.Staged(f.Name); ok {
			return true
		}
		if d.IsCleared(f.Name) {
			return false
		}
	} else if v, ok := parsed[f.Name]; ok && !v.Empty() {
		return true
	}
	if existing == nil {
		return false
	}
	stored, err := schema.Get(*existing, f)
	if err != nil {
		return false
	}
	return !stored.Empty()
}

func workScopeSelected(byName map[string]schema.Field, parsed map[string]schema.Value, existing *domain.Project) bool {
	for _, name := range workScopeFlags {
		if v, ok := parsed[name]; ok {
			if v.Bool {
				return true
			}
			continue
		}
		f, ok := byName[name]
		if !ok || existing == nil {
			continue
		}
		if stored, err := schema.Get(*existing, f); err == nil && stored.Bool {
			return true
		}
	}
	return false
}

// checkEditable flags draft entries outside the role's schema. Names are
// sorted so failures come back in a stable order.
func checkEditable(in Input, byName map[string]schema.Field) []Failure {
	var out []Failure
	keys := make([]string, 0, len(in.Draft.Values)+len(in.Draft.Files)+len(in.Draft.Cleared))
	seen := map[string]bool{}
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			keys = append(keys, name)
		}
	}
	for name := range in.Draft.Values {
		add(name)
	}
	for name := range in.Draft.Files {
		add(name)
	}
	for name := range in.Draft.Cleared {
		add(name)
	}
	sort.Strings(keys)
	for _, name := range keys {
		f, ok := byName[name]
		if !ok {
			out = append(out, Failure{Code: CodeNotEditable, Field: name, Message: fmt.Sprintf("field %s is not editable by role %s", name, in.Role)})
			continue
		}
		_, hasValue := in.Draft.Values[name]
		_, hasFile := in.Draft.Files[name]
		isFile := f.Kind == schema.KindFile
		if (hasFile || in.Draft.IsCleared(name)) && !isFile {
			out = append(out, Failure{Code: CodeInvalidValue, Field: name, Message: fmt.Sprintf("%s does not accept files", f.Label)})
		}
		if hasValue && isFile {
			out = append(out, Failure{Code: CodeInvalidValue, Field: name, Message: fmt.Sprintf("%s takes an upload, not a value", f.Label)})
		}
	}
	return out
}
