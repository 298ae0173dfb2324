package app

import (
	"io"

	"stageline/internal/domain"
	"stageline/internal/engine"
	"stageline/internal/schema"
	"stageline/internal/workflow"
)

// Form is the state of one open edit form: which project, which role, and
// what the user has changed so far. Nothing is checked until the request is
// submitted.
type Form struct {
	Role     domain.Role
	Fields   []schema.Field
	existing *domain.ProjectView
	values   map[string]string
	cleared  map[string]bool
	files    map[string]schema.Upload
}

func NewForm(reg schema.Registry, role domain.Role) *Form {
	f := &Form{Role: role, Fields: reg.Fields(role)}
	f.Open(nil)
	return f
}

// Open starts editing v, or a new project when v is nil, discarding any
// pending changes.
func (f *Form) Open(v *domain.ProjectView) {
	f.existing = v
	f.values = map[string]string{}
	f.cleared = map[string]bool{}
	f.files = map[string]schema.Upload{}
}

func (f *Form) ProjectID() int64 {
	if f.existing == nil {
		return 0
	}
	return f.existing.ID
}

func (f *Form) SetValue(name, raw string) {
	f.values[name] = raw
}

// Stage attaches a file to a file field, undoing an earlier removal.
func (f *Form) Stage(name, filename string, body io.Reader) {
	delete(f.cleared, name)
	f.files[name] = schema.Upload{Filename: filename, Body: body}
}

// RemoveFile drops a staged file and clears the stored one.
func (f *Form) RemoveFile(name string) {
	delete(f.files, name)
	f.cleared[name] = true
}

// Value is what the input for name currently shows: the pending edit if
// there is one, otherwise the stored value.
func (f *Form) Value(name string) string {
	if raw, ok := f.values[name]; ok {
		return raw
	}
	if f.existing == nil {
		return ""
	}
	for _, field := range f.Fields {
		if field.Name != name {
			continue
		}
		v, err := schema.Get(f.existing.Project, field)
		if err != nil {
			return ""
		}
		return v.String()
	}
	return ""
}

// Actions lists the buttons the form offers.
func (f *Form) Actions() []domain.Action {
	if f.existing == nil {
		st, err := workflow.Initial(f.Role)
		if err != nil {
			return nil
		}
		return workflow.Actions(f.Role, st)
	}
	return workflow.Actions(f.Role, f.existing.Status)
}

// Request builds the submission for action.
func (f *Form) Request(action domain.Action, secret string) engine.SaveRequest {
	d := schema.Draft{
		Values:  make(map[string]string, len(f.values)),
		Cleared: make(map[string]bool, len(f.cleared)),
		Files:   make(map[string]schema.Upload, len(f.files)),
	}
	for k, v := range f.values {
		d.Values[k] = v
	}
	for k, v := range f.cleared {
		d.Cleared[k] = v
	}
	for k, v := range f.files {
		d.Files[k] = v
	}
	return engine.SaveRequest{
		Role:      f.Role,
		Action:    action,
		ProjectID: f.ProjectID(),
		Draft:     d,
		Secret:    secret,
	}
}
