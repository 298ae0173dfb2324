// Package assemble turns a validated form draft into the project record that
// gets written, uploading staged files on the way.
package assemble

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stageline/internal/domain"
	"stageline/internal/schema"
	"stageline/internal/storage"
)

var ErrMissingName = errors.New("project name is required")

// UploadError reports a staged file that could not be stored. Nothing is
// written when it is returned.
type UploadError struct {
	Field string
	Path  string
	Err   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s to %s: %v", e.Field, e.Path, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

type Input struct {
	Fields   []schema.Field
	Existing *domain.ProjectView
	Draft    schema.Draft
	Next     domain.Status
}

type Assembler struct {
	Uploader storage.Uploader
}

// Assemble builds the record to persist. Only fields in in.Fields are taken
// from the draft, so a role can never overwrite another stage's owner.
func (a Assembler) Assemble(ctx context.Context, in Input) (domain.Project, error) {
	var p domain.Project
	if in.Existing != nil {
		p = in.Existing.Project.Clone()
	}

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
			return domain.Project{}, err
		}
		if v.Empty() && f.Required && f.Kind != schema.KindCheckbox {
			// A blank required input means the user left the stored value alone.
			continue
		}
		if err := schema.Set(&p, f, v); err != nil {
			return domain.Project{}, err
		}
	}

	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return domain.Project{}, ErrMissingName
	}

	for _, f := range in.Fields {
		if f.Kind != schema.KindFile {
			continue
		}
		if up, ok := in.Draft.Staged(f.Name); ok {
			path := storage.ObjectPath(p.Name, up.Filename)
			if a.Uploader == nil {
				return domain.Project{}, &UploadError{Field: f.Name, Path: path, Err: errors.New("object storage is not configured")}
			}
			if err := a.Uploader.Upload(ctx, path, up.Body); err != nil {
				return domain.Project{}, &UploadError{Field: f.Name, Path: path, Err: err}
			}
			url := a.Uploader.PublicURL(path)
			if err := schema.Set(&p, f, schema.Value{Kind: f.Kind, Text: &url}); err != nil {
				return domain.Project{}, err
			}
			continue
		}
		if in.Draft.IsCleared(f.Name) {
			if err := schema.Set(&p, f, schema.Value{Kind: f.Kind}); err != nil {
				return domain.Project{}, err
			}
		}
	}

	p.Status = in.Next
	return p, nil
}
