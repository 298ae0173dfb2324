package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"stageline/internal/app"
	"stageline/internal/domain"
	"stageline/internal/engine"
	"stageline/internal/schema"
	"stageline/internal/storage"
)

func registerSchema(api huma.API, ws *app.Workspace) {
	huma.Register(api, huma.Operation{
		OperationID: "get-schema",
		Method:      http.MethodGet,
		Path:        "/schema/{role}",
		Summary:     "Field descriptors a role edits",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Role string `path:"role" enum:"survey,design,bidding,pm,admin"`
	}) (*struct {
		Body []schema.Field `json:"body"`
	}, error) {
		role, err := domain.ParseRole(input.Role)
		if err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", err.Error(), nil)
		}
		return &struct {
			Body []schema.Field `json:"body"`
		}{Body: ws.Engine.Schema(role)}, nil
	})
}

func registerProjects(api huma.API, ws *app.Workspace, objects Objects) {
	huma.Register(api, huma.Operation{
		OperationID: "list-projects",
		Method:      http.MethodGet,
		Path:        "/projects",
		Summary:     "Projects waiting for the caller's role",
		Description: "Admin sees every project, optionally filtered by name. Other roles see the projects at their own stage.",
	}, func(ctx context.Context, input *struct {
		Search string `query:"search"`
	}) (*struct {
		Body []ProjectResponse `json:"body"`
	}, error) {
		role, authErr := roleFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		names := domain.DisplayNames(ws.Catalog.Locations())
		return &struct {
			Body []ProjectResponse `json:"body"`
		}{Body: mapProjects(role, ws.Catalog.Visible(role, input.Search), names)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-project",
		Method:      http.MethodGet,
		Path:        "/projects/{id}",
		Summary:     "Get project",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID int64 `path:"id"`
	}) (*struct {
		Body ProjectResponse `json:"body"`
	}, error) {
		role, authErr := roleFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		v, err := ws.Engine.Get(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		names := domain.DisplayNames(ws.Catalog.Locations())
		return &struct {
			Body ProjectResponse `json:"body"`
		}{Body: projectResponse(role, v, names)}, nil
	})

	saveErrors := []int{
		http.StatusBadRequest,
		http.StatusForbidden,
		http.StatusNotFound,
		http.StatusConflict,
		http.StatusUnprocessableEntity,
		http.StatusBadGateway,
		http.StatusInternalServerError,
	}

	huma.Register(api, huma.Operation{
		OperationID:   "create-project",
		Method:        http.MethodPost,
		Path:          "/projects",
		Summary:       "Create project",
		Description:   "Survey creates at the survey stage. Admin creates at the design stage and must send X-Access-Secret.",
		DefaultStatus: http.StatusCreated,
		Errors:        saveErrors,
	}, func(ctx context.Context, input *struct {
		Secret string             `header:"X-Access-Secret"`
		Body   SaveProjectRequest `json:"body"`
	}) (*struct {
		Body ProjectResponse `json:"body"`
	}, error) {
		return saveProject(ctx, ws, objects, 0, input.Secret, input.Body)
	})

	huma.Register(api, huma.Operation{
		OperationID: "save-project",
		Method:      http.MethodPatch,
		Path:        "/projects/{id}",
		Summary:     "Save, forward or complete a project",
		Errors:      saveErrors,
	}, func(ctx context.Context, input *struct {
		ID     int64              `path:"id"`
		Secret string             `header:"X-Access-Secret"`
		Body   SaveProjectRequest `json:"body"`
	}) (*struct {
		Body ProjectResponse `json:"body"`
	}, error) {
		if input.ID <= 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "project id must be positive", nil)
		}
		return saveProject(ctx, ws, objects, input.ID, input.Secret, input.Body)
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-project",
		Method:        http.MethodDelete,
		Path:          "/projects/{id}",
		Summary:       "Delete project",
		Description:   "Admin only. Needs X-Access-Secret and confirm=true. Closed projects are never deleted.",
		DefaultStatus: http.StatusNoContent,
		Errors: []int{
			http.StatusForbidden,
			http.StatusNotFound,
			http.StatusConflict,
			http.StatusPreconditionRequired,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		ID      int64  `path:"id"`
		Secret  string `header:"X-Access-Secret"`
		Confirm bool   `query:"confirm"`
	}) (*struct{}, error) {
		role, authErr := roleFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		err := ws.Delete(ctx, engine.DeleteRequest{
			Role:      role,
			ProjectID: input.ID,
			Secret:    input.Secret,
			Confirmed: input.Confirm,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func saveProject(ctx context.Context, ws *app.Workspace, objects Objects, id int64, secret string, body SaveProjectRequest) (*struct {
	Body ProjectResponse `json:"body"`
}, error) {
	role, authErr := roleFromContext(ctx)
	if authErr != nil {
		return nil, authErr
	}
	if len(bodyBytes(ctx)) == 0 {
		return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
	}
	action, err := domain.ParseAction(body.Action)
	if err != nil {
		return nil, newAPIError(http.StatusBadRequest, "bad_request", err.Error(), nil)
	}
	draft, statusErr := buildDraft(ctx, objects, body)
	if statusErr != nil {
		return nil, statusErr
	}
	v, err := ws.Save(ctx, engine.SaveRequest{
		Role:      role,
		Action:    action,
		ProjectID: id,
		Draft:     draft,
		Secret:    secret,
	})
	if err != nil {
		return nil, handleError(err)
	}
	spendUploads(ctx, ws, objects, body.Files)
	names := domain.DisplayNames(ws.Catalog.Locations())
	return &struct {
		Body ProjectResponse `json:"body"`
	}{Body: projectResponse(role, v, names)}, nil
}

// buildDraft reads every referenced upload without spending its token. A
// rejected submission can be sent again with the same tokens.
func buildDraft(ctx context.Context, objects Objects, body SaveProjectRequest) (schema.Draft, huma.StatusError) {
	d := schema.Draft{
		Values:  map[string]string{},
		Cleared: map[string]bool{},
		Files:   map[string]schema.Upload{},
	}
	for k, v := range body.Values {
		d.Values[k] = v
	}
	for _, name := range body.Cleared {
		d.Cleared[name] = true
	}
	for field, token := range body.Files {
		if d.Cleared[field] {
			return schema.Draft{}, newAPIError(http.StatusBadRequest, "bad_request", "file field is both cleared and uploaded", map[string]any{"field": field})
		}
		filename, data, err := objects.Peek(ctx, token)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return schema.Draft{}, newAPIError(http.StatusBadRequest, "unknown_upload", "upload token not found or already used", map[string]any{"field": field})
			}
			return schema.Draft{}, handleError(err)
		}
		d.Files[field] = schema.Upload{Filename: filename, Body: bytes.NewReader(data)}
	}
	return d, nil
}

// spendUploads removes the staged files a saved submission used. The record is
// already written, so failures are only logged.
func spendUploads(ctx context.Context, ws *app.Workspace, objects Objects, files map[string]string) {
	for field, token := range files {
		if _, _, err := objects.Claim(ctx, token); err != nil && !errors.Is(err, storage.ErrNotFound) && ws.Logger != nil {
			ws.Logger.Printf("spend upload %s for %s: %v", token, field, err)
		}
	}
}
