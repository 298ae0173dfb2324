package server

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"stageline/internal/app"
	"stageline/internal/storage"
)

type uploadForm struct {
	File huma.FormFile `form:"file" required:"true"`
}

func registerUploads(api huma.API, objects Objects) {
	huma.Register(api, huma.Operation{
		OperationID:   "stage-upload",
		Method:        http.MethodPost,
		Path:          "/uploads",
		Summary:       "Stage a file for a later form submission",
		Description:   "Returns a token to reference from the files map of a project save. Tokens are single use and expire.",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		RawBody huma.MultipartFormFiles[uploadForm]
	}) (*struct {
		Body UploadResponse `json:"body"`
	}, error) {
		if _, authErr := roleFromContext(ctx); authErr != nil {
			return nil, authErr
		}
		form := input.RawBody.Data()
		if form == nil || !form.File.IsSet {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "multipart field file is required", nil)
		}
		defer form.File.Close()
		token, err := objects.Stage(ctx, form.File.Filename, form.File)
		if err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", err.Error(), nil)
		}
		return &struct {
			Body UploadResponse `json:"body"`
		}{Body: UploadResponse{Token: token, Filename: form.File.Filename}}, nil
	})
}

func registerReference(api huma.API, ws *app.Workspace) {
	huma.Register(api, huma.Operation{
		OperationID: "list-employees",
		Method:      http.MethodGet,
		Path:        "/employees",
		Summary:     "Employees in display order",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []EmployeeResponse `json:"body"`
	}, error) {
		if _, authErr := roleFromContext(ctx); authErr != nil {
			return nil, authErr
		}
		return &struct {
			Body []EmployeeResponse `json:"body"`
		}{Body: mapEmployees(ws.Catalog.Employees())}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-locations",
		Method:      http.MethodGet,
		Path:        "/locations",
		Summary:     "Locations in display order",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []LocationResponse `json:"body"`
	}, error) {
		if _, authErr := roleFromContext(ctx); authErr != nil {
			return nil, authErr
		}
		return &struct {
			Body []LocationResponse `json:"body"`
		}{Body: mapLocations(ws.Catalog.Locations())}, nil
	})
}

// registerFiles serves stored objects at the public URL prefix. It sits on
// the router rather than the API group since responses are raw bytes.
func registerFiles(r chi.Router, basePath string, objects Objects) {
	r.Get(path.Join(basePath, "files")+"/*", func(w http.ResponseWriter, req *http.Request) {
		objectPath := strings.TrimPrefix(chi.URLParam(req, "*"), "/")
		if objectPath == "" {
			respondStatusError(w, newAPIError(http.StatusNotFound, "not_found", "file not found", nil))
			return
		}
		data, err := objects.Get(req.Context(), objectPath)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				respondStatusError(w, newAPIError(http.StatusNotFound, "not_found", "file not found", nil))
				return
			}
			respondStatusError(w, handleError(err))
			return
		}
		ctype := mime.TypeByExtension(path.Ext(objectPath))
		if ctype == "" {
			ctype = http.DetectContentType(data)
		}
		w.Header().Set("Content-Type", ctype)
		w.Write(data)
	})
}
