package stagelinesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client is a minimal Stageline HTTP API client.
type Client struct {
	BaseURL     string
	BearerToken string
	// Role is sent as X-Role when no token is set. Servers accept it only
	// when the legacy header is enabled.
	Role       string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// New creates a client with sane defaults.
func New(baseURL, token string) *Client {
	return &Client{
		BaseURL:     baseURL,
		BearerToken: token,
		Timeout:     10 * time.Second,
	}
}

// Project represents the API project model (partial).
type Project struct {
	ID               int64    `json:"id"`
	Name             string   `json:"projectName"`
	Status           string   `json:"status"`
	StatusLabel      string   `json:"status_label"`
	LocationName     string   `json:"location_name,omitempty"`
	Submitter        string   `json:"submitter,omitempty"`
	Actions          []string `json:"actions"`
	ConstructionType *string  `json:"constructionType,omitempty"`
	Budget           *float64 `json:"budget,omitempty"`
	ActualCost       *float64 `json:"actualCost,omitempty"`
	ActualDuration   *float64 `json:"actualDuration,omitempty"`
	BiddingPDF       *string  `json:"biddingPDF,omitempty"`
	BOQPDF           *string  `json:"boqPDF,omitempty"`
	ConstructionPDF  *string  `json:"constructionPDF,omitempty"`
	AsBuiltPDF       *string  `json:"asBuiltPDF,omitempty"`
	UpdatedAt        string   `json:"updated_at,omitempty"`
}

// Field describes one form input of a role's schema.
type Field struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Source   string   `json:"source,omitempty"`
	Options  []string `json:"options,omitempty"`
}

type Employee struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name,omitempty"`
	DisplayName string `json:"display_name"`
}

type Location struct {
	ID          int64  `json:"id"`
	SiteName    string `json:"site_name"`
	Activity    string `json:"activity,omitempty"`
	DisplayName string `json:"display_name"`
}

// Submission is a project save. Files maps a file field to a token from
// Upload.
type Submission struct {
	Action  string            `json:"action,omitempty"`
	Values  map[string]string `json:"values,omitempty"`
	Cleared []string          `json:"cleared,omitempty"`
	Files   map[string]string `json:"files,omitempty"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Code       string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d code=%s body=%s", e.StatusCode, e.Code, e.Body)
}

// ListProjects returns the caller's queue, or every project for admin.
func (c *Client) ListProjects(ctx context.Context, search string) ([]Project, error) {
	endpoint := "v0/projects"
	if search != "" {
		endpoint += "?" + url.Values{"search": {search}}.Encode()
	}
	var resp []Project
	err := c.do(ctx, http.MethodGet, endpoint, nil, nil, &resp)
	return resp, err
}

func (c *Client) GetProject(ctx context.Context, id int64) (Project, error) {
	var resp Project
	err := c.do(ctx, http.MethodGet, projectPath(id), nil, nil, &resp)
	return resp, err
}

// CreateProject creates a project. secret is only needed for admin.
func (c *Client) CreateProject(ctx context.Context, s Submission, secret string) (Project, error) {
	var resp Project
	err := c.do(ctx, http.MethodPost, "v0/projects", s, secretHeader(secret), &resp)
	return resp, err
}

// SaveProject saves, forwards or completes a project depending on s.Action.
func (c *Client) SaveProject(ctx context.Context, id int64, s Submission, secret string) (Project, error) {
	var resp Project
	err := c.do(ctx, http.MethodPatch, projectPath(id), s, secretHeader(secret), &resp)
	return resp, err
}

func (c *Client) DeleteProject(ctx context.Context, id int64, secret string, confirm bool) error {
	endpoint := projectPath(id)
	if confirm {
		endpoint += "?confirm=true"
	}
	return c.do(ctx, http.MethodDelete, endpoint, nil, secretHeader(secret), nil)
}

func (c *Client) Schema(ctx context.Context, role string) ([]Field, error) {
	var resp []Field
	err := c.do(ctx, http.MethodGet, "v0/schema/"+url.PathEscape(role), nil, nil, &resp)
	return resp, err
}

func (c *Client) Employees(ctx context.Context) ([]Employee, error) {
	var resp []Employee
	err := c.do(ctx, http.MethodGet, "v0/employees", nil, nil, &resp)
	return resp, err
}

func (c *Client) Locations(ctx context.Context) ([]Location, error) {
	var resp []Location
	err := c.do(ctx, http.MethodGet, "v0/locations", nil, nil, &resp)
	return resp, err
}

// Upload stages a file and returns the token to reference it by.
func (c *Client) Upload(ctx context.Context, filename string, body io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, body); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "v0/uploads", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.send(req, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// Download fetches a stored file by its public URL.
func (c *Client) Download(ctx context.Context, fileURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, data)
	}
	return data, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, headers map[string]string, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := c.newRequest(ctx, method, endpoint, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	switch {
	case c.BearerToken != "":
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	case c.Role != "":
		req.Header.Set("X-Role", c.Role)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return newAPIError(resp.StatusCode, b)
	}
	if out != nil && resp.StatusCode != http.StatusNoContent {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	return c.HTTPClient
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}

func newAPIError(status int, body []byte) *APIError {
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	_ = json.Unmarshal(body, &env)
	return &APIError{StatusCode: status, Code: env.Error.Code, Body: string(body)}
}

func projectPath(id int64) string {
	return "v0/projects/" + strconv.FormatInt(id, 10)
}

func secretHeader(secret string) map[string]string {
	if secret == "" {
		return nil
	}
	return map[string]string{"X-Access-Secret": secret}
}
