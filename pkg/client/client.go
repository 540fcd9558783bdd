// Package client is a typed REST client for the candidate tracker API.
package client

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client talks to the /v1 API. It is safe for concurrent use.
type Client struct {
	http *resty.Client
}

type Option func(*resty.Client)

// WithToken authenticates admin calls with a bearer token.
func WithToken(token string) Option {
	return func(r *resty.Client) {
		if token != "" {
			r.SetAuthToken(token)
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(r *resty.Client) { r.SetTimeout(d) }
}

// WithRetries retries idempotent GET requests on transport errors and 502-504.
func WithRetries(n int) Option {
	return func(r *resty.Client) {
		r.SetRetryCount(n).
			SetRetryWaitTime(200 * time.Millisecond).
			SetRetryMaxWaitTime(2 * time.Second).
			AddRetryCondition(func(resp *resty.Response, err error) bool {
				if resp == nil || resp.Request == nil || resp.Request.Method != http.MethodGet {
					return false
				}
				if err != nil {
					return true
				}
				switch resp.StatusCode() {
				case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
					return true
				}
				return false
			})
	}
}

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(ua string) Option {
	return func(r *resty.Client) { r.SetHeader("User-Agent", ua) }
}

// New creates a client for baseURL, e.g. "http://localhost:8080/v1".
func New(baseURL string, opts ...Option) *Client {
	r := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "hrctl/1.0").
		SetTimeout(30 * time.Second)
	for _, opt := range opts {
		opt(r)
	}
	return &Client{http: r}
}

// SetToken replaces the bearer token, e.g. after Login.
func (c *Client) SetToken(token string) {
	c.http.SetAuthToken(token)
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx)
}

// check turns a transport failure or a non-2xx response into an *APIError.
func check(resp *resty.Response, err error) error {
	if err != nil {
		return &APIError{Kind: KindTransport, Message: "request failed", Err: err}
	}
	if resp.IsError() {
		return parseError(resp.StatusCode(), resp.Header(), resp.Body())
	}
	return nil
}

// Register submits an application and returns the new candidate id.
func (c *Client) Register(ctx context.Context, reg Registration) (string, error) {
	if reg.Resume == nil {
		return "", &APIError{Kind: KindValidation, Message: "resume is required", Fields: map[string]string{"resume": "This field is required."}}
	}
	var out envelope[struct {
		ID string `json:"id"`
	}]
	resp, err := c.request(ctx).
		SetMultipartFormData(map[string]string{
			"full_name":           reg.FullName,
			"email":               reg.Email,
			"date_of_birth":       reg.DateOfBirth,
			"years_of_experience": strconv.Itoa(reg.YearsOfExperience),
			"department":          reg.Department,
		}).
		SetFileReader("resume", reg.ResumeFilename, reg.Resume).
		SetResult(&out).
		Post("/candidates")
	if err := check(resp, err); err != nil {
		return "", err
	}
	return out.Data.ID, nil
}

// Status fetches the public status view of a candidate.
func (c *Client) Status(ctx context.Context, id string) (*Candidate, error) {
	var out envelope[Candidate]
	resp, err := c.request(ctx).
		SetPathParam("id", id).
		SetResult(&out).
		Get("/candidates/{id}/status")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// Login exchanges credentials for a token. The client keeps using the token.
func (c *Client) Login(ctx context.Context, username, password, otp string) (*LoginResult, error) {
	var out envelope[LoginResult]
	resp, err := c.request(ctx).
		SetBody(map[string]string{"username": username, "password": password, "otp": otp}).
		SetResult(&out).
		Post("/admin/login")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	c.SetToken(out.Data.Token)
	return &out.Data, nil
}

func listQuery(opts ListOptions) url.Values {
	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(opts.PageSize))
	}
	for _, d := range opts.Departments {
		q.Add("department", d)
	}
	return q
}

func (c *Client) ListCandidates(ctx context.Context, opts ListOptions) (*CandidatePage, error) {
	var out envelope[CandidatePage]
	resp, err := c.request(ctx).
		SetQueryParamsFromValues(listQuery(opts)).
		SetResult(&out).
		Get("/admin/candidates")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) GetCandidate(ctx context.Context, id string) (*Candidate, error) {
	var out envelope[Candidate]
	resp, err := c.request(ctx).
		SetPathParam("id", id).
		SetResult(&out).
		Get("/admin/candidates/{id}")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// UpdateStatus moves a candidate to a new status and returns the updated view.
func (c *Client) UpdateStatus(ctx context.Context, id string, update StatusUpdate) (*Candidate, error) {
	var out envelope[statusUpdateResult]
	resp, err := c.request(ctx).
		SetPathParam("id", id).
		SetBody(update).
		SetResult(&out).
		Put("/admin/candidates/{id}/status")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out.Data.Candidate, nil
}

// DownloadResume streams the stored resume to w and returns its filename.
func (c *Client) DownloadResume(ctx context.Context, id string, w io.Writer) (string, error) {
	return c.download(c.request(ctx).SetPathParam("id", id), "/admin/candidates/{id}/resume", w)
}

// Export writes an xlsx or csv export to w and returns the server's filename.
func (c *Client) Export(ctx context.Context, format string, departments []string, w io.Writer) (string, error) {
	q := listQuery(ListOptions{Departments: departments})
	if format != "" {
		q.Set("format", format)
	}
	return c.download(c.request(ctx).SetQueryParamsFromValues(q), "/admin/candidates/export", w)
}

func (c *Client) download(req *resty.Request, path string, w io.Writer) (string, error) {
	resp, err := req.SetDoNotParseResponse(true).Get(path)
	if err != nil {
		return "", &APIError{Kind: KindTransport, Message: "request failed", Err: err}
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		data, _ := io.ReadAll(io.LimitReader(body, 1<<20))
		return "", parseError(resp.StatusCode(), resp.Header(), data)
	}
	if _, err := io.Copy(w, body); err != nil {
		return "", &APIError{Kind: KindTransport, Message: "download interrupted", Err: err}
	}
	return attachmentName(resp.Header().Get("Content-Disposition")), nil
}

func attachmentName(disposition string) string {
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}
