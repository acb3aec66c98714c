package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/evorun/internal/common"
	"github.com/dmitrijs2005/evorun/internal/metrics"
)

const (
	apiPrefix        = "/api/v1"
	defaultTimeout   = 10 * time.Second
	workoutsPageSize = 100
	maxErrorBody     = 4 << 10
)

// HTTPClient implements Client over the REST API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// NewHTTPClient returns a client for the server at baseURL. Every call is
// bounded by timeout; a non-positive value selects the default.
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server address %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server address %q: scheme must be http or https", baseURL)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(u.String(), "/"),
		http:    &http.Client{},
		timeout: timeout,
	}, nil
}

// request describes one call.
type request struct {
	op      string
	method  string
	path    string
	token   string
	body    io.Reader
	ctype   string
	headers map[string]string
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (string, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var out TokenResponse
	err := c.do(ctx, request{
		op:     "login",
		method: http.MethodPost,
		path:   apiPrefix + "/login/token",
		body:   strings.NewReader(form.Encode()),
		ctype:  "application/x-www-form-urlencoded",
	}, &out)
	if err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", &ServerError{StatusCode: http.StatusOK, Detail: "empty access token"}
	}
	return out.AccessToken, nil
}

func (c *HTTPClient) Register(ctx context.Context, email, password string) error {
	body, err := jsonBody(map[string]string{"email": email, "password": password})
	if err != nil {
		return err
	}
	err = c.do(ctx, request{
		op:     "register",
		method: http.MethodPost,
		path:   apiPrefix + "/users/",
		body:   body,
		ctype:  "application/json",
	}, nil)

	var se *ServerError
	if errors.As(err, &se) && (se.StatusCode == http.StatusConflict || se.StatusCode == http.StatusBadRequest) {
		return fmt.Errorf("%w: %s", common.ErrorAlreadyExists, se.Detail)
	}
	return err
}

// Ping checks that the server answers its health probe.
func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, request{op: "ping", method: http.MethodGet, path: "/healthz"}, nil)
}

func (c *HTTPClient) FetchProfile(ctx context.Context, token string) (*RemoteProfile, error) {
	var out RemoteProfile
	err := c.do(ctx, request{
		op:     "fetch_profile",
		method: http.MethodGet,
		path:   apiPrefix + "/users/me/",
		token:  token,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) PushProfile(ctx context.Context, token string, fields ProfileFields) (*RemoteProfile, error) {
	body, err := jsonBody(fields)
	if err != nil {
		return nil, err
	}
	var out RemoteProfile
	err = c.do(ctx, request{
		op:     "push_profile",
		method: http.MethodPut,
		path:   apiPrefix + "/users/me/profile",
		token:  token,
		body:   body,
		ctype:  "application/json",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) FetchWorkouts(ctx context.Context, token string) ([]RemoteWorkout, error) {
	var all []RemoteWorkout
	for skip := 0; ; skip += workoutsPageSize {
		var page []RemoteWorkout
		q := url.Values{}
		q.Set("skip", strconv.Itoa(skip))
		q.Set("limit", strconv.Itoa(workoutsPageSize))

		err := c.do(ctx, request{
			op:     "fetch_workouts",
			method: http.MethodGet,
			path:   apiPrefix + "/workouts/?" + q.Encode(),
			token:  token,
		}, &page)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < workoutsPageSize {
			return all, nil
		}
	}
}

func (c *HTTPClient) CreateWorkout(ctx context.Context, token string, payload WorkoutPayload, idempotencyKey string) (*RemoteWorkout, error) {
	body, err := jsonBody(payload)
	if err != nil {
		return nil, err
	}
	req := request{
		op:     "create_workout",
		method: http.MethodPost,
		path:   apiPrefix + "/workouts/",
		token:  token,
		body:   body,
		ctype:  "application/json",
	}
	if idempotencyKey != "" {
		req.headers = map[string]string{common.IdempotencyKeyHeaderName: idempotencyKey}
	}

	var out RemoteWorkout
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateWorkout(ctx context.Context, token string, remoteID int64, payload WorkoutPayload) (*RemoteWorkout, error) {
	body, err := jsonBody(payload)
	if err != nil {
		return nil, err
	}
	var out RemoteWorkout
	err = c.do(ctx, request{
		op:     "update_workout",
		method: http.MethodPut,
		path:   fmt.Sprintf("%s/workouts/%d", apiPrefix, remoteID),
		token:  token,
		body:   body,
		ctype:  "application/json",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteWorkout(ctx context.Context, token string, remoteID int64) error {
	return c.do(ctx, request{
		op:     "delete_workout",
		method: http.MethodDelete,
		path:   fmt.Sprintf("%s/workouts/%d", apiPrefix, remoteID),
		token:  token,
	}, nil)
}

// do sends r and decodes a 2xx JSON answer into out (when non-nil).
func (c *HTTPClient) do(ctx context.Context, r request, out any) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordClientRequest(r.op, string(Classify(err)), time.Since(start))
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.ctype != "" {
		req.Header.Set("Content-Type", r.ctype)
	}
	if r.token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+r.token)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.mapTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if err := mapStatus(resp); err != nil {
		return err
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return c.mapTransportError(ctx, err)
		}
		return &ServerError{StatusCode: resp.StatusCode, Detail: "malformed response: " + err.Error()}
	}
	return nil
}

// mapTransportError turns a failed round trip into ErrUnavailable unless the
// caller itself gave up.
func (c *HTTPClient) mapTransportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func mapStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	detail := readDetail(resp.Body)
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, detail)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, detail)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	default:
		return &ServerError{StatusCode: resp.StatusCode, Detail: detail}
	}
}

// readDetail extracts the "detail" field of an error body, falling back to
// the raw text.
func readDetail(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var body struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Detail != nil {
		if s, ok := body.Detail.(string); ok {
			return s
		}
		b, _ := json.Marshal(body.Detail)
		return string(b)
	}
	return strings.TrimSpace(string(raw))
}

func jsonBody(v any) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return bytes.NewReader(b), nil
}
