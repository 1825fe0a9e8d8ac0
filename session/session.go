package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/albert-labs/albert-go/debugctx"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultMediaType = "application/json"
	maxResponseBytes = 1 << 20
	requestIDHeader  = "x-request-id"
)

// Config describes one Albert API endpoint and how to authenticate against
// it. Exactly one of Token and OAuth2 must be set.
type Config struct {
	BaseURL        string
	Token          string
	OAuth2         *OAuth2Config
	DefaultHeaders map[string]string
	HTTPClient     *http.Client
	Timeout        time.Duration
}

// OAuth2Config holds client-credentials settings for automatic token refresh.
type OAuth2Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scope        string
}

// Session is a shared HTTP client for one Albert endpoint. It joins paths
// onto the base URL, applies default headers and authentication, tags every
// request with an id, and classifies error statuses into typed faults. A
// Session is safe for concurrent use.
type Session struct {
	baseURL        *url.URL
	defaultHeaders map[string]string
	client         *http.Client
	auth           authConfig

	tokenMu        sync.Mutex
	accessToken    string
	tokenExpiresAt time.Time
}

func New(cfg Config) (*Session, error) {
	baseURL, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	auth, err := buildAuthConfig(cfg)
	if err != nil {
		return nil, err
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	session := &Session{
		baseURL:        baseURL,
		defaultHeaders: cloneStringMap(cfg.DefaultHeaders),
		client:         client,
		auth:           auth,
	}
	if auth.mode == authModeBearer {
		session.accessToken = auth.bearerToken
		session.tokenExpiresAt = auth.bearerExpiresAt
	}
	return session, nil
}

// Request is one API call. Body is JSON-encoded when non-nil; Query values
// are merged onto the resolved URL in sorted key order.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Response is the decoded-enough result of a call: the raw body plus the bits
// callers branch on. PartialSuccess is true for 206 responses from bulk
// endpoints.
type Response struct {
	StatusCode     int
	Header         http.Header
	Body           []byte
	PartialSuccess bool
}

func (s *Session) Do(ctx context.Context, req Request) (Response, error) {
	request, err := s.newRequest(ctx, req)
	if err != nil {
		return Response{}, err
	}

	response, err := s.doRequest(ctx, request)
	if err != nil {
		return Response{}, transportError("remote request failed", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return Response{}, transportError("failed to read remote response body", err)
	}

	if response.StatusCode >= http.StatusBadRequest {
		return Response{}, classifyStatusError(response.StatusCode, body)
	}

	return Response{
		StatusCode:     response.StatusCode,
		Header:         response.Header.Clone(),
		Body:           body,
		PartialSuccess: response.StatusCode == http.StatusPartialContent,
	}, nil
}

// JSON issues the request and unmarshals the response body into out. A nil
// out or an empty body skips decoding.
func (s *Session) JSON(ctx context.Context, req Request, out any) error {
	response, err := s.Do(ctx, req)
	if err != nil {
		return err
	}
	return decodeInto(response.Body, out)
}

func (s *Session) Get(ctx context.Context, path string, query url.Values, out any) error {
	return s.JSON(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

func (s *Session) Post(ctx context.Context, path string, body, out any) error {
	return s.JSON(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

func (s *Session) Put(ctx context.Context, path string, body, out any) error {
	return s.JSON(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

func (s *Session) Patch(ctx context.Context, path string, body any) error {
	return s.JSON(ctx, Request{Method: http.MethodPatch, Path: path, Body: body}, nil)
}

func (s *Session) Delete(ctx context.Context, path string) error {
	return s.JSON(ctx, Request{Method: http.MethodDelete, Path: path}, nil)
}

func (s *Session) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		return nil, validationError("request method is required", nil)
	}
	if strings.TrimSpace(req.Path) == "" {
		return nil, validationError("request path is required", nil)
	}

	targetURL, err := s.resolveRequestURL(req.Path, req.Query)
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	hasBody := req.Body != nil
	if hasBody {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, internalError("failed to encode request body", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, targetURL, bodyReader)
	if err != nil {
		return nil, internalError("failed to create remote request", err)
	}

	request.Header.Set("Accept", defaultMediaType)
	if hasBody {
		request.Header.Set("Content-Type", defaultMediaType)
	}
	request.Header.Set(requestIDHeader, uuid.NewString())

	if len(s.defaultHeaders) > 0 {
		keys := make([]string, 0, len(s.defaultHeaders))
		for key := range s.defaultHeaders {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			request.Header.Set(key, s.defaultHeaders[key])
		}
	}

	if err := s.applyAuth(ctx, request); err != nil {
		return nil, err
	}

	return request, nil
}

func (s *Session) resolveRequestURL(requestPath string, query url.Values) (string, error) {
	if parsed, err := url.Parse(requestPath); err == nil && parsed.Scheme != "" {
		return "", validationError("request path must be relative to the base URL", nil)
	}

	target := *s.baseURL
	target.Path = joinBaseAndRequestPath(s.baseURL.Path, requestPath)

	values := target.Query()
	for key, entries := range query {
		for _, entry := range entries {
			values.Add(key, entry)
		}
	}
	target.RawQuery = values.Encode()

	return target.String(), nil
}

func (s *Session) doRequest(ctx context.Context, request *http.Request) (*http.Response, error) {
	debugctx.Printf(ctx, "http request method=%q url=%q", request.Method, request.URL.Redacted())

	response, err := s.client.Do(request)
	if err != nil {
		debugctx.Printf(ctx, "http request failed method=%q url=%q error=%v",
			request.Method, request.URL.Redacted(), err)
		return nil, err
	}

	debugctx.Printf(ctx, "http response method=%q url=%q status=%d",
		request.Method, request.URL.Redacted(), response.StatusCode)
	return response, nil
}

func classifyStatusError(statusCode int, body []byte) error {
	message := fmt.Sprintf("remote request failed with status %d: %s", statusCode, summarizeBody(body))

	switch statusCode {
	case http.StatusUnauthorized:
		return authError(message, nil)
	case http.StatusForbidden:
		return forbiddenError(message, nil)
	case http.StatusNotFound:
		return notFoundError(message, nil)
	case http.StatusConflict:
		return conflictError(message, nil)
	}

	if statusCode >= 400 && statusCode < 500 {
		return badRequestError(message, nil)
	}
	return transportError(message, nil)
}

func summarizeBody(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "<empty>"
	}
	if len(trimmed) > 512 {
		return trimmed[:512] + "..."
	}
	return trimmed
}

func decodeInto(body []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return internalError("remote response is not valid JSON", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, validationError("base URL is required", nil)
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, validationError("base URL is invalid", err)
	}
	return parsed, nil
}

func joinBaseAndRequestPath(basePath, requestPath string) string {
	base := strings.TrimSuffix(basePath, "/")
	request := strings.TrimPrefix(strings.TrimSpace(requestPath), "/")
	if request == "" {
		if base == "" {
			return "/"
		}
		return base
	}
	return base + "/" + request
}

func cloneStringMap(values map[string]string) map[string]string {
	if len(values) == 0 {
		return nil
	}
	cloned := make(map[string]string, len(values))
	for key, value := range values {
		cloned[key] = value
	}
	return cloned
}
