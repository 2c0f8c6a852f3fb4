package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-errors"

	"github.com/goliatone/go-converge"
)

// errorEnvelope is the JSON error shape the creative backend responds with
// on non-2xx statuses.
type errorEnvelope struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// HTTPClient implements Client against the creative backend's JSON API.
type HTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// HTTPOption customizes the HTTP client.
type HTTPOption func(*HTTPClient)

// WithAuthToken sets the bearer token attached to every request.
func WithAuthToken(token string) HTTPOption {
	return func(c *HTTPClient) {
		c.token = token
	}
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(c *HTTPClient) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewHTTPClient builds a client for the given base URL.
func NewHTTPClient(baseURL string, opts ...HTTPOption) (*HTTPClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("api base url required", errors.CategoryBadInput).
			WithTextCode("MISSING_BASE_URL")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid api base url")
	}
	c := &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

func (c *HTTPClient) StartSession(ctx context.Context, req StartSessionRequest) (*StartSessionResult, error) {
	var res StartSessionResult
	if err := c.post(ctx, "/v1/sessions", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) SelectOption(ctx context.Context, sessionID string, dimension converge.Dimension, optionID string) (*SelectOptionResult, error) {
	body := map[string]string{
		"dimension": string(dimension),
		"option_id": optionID,
	}
	var res SelectOptionResult
	if err := c.post(ctx, "/v1/sessions/"+url.PathEscape(sessionID)+"/select", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Regenerate(ctx context.Context, sessionID string, dimension converge.Dimension) (*RegenerateResult, error) {
	body := map[string]string{"dimension": string(dimension)}
	var res RegenerateResult
	if err := c.post(ctx, "/v1/sessions/"+url.PathEscape(sessionID)+"/regenerate", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) GenerateFinalFrame(ctx context.Context, sessionID string) (*FinalFrameResult, error) {
	var res FinalFrameResult
	if err := c.post(ctx, "/v1/sessions/"+url.PathEscape(sessionID)+"/final-frame", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) GenerateCameraMotion(ctx context.Context, sessionID string) (*CameraMotionResult, error) {
	var res CameraMotionResult
	if err := c.post(ctx, "/v1/sessions/"+url.PathEscape(sessionID)+"/camera-motion", nil, &res); err != nil {
		return nil, err
	}
	res.CameraPaths = converge.NormalizeCameraPaths(res.CameraPaths)
	return &res, nil
}

func (c *HTTPClient) SelectCameraMotion(ctx context.Context, sessionID, motionID string) error {
	body := map[string]string{"motion_id": motionID}
	return c.post(ctx, "/v1/sessions/"+url.PathEscape(sessionID)+"/camera-motion/select", body, nil)
}

func (c *HTTPClient) GenerateSubjectMotion(ctx context.Context, sessionID, description string) (*SubjectMotionResult, error) {
	body := map[string]string{"description": description}
	var res SubjectMotionResult
	if err := c.post(ctx, "/v1/sessions/"+url.PathEscape(sessionID)+"/subject-motion", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) FinalizeSession(ctx context.Context, sessionID string) (*FinalizeResult, error) {
	var res FinalizeResult
	if err := c.post(ctx, "/v1/sessions/"+url.PathEscape(sessionID)+"/finalize", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) GetActiveSession(ctx context.Context) (*converge.SessionSnapshot, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/v1/sessions/active", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError("getActiveSession", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp)
	}
	var snap converge.SessionSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, transportError("getActiveSession", err)
	}
	if strings.TrimSpace(snap.SessionID) == "" {
		return nil, nil
	}
	snap.CameraPaths = converge.NormalizeCameraPaths(snap.CameraPaths)
	return &snap, nil
}

func (c *HTTPClient) AbandonSession(ctx context.Context, sessionID string, deleteImages bool) (*AbandonResult, error) {
	body := map[string]bool{"delete_images": deleteImages}
	var res AbandonResult
	if err := c.post(ctx, "/v1/sessions/"+url.PathEscape(sessionID)+"/abandon", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, errors.CategoryBadInput, "encode request body")
		}
		payload = bytes.NewReader(raw)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, payload)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return transportError(path, err)
	}
	return nil
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// decodeError maps the backend's JSON error envelope onto a structured
// application error carrying the closed text codes. Details ride along as
// metadata so the classifier can read required/available amounts or an
// attached session snapshot.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || strings.TrimSpace(env.Code) == "" {
		return errors.New(
			fmt.Sprintf("creative api returned status %d", resp.StatusCode),
			errors.CategoryExternal,
		).WithTextCode(converge.ErrCodeGenerationFailed)
	}

	base := baseForCode(env.Code)
	return converge.CloneSessionError(base, env.Message, nil, env.Details)
}

func baseForCode(code string) *errors.Error {
	switch code {
	case converge.ErrCodeInsufficientBalance:
		return converge.ErrInsufficientBalance
	case converge.ErrCodeActiveSessionExists:
		return converge.ErrActiveSessionExists
	case converge.ErrCodeSessionExpired:
		return converge.ErrSessionExpired
	case converge.ErrCodeSessionNotFound:
		return converge.ErrSessionNotFound
	case converge.ErrCodeRegenerationLimit:
		return converge.ErrRegenerationLimit
	case converge.ErrCodeGenerationFailed:
		return converge.ErrGenerationFailed
	default:
		return errors.New("creative api error", errors.CategoryExternal).WithTextCode(code)
	}
}

func transportError(op string, err error) error {
	return errors.Wrap(err, errors.CategoryExternal, fmt.Sprintf("creative api call failed: %s", op))
}
