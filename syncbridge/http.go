package syncbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"creatorhub/models"
)

// HTTPRemote talks to a mirror server (see package mirror).
type HTTPRemote struct {
	baseURL string
	client  *http.Client
}

// NewHTTPRemote returns a remote for the mirror at baseURL. A nil client uses http.DefaultClient;
// per-call deadlines come from the context.
func NewHTTPRemote(baseURL string, client *http.Client) *HTTPRemote {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPRemote{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (r *HTTPRemote) recordURL(username string) string {
	return r.baseURL + "/mirror/" + url.PathEscape(normalizeUsername(username))
}

func (r *HTTPRemote) do(ctx context.Context, method, target string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrSyncUnavailable, method, target, err)
	}
	return resp, nil
}

func (r *HTTPRemote) Get(ctx context.Context, username string) (models.SyncPayload, error) {
	resp, err := r.do(ctx, http.MethodGet, r.recordURL(username), nil)
	if err != nil {
		return models.SyncPayload{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return models.SyncPayload{}, ErrNotFound
	default:
		return models.SyncPayload{}, fmt.Errorf("%w: mirror returned %s", ErrSyncUnavailable, resp.Status)
	}

	var payload models.SyncPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.SyncPayload{}, fmt.Errorf("%w: decode mirror record: %v", ErrSyncUnavailable, err)
	}
	return payload, nil
}

func (r *HTTPRemote) Put(ctx context.Context, username string, payload models.SyncPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode sync payload: %w", err)
	}
	resp, err := r.do(ctx, http.MethodPut, r.recordURL(username), bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%w: mirror returned %s", ErrSyncUnavailable, resp.Status)
	}
	return nil
}

func (r *HTTPRemote) Exists(ctx context.Context, username string) (bool, error) {
	resp, err := r.do(ctx, http.MethodHead, r.recordURL(username), nil)
	if err != nil {
		return false, err
	}
	resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	}
	return false, fmt.Errorf("%w: mirror returned %s", ErrSyncUnavailable, resp.Status)
}

func (r *HTTPRemote) Ping(ctx context.Context) error {
	resp, err := r.do(ctx, http.MethodGet, r.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: mirror health returned %s", ErrSyncUnavailable, resp.Status)
	}
	return nil
}
