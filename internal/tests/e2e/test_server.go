//go:build integration

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// ServerTestHelper drives the router over a real listener
type ServerTestHelper struct {
	t      *testing.T
	server *httptest.Server
	client *http.Client
}

// NewServerTestHelper resets the fixtures and starts a server for one test
func NewServerTestHelper(t *testing.T) *ServerTestHelper {
	t.Helper()
	if err := globalSuite.Reset(context.Background()); err != nil {
		t.Fatalf("reset suite: %v", err)
	}

	srv := httptest.NewServer(globalSuite.Container.Router())
	t.Cleanup(srv.Close)

	return &ServerTestHelper{
		t:      t,
		server: srv,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Response is a decoded API reply
type Response struct {
	Status int
	Raw    []byte
	Body   map[string]interface{}
}

func (h *ServerTestHelper) Do(method, path, token string, body interface{}) *Response {
	h.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			h.t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, h.server.URL+path, &buf)
	if err != nil {
		h.t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		h.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		h.t.Fatalf("read body: %v", err)
	}
	out := &Response{Status: resp.StatusCode, Raw: raw}
	_ = json.Unmarshal(raw, &out.Body)
	return out
}

// Login returns the access and refresh tokens, failing the test on non-200
func (h *ServerTestHelper) Login(email, password string) (string, string) {
	h.t.Helper()
	resp := h.Do(http.MethodPost, "/token", "", map[string]string{"email": email, "password": password})
	if resp.Status != http.StatusOK {
		h.t.Fatalf("login %s: status %d body %s", email, resp.Status, resp.Raw)
	}
	return resp.Body["access"].(string), resp.Body["refresh"].(string)
}
