package db

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const (
	loginEndpoint = "/api/collections/_superusers/auth-with-password"
	// KVCollection holds one record per key with "key" and "value" fields.
	KVCollection = "kv"
)

// AuthResponse represents the authentication response from PocketBase
type AuthResponse struct {
	Token string `json:"token"`
	Admin struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"admin"`
}

// ErrorResponse represents an error response from PocketBase
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type kvRecord struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Manager is a KV backed by a PocketBase collection. It authenticates as a
// superuser and refreshes the token once when a request is rejected.
type Manager struct {
	BaseURL  string
	Client   *http.Client
	email    string
	password string

	mu        sync.Mutex
	authToken string
}

// InitManager normalises the URL and authenticates with PocketBase.
func InitManager(pbURL, email, password string) (*Manager, error) {
	if pbURL == "" || email == "" || password == "" {
		return nil, fmt.Errorf("missing required PocketBase settings: url, email, password")
	}

	baseURL := pbURL
	if !strings.HasPrefix(baseURL, "http") {
		baseURL = "http://" + baseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	manager := &Manager{
		BaseURL:  baseURL,
		Client:   &http.Client{Timeout: 10 * time.Second},
		email:    email,
		password: password,
	}

	token, err := manager.authenticate()
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	manager.setToken(token)

	log.Info("PocketBase store initialized", "url", baseURL)
	return manager, nil
}

func (m *Manager) token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authToken
}

func (m *Manager) setToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authToken = token
}

// DoRequest executes an HTTP request with auth token and automatic token refresh on 401/403.
func (m *Manager) DoRequest(req *http.Request) (*http.Response, error) {
	return m.doRequestWithRetry(req, true)
}

func (m *Manager) doRequestWithRetry(req *http.Request, canRetry bool) (*http.Response, error) {
	req.Header.Set("Authorization", m.token())

	resp, err := m.Client.Do(req)
	if err != nil {
		return nil, err
	}

	if (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) && canRetry {
		resp.Body.Close()
		log.Info("Auth token expired, refreshing...")
		token, err := m.authenticate()
		if err != nil {
			return nil, fmt.Errorf("failed to refresh token: %w", err)
		}
		m.setToken(token)
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("failed to rewind request body: %w", err)
			}
			req.Body = body
		}
		log.Info("Token refreshed, retrying request")
		return m.doRequestWithRetry(req, false)
	}

	return resp, nil
}

func (m *Manager) recordsURL() string {
	return fmt.Sprintf("%s/api/collections/%s/records", m.BaseURL, KVCollection)
}

func (m *Manager) findRecord(ctx context.Context, key string) (*kvRecord, error) {
	u, err := url.Parse(m.recordsURL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	q := u.Query()
	q.Set("filter", fmt.Sprintf("key = '%s'", strings.ReplaceAll(key, "'", `\'`)))
	q.Set("perPage", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var result struct {
		Items []kvRecord `json:"items"`
	}
	if err := m.do(req, &result); err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return nil, nil
	}
	return &result.Items[0], nil
}

func (m *Manager) Get(ctx context.Context, key string) (string, bool, error) {
	rec, err := m.findRecord(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("pocketbase get %s: %w", key, err)
	}
	if rec == nil {
		return "", false, nil
	}
	return rec.Value, true, nil
}

func (m *Manager) Set(ctx context.Context, key, value string) error {
	rec, err := m.findRecord(ctx, key)
	if err != nil {
		return fmt.Errorf("pocketbase set %s: %w", key, err)
	}

	method, endpoint := http.MethodPost, m.recordsURL()
	if rec != nil {
		method, endpoint = http.MethodPatch, m.recordsURL()+"/"+rec.ID
	}

	jsonData, err := json.Marshal(map[string]string{"key": key, "value": value})
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if err := m.do(req, nil); err != nil {
		return fmt.Errorf("pocketbase set %s: %w", key, err)
	}
	return nil
}

func (m *Manager) Delete(ctx context.Context, key string) error {
	rec, err := m.findRecord(ctx, key)
	if err != nil {
		return fmt.Errorf("pocketbase delete %s: %w", key, err)
	}
	if rec == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, m.recordsURL()+"/"+rec.ID, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if err := m.do(req, nil); err != nil {
		return fmt.Errorf("pocketbase delete %s: %w", key, err)
	}
	return nil
}

// do sends req and decodes a 2xx body into out when out is not nil.
func (m *Manager) do(req *http.Request, out any) error {
	resp, err := m.DoRequest(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp ErrorResponse
		if err := json.Unmarshal(body, &errResp); err != nil || errResp.Message == "" {
			return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
		}
		return fmt.Errorf("request failed: %s", errResp.Message)
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (m *Manager) authenticate() (string, error) {
	data := map[string]string{
		"identity": m.email,
		"password": m.password,
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, m.BaseURL+loginEndpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.Unmarshal(body, &errResp); err != nil {
			return "", fmt.Errorf("authentication failed with status %d: %s", resp.StatusCode, string(body))
		}
		return "", fmt.Errorf("authentication failed: %s", errResp.Message)
	}

	var authResp AuthResponse
	if err := json.Unmarshal(body, &authResp); err != nil {
		return "", err
	}

	return authResp.Token, nil
}
