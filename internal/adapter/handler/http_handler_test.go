package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rl1809/inventory-api/internal/adapter/token"
	"github.com/rl1809/inventory-api/internal/core/domain"
	"github.com/rl1809/inventory-api/internal/core/service"
	"github.com/rl1809/inventory-api/internal/port"
)

// In-memory ItemRepository
type memItemRepo struct {
	items  map[int64]domain.Item
	nextID int64
}

func newMemItemRepo() *memItemRepo {
	return &memItemRepo{items: make(map[int64]domain.Item), nextID: 1}
}

func (m *memItemRepo) CreateItem(ctx context.Context, item domain.Item) (*domain.Item, error) {
	item.ID = m.nextID
	m.nextID++
	m.items[item.ID] = item
	return &item, nil
}

func (m *memItemRepo) ListItems(ctx context.Context) ([]domain.Item, error) {
	var out []domain.Item
	for id := int64(1); id < m.nextID; id++ {
		if it, ok := m.items[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *memItemRepo) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	it, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (m *memItemRepo) UpdateItem(ctx context.Context, item domain.Item) (bool, error) {
	if _, ok := m.items[item.ID]; !ok {
		return false, nil
	}
	m.items[item.ID] = item
	return true, nil
}

func (m *memItemRepo) DeleteItem(ctx context.Context, id int64) (bool, error) {
	if _, ok := m.items[id]; !ok {
		return false, nil
	}
	delete(m.items, id)
	return true, nil
}

// In-memory UserRepository
type memUserRepo struct {
	users  map[string]domain.User
	nextID int64
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]domain.User), nextID: 1}
}

func (m *memUserRepo) CreateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	if _, ok := m.users[user.Username]; ok {
		return nil, port.ErrDuplicateUsername
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.Username] = user
	return &user, nil
}

func (m *memUserRepo) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// In-memory ItemCache
type memItemCache struct {
	entries map[int64]domain.Item
}

func newMemItemCache() *memItemCache {
	return &memItemCache{entries: make(map[int64]domain.Item)}
}

func (m *memItemCache) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	it, ok := m.entries[id]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (m *memItemCache) SetItem(ctx context.Context, item domain.Item, ttl time.Duration) error {
	m.entries[item.ID] = item
	return nil
}

func (m *memItemCache) DeleteItem(ctx context.Context, id int64) error {
	delete(m.entries, id)
	return nil
}

type testServer struct {
	*httptest.Server
	t *testing.T
}

func newTestServer(t *testing.T) *testServer {
	jwtAdapter := token.NewJWTAdapter("test-secret", 15*time.Minute, time.Hour)
	items := service.NewItemService(newMemItemRepo(), newMemItemCache(), 15*time.Minute)
	auth := service.NewAuthService(newMemUserRepo(), jwtAdapter)
	h := NewHTTPHandler(items, auth, jwtAdapter)

	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, t: t}
}

func (ts *testServer) do(method, path, bearer string, body any) (*http.Response, []byte) {
	ts.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			ts.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		ts.t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		ts.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	return resp, buf.Bytes()
}

// register + login, returning the access token.
func (ts *testServer) login(username string) string {
	ts.t.Helper()

	resp, body := ts.do(http.MethodPost, "/auth/register/", "", map[string]string{
		"username": username, "password": "pw-" + username, "email": username + "@example.com",
	})
	if resp.StatusCode != http.StatusCreated {
		ts.t.Fatalf("register: status %d body %s", resp.StatusCode, body)
	}

	resp, body = ts.do(http.MethodPost, "/auth/login/", "", map[string]string{
		"username": username, "password": "pw-" + username,
	})
	if resp.StatusCode != http.StatusOK {
		ts.t.Fatalf("login: status %d body %s", resp.StatusCode, body)
	}

	var tokens struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	if err := json.Unmarshal(body, &tokens); err != nil {
		ts.t.Fatalf("decode tokens: %v", err)
	}
	if tokens.Access == "" || tokens.Refresh == "" {
		ts.t.Fatal("expected both tokens from login")
	}
	return tokens.Access
}

func TestRegister_MissingFields(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(http.MethodPost, "/auth/register/", "", map[string]string{
		"username": "alice", "password": "pw",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var errBody map[string]string
	if err := json.Unmarshal(body, &errBody); err != nil || errBody["error"] == "" {
		t.Errorf("expected error body, got %s", body)
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	ts := newTestServer(t)
	ts.login("taken")

	resp, body := ts.do(http.MethodPost, "/auth/register/", "", map[string]string{
		"username": "taken", "password": "other", "email": "other@example.com",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 on duplicate username, got %d body %s", resp.StatusCode, body)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	ts := newTestServer(t)
	ts.login("frank")

	resp, _ := ts.do(http.MethodPost, "/auth/login/", "", map[string]string{
		"username": "frank", "password": "wrong",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}

	resp, _ = ts.do(http.MethodPost, "/auth/login/", "", map[string]string{
		"username": "ghost", "password": "whatever",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for unknown user, got %d", resp.StatusCode)
	}
}

func TestRefresh_Flow(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(http.MethodPost, "/auth/register/", "", map[string]string{
		"username": "gina", "password": "pw", "email": "gina@example.com",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register failed: %d", resp.StatusCode)
	}

	_, body := ts.do(http.MethodPost, "/auth/login/", "", map[string]string{
		"username": "gina", "password": "pw",
	})
	var tokens struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	if err := json.Unmarshal(body, &tokens); err != nil {
		t.Fatalf("decode tokens: %v", err)
	}

	resp, body = ts.do(http.MethodPost, "/auth/refresh/", "", map[string]string{"refresh": tokens.Refresh})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from refresh, got %d", resp.StatusCode)
	}
	var renewed struct {
		Access string `json:"access"`
	}
	if err := json.Unmarshal(body, &renewed); err != nil || renewed.Access == "" {
		t.Fatalf("expected new access token, got %s", body)
	}

	// An access token is not a refresh token.
	resp, _ = ts.do(http.MethodPost, "/auth/refresh/", "", map[string]string{"refresh": tokens.Access})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 refreshing with an access token, got %d", resp.StatusCode)
	}
}

func TestItems_RequireAuth(t *testing.T) {
	ts := newTestServer(t)

	cases := []struct {
		method, path string
	}{
		{http.MethodGet, "/items/"},
		{http.MethodPost, "/items/"},
		{http.MethodGet, "/items/1/"},
		{http.MethodPut, "/items/1/"},
		{http.MethodDelete, "/items/1/"},
	}
	for _, tc := range cases {
		resp, body := ts.do(tc.method, tc.path, "", map[string]any{"name": "x"})
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s %s without token: expected 401, got %d", tc.method, tc.path, resp.StatusCode)
		}
		var errBody map[string]string
		if err := json.Unmarshal(body, &errBody); err != nil || errBody["error"] == "" {
			t.Errorf("%s %s: expected error body, got %s", tc.method, tc.path, body)
		}
	}

	// Garbage bearer token is a 401 too.
	resp, _ := ts.do(http.MethodGet, "/items/", "not-a-token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for garbage token, got %d", resp.StatusCode)
	}
}

func TestListItems_EmptyIsArray(t *testing.T) {
	ts := newTestServer(t)
	access := ts.login("lister")

	resp, body := ts.do(http.MethodGet, "/items/", access, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if string(bytes.TrimSpace(body)) != "[]" {
		t.Errorf("expected [] for empty inventory, got %s", body)
	}
}

func TestCreateItem_ValidationErrors(t *testing.T) {
	ts := newTestServer(t)
	access := ts.login("validator")

	resp, body := ts.do(http.MethodPost, "/items/", access, map[string]any{
		"description": "no name", "quantity": -1, "price": 5.0,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body %s", resp.StatusCode, body)
	}

	var errs map[string][]string
	if err := json.Unmarshal(body, &errs); err != nil {
		t.Fatalf("expected field-error map, got %s", body)
	}
	if len(errs["name"]) == 0 {
		t.Errorf("expected name error, got %v", errs)
	}
	if len(errs["quantity"]) == 0 {
		t.Errorf("expected quantity error, got %v", errs)
	}
}

func TestCreateItem_WrongTypes(t *testing.T) {
	ts := newTestServer(t)
	access := ts.login("typist")

	resp, body := ts.do(http.MethodPost, "/items/", access, map[string]any{
		"name": "ok", "description": "ok", "quantity": "ten", "price": 1.0,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body %s", resp.StatusCode, body)
	}

	var errs map[string][]string
	if err := json.Unmarshal(body, &errs); err != nil || len(errs["quantity"]) == 0 {
		t.Errorf("expected quantity type error, got %s", body)
	}
}

func TestItemLifecycle(t *testing.T) {
	ts := newTestServer(t)
	access := ts.login("owner")

	// Create
	resp, body := ts.do(http.MethodPost, "/items/", access, map[string]any{
		"name": "Test Item", "description": "Test Description", "quantity": 10, "price": 100.00,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d body %s", resp.StatusCode, body)
	}

	var created itemJSON
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode created item: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if created.Name != "Test Item" || created.Quantity != 10 || created.Price != 100.00 {
		t.Errorf("created item does not echo payload: %+v", created)
	}

	itemPath := fmt.Sprintf("/items/%d/", created.ID)

	// Read-after-create
	resp, body = ts.do(http.MethodGet, itemPath, access, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", resp.StatusCode)
	}
	var fetched itemJSON
	if err := json.Unmarshal(body, &fetched); err != nil {
		t.Fatalf("decode fetched item: %v", err)
	}
	if fetched != created {
		t.Errorf("get after create: got %+v, want %+v", fetched, created)
	}

	// Update
	resp, body = ts.do(http.MethodPut, itemPath, access, map[string]any{
		"name": "Updated Item", "description": "Test Description", "quantity": 8, "price": 100.00,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put: expected 200, got %d body %s", resp.StatusCode, body)
	}
	var updated itemJSON
	if err := json.Unmarshal(body, &updated); err != nil {
		t.Fatalf("decode updated item: %v", err)
	}
	if updated.Name != "Updated Item" || updated.Quantity != 8 {
		t.Errorf("put did not apply fields: %+v", updated)
	}

	// Read must observe the update, never the stale snapshot.
	_, body = ts.do(http.MethodGet, itemPath, access, nil)
	if err := json.Unmarshal(body, &fetched); err != nil {
		t.Fatalf("decode re-fetched item: %v", err)
	}
	if fetched.Name != "Updated Item" {
		t.Errorf("get after put returned stale name %q", fetched.Name)
	}

	// Delete
	resp, body = ts.do(http.MethodDelete, itemPath, access, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", resp.StatusCode)
	}
	if len(bytes.TrimSpace(body)) != 0 {
		t.Errorf("delete: expected empty body, got %s", body)
	}

	// Gone
	resp, _ = ts.do(http.MethodGet, itemPath, access, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete: expected 404, got %d", resp.StatusCode)
	}
	resp, _ = ts.do(http.MethodDelete, itemPath, access, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", resp.StatusCode)
	}
}

func TestGetItem_NeverCreated(t *testing.T) {
	ts := newTestServer(t)
	access := ts.login("seeker")

	resp, body := ts.do(http.MethodGet, "/items/9999/", access, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	var errBody map[string]string
	if err := json.Unmarshal(body, &errBody); err != nil || errBody["error"] == "" {
		t.Errorf("expected error body, got %s", body)
	}
}

func TestUpdateItem_NotFoundBeforeValidation(t *testing.T) {
	ts := newTestServer(t)
	access := ts.login("updater")

	// Unknown id wins over the invalid payload.
	resp, _ := ts.do(http.MethodPut, "/items/424242/", access, map[string]any{"name": ""})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown id, got %d", resp.StatusCode)
	}
}

func TestUpdateItem_InvalidPayload(t *testing.T) {
	ts := newTestServer(t)
	access := ts.login("strict")

	resp, body := ts.do(http.MethodPost, "/items/", access, map[string]any{
		"name": "n", "description": "d", "quantity": 1, "price": 1.0,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create failed: %d", resp.StatusCode)
	}
	var created itemJSON
	json.Unmarshal(body, &created)

	resp, body = ts.do(http.MethodPut, fmt.Sprintf("/items/%d/", created.ID), access, map[string]any{
		"name": "n", "description": "d", "quantity": 1, "price": -3.0,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body %s", resp.StatusCode, body)
	}
	var errs map[string][]string
	if err := json.Unmarshal(body, &errs); err != nil || len(errs["price"]) == 0 {
		t.Errorf("expected price error, got %s", body)
	}

	// The record is untouched.
	_, body = ts.do(http.MethodGet, fmt.Sprintf("/items/%d/", created.ID), access, nil)
	var after itemJSON
	json.Unmarshal(body, &after)
	if after != created {
		t.Errorf("invalid put mutated the item: %+v", after)
	}
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(http.MethodGet, "/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var health map[string]string
	if err := json.Unmarshal(body, &health); err != nil || health["status"] != "ok" {
		t.Errorf("unexpected health body: %s", body)
	}
}
