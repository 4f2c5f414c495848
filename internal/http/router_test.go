package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"log/slog"

	"github.com/Tortugo2120/Licorer-a-360/internal/domain"
	"github.com/Tortugo2120/Licorer-a-360/internal/repository"
	"github.com/Tortugo2120/Licorer-a-360/internal/service/auth"
	"github.com/Tortugo2120/Licorer-a-360/internal/service/catalog"
	"github.com/Tortugo2120/Licorer-a-360/internal/service/purchase"
	"github.com/Tortugo2120/Licorer-a-360/internal/ws"
	"github.com/Tortugo2120/Licorer-a-360/pkg/config"
)

// stubStore backs every repository interface with in-memory maps. Setting
// userErr or productErr makes the matching lookups fail, simulating an
// unreachable store.
type stubStore struct {
	mu         sync.Mutex
	nextID     int64
	userErr    error
	productErr error
	users      map[int64]*domain.User
	products   map[int64]*domain.Product
	categories map[int64]*domain.Category
	variants   map[int64]*domain.Variant
	purchases  map[int64]*domain.Purchase
	details    map[int64]*domain.PurchaseDetail
}

func newStubStore() *stubStore {
	return &stubStore{
		users:      make(map[int64]*domain.User),
		products:   make(map[int64]*domain.Product),
		categories: make(map[int64]*domain.Category),
		variants:   make(map[int64]*domain.Variant),
		purchases:  make(map[int64]*domain.Purchase),
		details:    make(map[int64]*domain.PurchaseDetail),
	}
}

func (s *stubStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *stubStore) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Correo == user.Correo {
			return repository.ErrConflict
		}
	}
	user.ID = s.id()
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *stubStore) GetUserByEmail(_ context.Context, correo string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userErr != nil {
		return nil, s.userErr
	}
	for _, user := range s.users {
		if user.Correo == correo {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubStore) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *stubStore) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, *user)
	}
	return out, nil
}

func (s *stubStore) UpdateUserProfile(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.users {
		if id != user.ID && existing.Correo == user.Correo {
			return repository.ErrConflict
		}
	}
	if _, ok := s.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *stubStore) CreateProduct(_ context.Context, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	copied := *p
	s.products[p.ID] = &copied
	return nil
}

func (s *stubStore) GetProductByID(_ context.Context, id int64) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.productErr != nil {
		return nil, s.productErr
	}
	p, ok := s.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *stubStore) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, *p)
	}
	return out, nil
}

func (s *stubStore) UpdateProduct(_ context.Context, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *p
	s.products[p.ID] = &copied
	return nil
}

func (s *stubStore) DeleteProduct(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *stubStore) CreateCategory(_ context.Context, c *domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id()
	copied := *c
	s.categories[c.ID] = &copied
	return nil
}

func (s *stubStore) GetCategoryByID(_ context.Context, id int64) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (s *stubStore) ListCategories(_ context.Context) ([]domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (s *stubStore) UpdateCategory(_ context.Context, c *domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[c.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *c
	s.categories[c.ID] = &copied
	return nil
}

func (s *stubStore) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

func (s *stubStore) CreateVariant(_ context.Context, v *domain.Variant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.ID = s.id()
	copied := *v
	s.variants[v.ID] = &copied
	return nil
}

func (s *stubStore) GetVariantByID(_ context.Context, id int64) (*domain.Variant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.variants[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *v
	return &copied, nil
}

func (s *stubStore) ListVariants(_ context.Context) ([]domain.Variant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Variant, 0, len(s.variants))
	for _, v := range s.variants {
		out = append(out, *v)
	}
	return out, nil
}

func (s *stubStore) UpdateVariant(_ context.Context, v *domain.Variant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.variants[v.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *v
	s.variants[v.ID] = &copied
	return nil
}

func (s *stubStore) DeleteVariant(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.variants[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.variants, id)
	return nil
}

func (s *stubStore) CreatePurchase(_ context.Context, p *domain.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	copied := *p
	s.purchases[p.ID] = &copied
	return nil
}

func (s *stubStore) GetPurchaseByID(_ context.Context, id int64) (*domain.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.purchases[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *stubStore) ListPurchases(_ context.Context) ([]domain.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Purchase, 0, len(s.purchases))
	for _, p := range s.purchases {
		out = append(out, *p)
	}
	return out, nil
}

func (s *stubStore) UpdatePurchase(_ context.Context, p *domain.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.purchases[p.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *p
	s.purchases[p.ID] = &copied
	return nil
}

func (s *stubStore) DeletePurchase(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.purchases[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.purchases, id)
	return nil
}

func (s *stubStore) CreatePurchaseDetail(_ context.Context, d *domain.PurchaseDetail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = s.id()
	copied := *d
	s.details[d.ID] = &copied
	return nil
}

func (s *stubStore) GetPurchaseDetailByID(_ context.Context, id int64) (*domain.PurchaseDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.details[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *d
	return &copied, nil
}

func (s *stubStore) ListPurchaseDetails(_ context.Context) ([]domain.PurchaseDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.PurchaseDetail, 0, len(s.details))
	for _, d := range s.details {
		out = append(out, *d)
	}
	return out, nil
}

func (s *stubStore) UpdatePurchaseDetail(_ context.Context, d *domain.PurchaseDetail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.details[d.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *d
	s.details[d.ID] = &copied
	return nil
}

func (s *stubStore) DeletePurchaseDetail(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.details[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.details, id)
	return nil
}

func newTestRouter(t *testing.T) (*Router, *stubStore) {
	t.Helper()
	store := newStubStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.APIConfig{JWTSecret: "test-secret", AccessTokenTTL: 30 * time.Minute}

	authSvc := auth.New(store, log, cfg)
	catalogSvc := catalog.New(store, store, store, log)
	purchaseSvc := purchase.New(store, ws.NewHub(), log)

	router := NewRouter(log, authSvc, catalogSvc, purchaseSvc, nil, nil)
	t.Cleanup(router.Close)
	return router, store
}

func doJSON(t *testing.T, router *Router, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func registerAccount(t *testing.T, router *Router, correo string) {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/auth/register", "", map[string]string{
		"nombres":    "Ana",
		"apellidos":  "Torres",
		"correo":     correo,
		"contrasena": "secret123",
		"dni":        "12345678",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func loginAccount(t *testing.T, router *Router, correo string) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"correo":     correo,
		"contrasena": "secret123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	decodeBody(t, rec, &payload)
	if payload.AccessToken == "" || payload.TokenType != "bearer" {
		t.Fatalf("unexpected login payload: %+v", payload)
	}
	return payload.AccessToken
}

func TestRegisterEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/auth/register", "", map[string]string{
		"nombres":    "Ana",
		"apellidos":  "Torres",
		"correo":     "ana@x.com",
		"contrasena": "secret123",
		"dni":        "12345678",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "contrasena") || strings.Contains(rec.Body.String(), "secret123") {
		t.Fatalf("credential leaked in response: %s", rec.Body.String())
	}
	var user domain.PublicUser
	decodeBody(t, rec, &user)
	if user.ID == 0 || user.Correo != "ana@x.com" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
}

func TestRegisterDuplicateEmailEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	registerAccount(t, router, "ana@x.com")

	rec := doJSON(t, router, http.MethodPost, "/auth/register", "", map[string]string{
		"nombres":    "Otra",
		"apellidos":  "Persona",
		"correo":     "ana@x.com",
		"contrasena": "different",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Error string `json:"error"`
	}
	decodeBody(t, rec, &payload)
	if payload.Error != "correo ya registrado" {
		t.Fatalf("error = %q", payload.Error)
	}
}

func TestLoginRejectionsLookIdentical(t *testing.T) {
	router, _ := newTestRouter(t)
	registerAccount(t, router, "ana@x.com")

	unknown := doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"correo": "nadie@x.com", "contrasena": "secret123",
	})
	wrongPass := doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"correo": "ana@x.com", "contrasena": "secret124",
	})

	for name, rec := range map[string]*httptest.ResponseRecorder{"unknown correo": unknown, "wrong contrasena": wrongPass} {
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d", name, rec.Code)
		}
		if rec.Header().Get("WWW-Authenticate") != "Bearer" {
			t.Fatalf("%s: missing bearer challenge", name)
		}
	}
	if unknown.Body.String() != wrongPass.Body.String() {
		t.Fatalf("failure bodies differ: %q vs %q", unknown.Body.String(), wrongPass.Body.String())
	}
}

func TestAuthMe(t *testing.T) {
	router, _ := newTestRouter(t)
	registerAccount(t, router, "ana@x.com")
	token := loginAccount(t, router, "ana@x.com")

	rec := doJSON(t, router, http.MethodGet, "/auth/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var user domain.PublicUser
	decodeBody(t, rec, &user)
	if user.Correo != "ana@x.com" {
		t.Fatalf("correo = %q", user.Correo)
	}
	if rec.Header().Get("X-RateLimit-Limit") == "" {
		t.Fatal("expected rate limit headers on authenticated read")
	}
}

func TestVerifyToken(t *testing.T) {
	router, _ := newTestRouter(t)
	registerAccount(t, router, "ana@x.com")
	token := loginAccount(t, router, "ana@x.com")

	rec := doJSON(t, router, http.MethodGet, "/auth/verify-token", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Valid   bool              `json:"valid"`
		Usuario domain.PublicUser `json:"usuario"`
	}
	decodeBody(t, rec, &payload)
	if !payload.Valid || payload.Usuario.Correo != "ana@x.com" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestInvalidTokenRejected(t *testing.T) {
	router, _ := newTestRouter(t)
	registerAccount(t, router, "ana@x.com")

	for _, path := range []string{"/auth/verify-token", "/auth/me", "/productos"} {
		rec := doJSON(t, router, http.MethodGet, path, "not.a.jwt", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d", path, rec.Code)
		}
		if rec.Header().Get("WWW-Authenticate") != "Bearer" {
			t.Fatalf("%s: missing bearer challenge", path)
		}
		var payload struct {
			Error string `json:"error"`
		}
		decodeBody(t, rec, &payload)
		if payload.Error != "no se pudo validar las credenciales" {
			t.Fatalf("%s: error = %q", path, payload.Error)
		}
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/productos", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestProductLifecycle(t *testing.T) {
	router, _ := newTestRouter(t)
	registerAccount(t, router, "ana@x.com")
	token := loginAccount(t, router, "ana@x.com")

	rec := doJSON(t, router, http.MethodPost, "/productos", token, map[string]any{
		"nombre": "Pisco Quebranta", "precio": 55.9, "stock": 10,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created domain.Product
	decodeBody(t, rec, &created)
	if created.ID == 0 {
		t.Fatal("expected assigned product ID")
	}

	path := fmt.Sprintf("/productos/%d", created.ID)
	rec = doJSON(t, router, http.MethodGet, path, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPut, path, token, map[string]any{
		"nombre": "Pisco Acholado", "precio": 59.9, "stock": 8,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}
	var updated domain.Product
	decodeBody(t, rec, &updated)
	if updated.Nombre != "Pisco Acholado" || updated.ID != created.ID {
		t.Fatalf("unexpected update payload: %+v", updated)
	}

	rec = doJSON(t, router, http.MethodDelete, path, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, path, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", rec.Code)
	}
	var payload struct {
		Error string `json:"error"`
	}
	decodeBody(t, rec, &payload)
	if payload.Error != "no encontrado" {
		t.Fatalf("error = %q", payload.Error)
	}
}

func TestVariantRequiresExistingProduct(t *testing.T) {
	router, _ := newTestRouter(t)
	registerAccount(t, router, "ana@x.com")
	token := loginAccount(t, router, "ana@x.com")

	rec := doJSON(t, router, http.MethodPost, "/variantes", token, map[string]any{
		"id_producto": 999, "precio": 25.0, "stock": 5, "cantidad": 750,
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestRegisterRateLimit(t *testing.T) {
	router, _ := newTestRouter(t)

	var last *httptest.ResponseRecorder
	for i := 0; i <= rateLimitRegister; i++ {
		last = doJSON(t, router, http.MethodPost, "/auth/register", "", map[string]string{})
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", last.Code)
	}
	if last.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("remaining = %q", last.Header().Get("X-RateLimit-Remaining"))
	}
	if last.Header().Get("X-RateLimit-Reset") == "" {
		t.Fatal("expected reset header")
	}
}

func TestHealthz(t *testing.T) {
	store := newStubStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.APIConfig{JWTSecret: "test-secret", AccessTokenTTL: 30 * time.Minute}
	authSvc := auth.New(store, log, cfg)
	catalogSvc := catalog.New(store, store, store, log)
	purchaseSvc := purchase.New(store, ws.NewHub(), log)

	healthy := NewRouter(log, authSvc, catalogSvc, purchaseSvc, nil, func(context.Context) error { return nil })
	t.Cleanup(healthy.Close)
	rec := doJSON(t, healthy, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthy status = %d", rec.Code)
	}

	degraded := NewRouter(log, authSvc, catalogSvc, purchaseSvc, nil, func(context.Context) error { return context.DeadlineExceeded })
	t.Cleanup(degraded.Close)
	rec = doJSON(t, degraded, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("degraded status = %d", rec.Code)
	}
}

func TestStoreFailureIsInternalError(t *testing.T) {
	router, store := newTestRouter(t)
	registerAccount(t, router, "ana@x.com")
	token := loginAccount(t, router, "ana@x.com")

	store.mu.Lock()
	store.productErr = errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")
	store.mu.Unlock()

	rec := doJSON(t, router, http.MethodGet, "/productos/1", token, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Error string `json:"error"`
	}
	decodeBody(t, rec, &payload)
	if payload.Error != "internal server error" {
		t.Fatalf("error = %q", payload.Error)
	}
	if strings.Contains(rec.Body.String(), "dial tcp") {
		t.Fatalf("store error leaked to client: %s", rec.Body.String())
	}
}

func TestValidationFailureStays400(t *testing.T) {
	router, _ := newTestRouter(t)
	registerAccount(t, router, "ana@x.com")
	token := loginAccount(t, router, "ana@x.com")

	rec := doJSON(t, router, http.MethodPost, "/productos", token, map[string]any{
		"nombre": "Ron", "precio": -1,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Error string `json:"error"`
	}
	decodeBody(t, rec, &payload)
	if payload.Error != "precio debe ser mayor o igual a cero" {
		t.Fatalf("error = %q", payload.Error)
	}
}

func TestStoreOutageDuringTokenResolution(t *testing.T) {
	router, store := newTestRouter(t)
	registerAccount(t, router, "ana@x.com")
	token := loginAccount(t, router, "ana@x.com")

	store.mu.Lock()
	store.userErr = errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")
	store.mu.Unlock()

	// A validly signed token during an outage is a server error, not a
	// credential failure.
	rec := doJSON(t, router, http.MethodGet, "/auth/me", token, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("WWW-Authenticate") != "" {
		t.Fatal("server error must not carry a bearer challenge")
	}
	if strings.Contains(rec.Body.String(), "dial tcp") {
		t.Fatalf("store error leaked to client: %s", rec.Body.String())
	}

	// A bad token is still rejected as 401 before the store is consulted.
	rec = doJSON(t, router, http.MethodGet, "/auth/me", "not.a.jwt", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/healthz", "", nil)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected generated request id header")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	echo := httptest.NewRecorder()
	router.ServeHTTP(echo, req)
	if got := echo.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("request id = %q, want echo of caller value", got)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodDelete, "/auth/register", "", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}
