package httpx

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Tortugo2120/Licorer-a-360/internal/domain"
	"github.com/Tortugo2120/Licorer-a-360/internal/repository"
	"github.com/Tortugo2120/Licorer-a-360/internal/service/auth"
	"github.com/Tortugo2120/Licorer-a-360/internal/service/catalog"
	"github.com/Tortugo2120/Licorer-a-360/internal/service/purchase"
	"github.com/Tortugo2120/Licorer-a-360/internal/ws"
)

// Router wires HTTP endpoints to services.
type Router struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	auth     auth.Service
	catalog  catalog.Service
	purchase purchase.Service
	upgrader websocket.Upgrader
	limiter  RateLimiter
	dbHealth func(context.Context) error

	metricsOnce        sync.Once
	metricsInitialized bool
	requestTotal       *prometheus.CounterVec
	requestLatency     *prometheus.HistogramVec
	rateLimitHits      *prometheus.CounterVec
}

const (
	rateWindowDefault  = time.Minute
	rateWindowRealtime = 30 * time.Second
	rateLimitRegister  = 5
	rateLimitLogin     = 12
	rateLimitUserWrite = 60
	rateLimitUserRead  = 120
	rateLimitWebsocket = 30
	healthCheckTimeout = 2 * time.Second
)

// purchasesFeed must match the channel the purchase service publishes to.
const purchasesFeed = "compras"

// NewRouter assembles routes with dependencies.
func NewRouter(logger *slog.Logger, authSvc auth.Service, catalogSvc catalog.Service, purchaseSvc purchase.Service, limiter RateLimiter, dbHealth func(context.Context) error) *Router {
	r := &Router{
		mux:      http.NewServeMux(),
		logger:   logger,
		auth:     authSvc,
		catalog:  catalogSvc,
		purchase: purchaseSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		limiter:  limiter,
		dbHealth: dbHealth,
	}
	if r.limiter == nil {
		r.limiter = NewMemoryRateLimiter()
	}
	r.initMetrics()
	r.register()
	return r
}

// ServeHTTP delegates to underlying mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Close releases background resources.
func (r *Router) Close() {
	if r.limiter != nil {
		r.limiter.Close()
	}
}

func (r *Router) register() {
	r.mux.HandleFunc("/healthz", r.audit(r.handleHealthz))
	r.mux.Handle("/metrics", promhttp.Handler())

	r.mux.HandleFunc("/auth/register", r.audit(r.withRateLimit("auth_register", rateLimitRegister, rateWindowDefault, rateLimitKeyIP, r.handleRegister)))
	r.mux.HandleFunc("/auth/login", r.audit(r.withRateLimit("auth_login", rateLimitLogin, rateWindowDefault, rateLimitKeyIP, r.handleLogin)))
	r.mux.HandleFunc("/auth/verify-token", r.audit(r.handleVerifyToken))
	r.mux.HandleFunc("/auth/me", r.audit(r.handleMe))

	r.mux.HandleFunc("/usuarios", r.audit(r.handlerAuthRate("usuarios", rateLimitUserRead, rateWindowDefault, r.handleUsers)))
	r.mux.HandleFunc("/usuarios/", r.audit(r.handlerAuthRate("usuarios", rateLimitUserWrite, rateWindowDefault, r.handleUserByID)))
	r.mux.HandleFunc("/productos", r.audit(r.handlerAuthRate("productos", rateLimitUserWrite, rateWindowDefault, r.handleProducts)))
	r.mux.HandleFunc("/productos/", r.audit(r.handlerAuthRate("productos", rateLimitUserWrite, rateWindowDefault, r.handleProductByID)))
	r.mux.HandleFunc("/categorias", r.audit(r.handlerAuthRate("categorias", rateLimitUserWrite, rateWindowDefault, r.handleCategories)))
	r.mux.HandleFunc("/categorias/", r.audit(r.handlerAuthRate("categorias", rateLimitUserWrite, rateWindowDefault, r.handleCategoryByID)))
	r.mux.HandleFunc("/variantes", r.audit(r.handlerAuthRate("variantes", rateLimitUserWrite, rateWindowDefault, r.handleVariants)))
	r.mux.HandleFunc("/variantes/", r.audit(r.handlerAuthRate("variantes", rateLimitUserWrite, rateWindowDefault, r.handleVariantByID)))
	r.mux.HandleFunc("/compras", r.audit(r.handlerAuthRate("compras", rateLimitUserWrite, rateWindowDefault, r.handlePurchases)))
	r.mux.HandleFunc("/compras/", r.audit(r.handlerAuthRate("compras", rateLimitUserWrite, rateWindowDefault, r.handlePurchaseByID)))
	r.mux.HandleFunc("/detalle_compras", r.audit(r.handlerAuthRate("detalle_compras", rateLimitUserWrite, rateWindowDefault, r.handlePurchaseDetails)))
	r.mux.HandleFunc("/detalle_compras/", r.audit(r.handlerAuthRate("detalle_compras", rateLimitUserWrite, rateWindowDefault, r.handlePurchaseDetailByID)))

	r.mux.HandleFunc("/ws/compras", r.audit(r.handlerAuthRate("ws_compras", rateLimitWebsocket, rateWindowRealtime, r.handlePurchasesWS)))
}

func (r *Router) handleRegister(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Nombres    string `json:"nombres"`
		Apellidos  string `json:"apellidos"`
		Correo     string `json:"correo"`
		Contrasena string `json:"contrasena"`
		DNI        string `json:"dni"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, err := r.auth.Register(req.Context(), auth.RegisterInput{
		Nombres:    payload.Nombres,
		Apellidos:  payload.Apellidos,
		Correo:     payload.Correo,
		Contrasena: payload.Contrasena,
		DNI:        payload.DNI,
	})
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) || errors.Is(err, auth.ErrMissingFields) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		r.logger.Error("registration failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, user.Public())
}

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Correo     string `json:"correo"`
		Contrasena string `json:"contrasena"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	token, err := r.auth.Login(req.Context(), payload.Correo, payload.Contrasena)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeUnauthorized(w, err.Error())
			return
		}
		r.logger.Error("login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

func (r *Router) handleVerifyToken(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	user, ok := r.resolveBearer(w, req)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":   true,
		"usuario": user.Public(),
	})
}

func (r *Router) handleMe(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	user, ok := r.resolveBearer(w, req)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}

// resolveBearer authenticates the request and applies the per-user read
// limit, the same way authenticated routes do after requireAuth.
func (r *Router) resolveBearer(w http.ResponseWriter, req *http.Request) (*domain.User, bool) {
	ctx, user, ok := r.ensureAuth(w, req)
	if !ok {
		return nil, false
	}
	if setter, ok := w.(contextSetter); ok {
		setter.SetContext(ctx)
	}
	req = req.WithContext(ctx)
	key := r.rateLimitKeyUser(req)
	if key == "" {
		key = rateLimitKeyIP(req)
	}
	decision := r.limiter.Allow(key, rateLimitUserRead, rateWindowDefault)
	r.applyRateHeaders(w, rateLimitUserRead, decision)
	if !decision.allowed {
		r.recordRateLimitHit(req.URL.Path, rateMetricKey(key))
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return nil, false
	}
	return user, true
}

func (r *Router) handleUsers(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	users, err := r.auth.ListUsers(req.Context())
	if err != nil {
		r.logger.Error("list users failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	views := make([]domain.PublicUser, 0, len(users))
	for i := range users {
		views = append(views, users[i].Public())
	}
	writeJSON(w, http.StatusOK, views)
}

func (r *Router) handleUserByID(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req.URL.Path, "/usuarios/")
	if err != nil {
		r.notFound(w)
		return
	}
	if req.Method != http.MethodPut {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Nombres   string `json:"nombres"`
		Apellidos string `json:"apellidos"`
		Correo    string `json:"correo"`
		DNI       string `json:"dni"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, err := r.auth.UpdateProfile(req.Context(), id, auth.ProfileInput{
		Nombres:   payload.Nombres,
		Apellidos: payload.Apellidos,
		Correo:    payload.Correo,
		DNI:       payload.DNI,
	})
	if err != nil {
		r.writeEntityError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}

func (r *Router) handleProducts(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		products, err := r.catalog.ListProducts(req.Context())
		if err != nil {
			r.logger.Error("list products failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, products)
	case http.MethodPost:
		var product domain.Product
		if err := json.NewDecoder(req.Body).Decode(&product); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		created, err := r.catalog.CreateProduct(req.Context(), &product)
		if err != nil {
			r.writeEntityError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleProductByID(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req.URL.Path, "/productos/")
	if err != nil {
		r.notFound(w)
		return
	}
	switch req.Method {
	case http.MethodGet:
		product, err := r.catalog.GetProduct(req.Context(), id)
		if err != nil {
			r.writeEntityError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, product)
	case http.MethodPut:
		var product domain.Product
		if err := json.NewDecoder(req.Body).Decode(&product); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		product.ID = id
		updated, err := r.catalog.UpdateProduct(req.Context(), &product)
		if err != nil {
			r.writeEntityError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := r.catalog.DeleteProduct(req.Context(), id); err != nil {
			r.writeEntityError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleCategories(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		categories, err := r.catalog.ListCategories(req.Context())
		if err != nil {
			r.logger.Error("list categories failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, categories)
	case http.MethodPost:
		var category domain.Category
		if err := json.NewDecoder(req.Body).Decode(&category); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		created, err := r.catalog.CreateCategory(req.Context(), &category)
		if err != nil {
			r.writeEntityError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleCategoryByID(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req.URL.Path, "/categorias/")
	if err != nil {
		r.notFound(w)
		return
	}
	switch req.Method {
	case http.MethodGet:
		category, err := r.catalog.GetCategory(req.Context(), id)
		if err != nil {
			r.writeEntityError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, category)
	case http.MethodPut:
		var category domain.Category
		if err := json.NewDecoder(req.Body).Decode(&category); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		category.ID = id
		updated, err := r.catalog.UpdateCategory(req.Context(), &category)
		if err != nil {
			r.writeEntityError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := r.catalog.DeleteCategory(req.Context(), id); err != nil {
			r.writeEntityError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleVariants(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		variants, err := r.catalog.ListVariants(req.Context())
		if err != nil {
			r.logger.Error("list variants failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, variants)
	case http.MethodPost:
		var variant domain.Variant
		if err := json.NewDecoder(req.Body).Decode(&variant); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		created, err := r.catalog.CreateVariant(req.Context(), &variant)
		if err != nil {
			r.writeEntityError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleVariantByID(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req.URL.Path, "/variantes/")
	if err != nil {
		r.notFound(w)
		return
	}
	switch req.Method {
	case http.MethodGet:
		variant, err := r.catalog.GetVariant(req.Context(), id)
		if err != nil {
			r.writeEntityError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, variant)
	case http.MethodPut:
		var variant domain.Variant
		if err := json.NewDecoder(req.Body).Decode(&variant); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		variant.ID = id
		updated, err := r.catalog.UpdateVariant(req.Context(), &variant)
		if err != nil {
			r.writeEntityError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := r.catalog.DeleteVariant(req.Context(), id); err != nil {
			r.writeEntityError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handlePurchases(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		purchases, err := r.purchase.List(req.Context())
		if err != nil {
			r.logger.Error("list purchases failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, purchases)
	case http.MethodPost:
		var p domain.Purchase
		if err := json.NewDecoder(req.Body).Decode(&p); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		created, err := r.purchase.Create(req.Context(), &p)
		if err != nil {
			r.writeEntityError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handlePurchaseByID(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req.URL.Path, "/compras/")
	if err != nil {
		r.notFound(w)
		return
	}
	switch req.Method {
	case http.MethodGet:
		p, err := r.purchase.Get(req.Context(), id)
		if err != nil {
			r.writeEntityError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	case http.MethodPut:
		var p domain.Purchase
		if err := json.NewDecoder(req.Body).Decode(&p); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		p.ID = id
		updated, err := r.purchase.Update(req.Context(), &p)
		if err != nil {
			r.writeEntityError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := r.purchase.Delete(req.Context(), id); err != nil {
			r.writeEntityError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handlePurchaseDetails(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		details, err := r.purchase.ListDetails(req.Context())
		if err != nil {
			r.logger.Error("list purchase details failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, details)
	case http.MethodPost:
		var d domain.PurchaseDetail
		if err := json.NewDecoder(req.Body).Decode(&d); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		created, err := r.purchase.CreateDetail(req.Context(), &d)
		if err != nil {
			r.writeEntityError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handlePurchaseDetailByID(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req.URL.Path, "/detalle_compras/")
	if err != nil {
		r.notFound(w)
		return
	}
	switch req.Method {
	case http.MethodGet:
		d, err := r.purchase.GetDetail(req.Context(), id)
		if err != nil {
			r.writeEntityError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	case http.MethodPut:
		var d domain.PurchaseDetail
		if err := json.NewDecoder(req.Body).Decode(&d); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		d.ID = id
		updated, err := r.purchase.UpdateDetail(req.Context(), &d)
		if err != nil {
			r.writeEntityError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := r.purchase.DeleteDetail(req.Context(), id); err != nil {
			r.writeEntityError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handlePurchasesWS(w http.ResponseWriter, req *http.Request) {
	if _, ok := authInfoFromContext(req.Context()); !ok {
		r.logger.Error("auth context missing for purchases websocket", "path", req.URL.Path)
		writeError(w, http.StatusInternalServerError, "authorization context missing")
		return
	}
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	client := ws.NewClient(conn, r.logger)
	r.purchase.Hub().Register(purchasesFeed, client)
	go func() {
		defer func() {
			r.purchase.Hub().Unregister(purchasesFeed, client)
			client.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

func (r *Router) handleHealthz(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	components := make(map[string]any)
	status := "ok"
	if r.dbHealth != nil {
		ctx, cancel := context.WithTimeout(req.Context(), healthCheckTimeout)
		defer cancel()
		if err := r.dbHealth(ctx); err != nil {
			status = "degraded"
			components["database"] = map[string]any{
				"status": "down",
				"error":  err.Error(),
			}
		} else {
			components["database"] = map[string]any{"status": "up"}
		}
	}
	payload := map[string]any{
		"status":     status,
		"components": components,
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
	}
	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, payload)
}

func (r *Router) audit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		reqID := strings.TrimSpace(req.Header.Get("X-Request-ID"))
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)

		recorder := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next(recorder, req)

		status := recorder.status
		if status == 0 {
			status = http.StatusOK
		}
		ctx := recorder.ctx
		if ctx == nil {
			ctx = req.Context()
		}
		duration := time.Since(start)
		r.recordRequestMetrics(req.Method, req.URL.Path, status, duration)

		actor := "anonymous"
		fields := []any{
			"method", req.Method,
			"path", req.URL.Path,
			"status", status,
			"bytes", recorder.bytes,
			"duration_ms", duration.Milliseconds(),
			"request_id", reqID,
		}
		if ip := clientIP(req); ip != "" {
			fields = append(fields, "ip", ip)
		}
		if info, ok := authInfoFromContext(ctx); ok {
			actor = "user"
			fields = append(fields, "user_id", info.UserID)
		}
		fields = append(fields, "actor", actor)

		switch {
		case status >= http.StatusInternalServerError:
			r.logger.Error("http_request", fields...)
		case status >= http.StatusBadRequest:
			r.logger.Warn("http_request", fields...)
		default:
			r.logger.Info("http_request", fields...)
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	ctx    context.Context
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

func (sr *statusRecorder) SetContext(ctx context.Context) {
	sr.ctx = ctx
}

func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (sr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := sr.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, errors.New("hijacker not supported")
}

func clientIP(req *http.Request) string {
	if forwarded := strings.TrimSpace(req.Header.Get("X-Forwarded-For")); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(req.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(req.RemoteAddr)
	}
	return host
}

// writeEntityError maps service and repository failures for entity routes.
// Only known validation sentinels surface their message; anything else is a
// store failure and answers with a generic 500.
func (r *Router) writeEntityError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "no encontrado")
	case errors.Is(err, repository.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrInvalidInput), errors.Is(err, purchase.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		r.logger.Error("entity operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func pathID(path, prefix string) (int64, error) {
	raw := strings.TrimPrefix(path, prefix)
	if raw == "" || strings.Contains(raw, "/") {
		return 0, errors.New("invalid path id")
	}
	return strconv.ParseInt(raw, 10, 64)
}

func (r *Router) methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func (r *Router) notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "not found")
}
