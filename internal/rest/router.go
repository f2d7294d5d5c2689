// Package rest exposes the marketplace over JSON/HTTP.
package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"bazaar-be/internal/grouporder"
	"bazaar-be/internal/logger"
	"bazaar-be/internal/metrics"
	"bazaar-be/internal/middleware"
	"bazaar-be/internal/order"
	"bazaar-be/internal/product"
	"bazaar-be/internal/user"

	"github.com/go-michi/michi"
	"github.com/gorilla/handlers"
	"go.uber.org/zap"
)

type Deps struct {
	Users       user.Service
	Products    product.Service
	Orders      order.Service
	GroupOrders grouporder.Service
	Tokens      middleware.TokenParser
	Metrics     *metrics.Registry
	Limiter     *middleware.Limiter
	// Ping checks the backing store for the health endpoint.
	Ping          func(ctx context.Context) error
	CORSOrigins   []string
	TokenTTL      time.Duration
	SecureCookies bool
}

type Handler struct {
	users         user.Service
	products      product.Service
	orders        order.Service
	groups        grouporder.Service
	metrics       *metrics.Registry
	ping          func(ctx context.Context) error
	tokenTTL      time.Duration
	secureCookies bool
	now           func() time.Time
}

func NewRouter(d Deps) http.Handler {
	h := &Handler{
		users:         d.Users,
		products:      d.Products,
		orders:        d.Orders,
		groups:        d.GroupOrders,
		metrics:       d.Metrics,
		ping:          d.Ping,
		tokenTTL:      d.TokenTTL,
		secureCookies: d.SecureCookies,
		now:           time.Now,
	}
	if h.metrics == nil {
		h.metrics = metrics.NewRegistry()
	}

	authed := guard()
	vendor := guard(string(user.RoleVendor))
	supplier := guard(string(user.RoleSupplier))

	r := michi.NewRouter()

	r.HandleFunc("GET /api/health", h.health)

	r.HandleFunc("POST /api/auth/register", h.register)
	r.HandleFunc("POST /api/auth/login", h.login)
	r.Handle("POST /api/auth/verify-token", authed(h.verifyToken))
	r.Handle("GET /api/auth/profile", authed(h.profile))
	r.Handle("PUT /api/auth/profile", authed(h.updateProfile))

	r.HandleFunc("GET /api/products/categories", h.categories)
	r.HandleFunc("GET /api/products", h.listProducts)
	r.Handle("GET /api/products/recommendations", vendor(h.recommendations))
	r.HandleFunc("GET /api/products/supplier/{supplierId}", h.supplierProducts)
	r.HandleFunc("GET /api/products/{id}", h.getProduct)
	r.Handle("POST /api/products", supplier(h.createProduct))
	r.Handle("PUT /api/products/{id}", supplier(h.updateProduct))
	r.Handle("DELETE /api/products/{id}", supplier(h.deleteProduct))

	r.Handle("GET /api/orders/statistics/dashboard", authed(h.dashboard))
	r.Handle("GET /api/orders", authed(h.listOrders))
	r.Handle("GET /api/orders/{id}", authed(h.getOrder))
	r.Handle("POST /api/orders", vendor(h.createOrder))
	r.Handle("PUT /api/orders/{id}/status", supplier(h.updateOrderStatus))
	r.Handle("POST /api/orders/{id}/rate", vendor(h.rateOrder))

	r.HandleFunc("POST /api/cart/validate", h.validateCart)

	r.Handle("POST /api/group-orders", vendor(h.createGroupOrder))
	r.Handle("POST /api/group-orders/{id}/join", vendor(h.joinGroupOrder))
	r.Handle("GET /api/group-orders", vendor(h.listGroupOrders))

	var next http.Handler = r
	if d.Limiter != nil {
		next = d.Limiter.Middleware(next)
	}
	next = middleware.LoggingMiddleware(next)
	next = middleware.Authenticate(d.Tokens)(next)
	next = logger.RequestIDMiddleware(next)
	next = cors(d.CORSOrigins)(next)

	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{}),
		handlers.PrintRecoveryStack(true),
	)(next)
}

func guard(roles ...string) func(http.HandlerFunc) http.Handler {
	require := middleware.RequireRole(roles...)
	return func(h http.HandlerFunc) http.Handler {
		return require(h)
	}
}

func cors(origins []string) func(http.Handler) http.Handler {
	opts := []handlers.CORSOption{
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", logger.RequestIDHeader}),
		handlers.ExposedHeaders([]string{logger.RequestIDHeader}),
	}
	if len(origins) > 0 && origins[0] != "*" {
		opts = append(opts, handlers.AllowCredentials())
	}
	return handlers.CORS(opts...)
}

// recoveryLogger routes recovered panics to zap.
type recoveryLogger struct{}

func (recoveryLogger) Println(v ...interface{}) {
	logger.L().Error("recovered from panic", zap.String("panic", fmt.Sprint(v...)))
}
