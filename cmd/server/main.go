package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bazaar-be/internal/auth"
	"bazaar-be/internal/config"
	"bazaar-be/internal/db"
	"bazaar-be/internal/grouporder"
	"bazaar-be/internal/logger"
	"bazaar-be/internal/memstore"
	"bazaar-be/internal/metrics"
	"bazaar-be/internal/middleware"
	"bazaar-be/internal/order"
	"bazaar-be/internal/product"
	"bazaar-be/internal/rest"
	"bazaar-be/internal/user"

	"go.uber.org/zap"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// stores bundles the repositories of one backing store.
type stores struct {
	users    user.Repository
	products product.Repository
	orders   order.Repository
	groups   grouporder.Repository
	ping     func(ctx context.Context) error
	close    func() error
}

var (
	openStoreFunc   = openStore
	startServerFunc = serve
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	st, err := openStoreFunc(cfg)
	if err != nil {
		return err
	}
	defer st.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := middleware.NewLimiter()
	go limiter.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           newServer(cfg, st, limiter),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	logger.L().Info("server starting",
		zap.String("addr", srv.Addr),
		zap.String("env", cfg.AppEnv),
		zap.String("store", cfg.StoreDriver),
	)
	return startServerFunc(ctx, srv)
}

func newServer(cfg *config.Config, st *stores, limiter *middleware.Limiter) http.Handler {
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	reg := metrics.NewRegistry()

	users := user.NewService(st.users, tokens)
	products := product.NewService(st.products, users)

	return rest.NewRouter(rest.Deps{
		Users:         users,
		Products:      products,
		Orders:        order.NewService(st.orders, users, products, reg),
		GroupOrders:   grouporder.NewService(st.groups),
		Tokens:        tokens,
		Metrics:       reg,
		Limiter:       limiter,
		Ping:          st.ping,
		CORSOrigins:   cfg.CORSOrigins,
		TokenTTL:      cfg.JWTTTL,
		SecureCookies: cfg.IsProduction(),
	})
}

func openStore(cfg *config.Config) (*stores, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		m := memstore.New()
		return &stores{
			users:    m.Users(),
			products: m.Products(),
			orders:   m.Orders(),
			groups:   m.GroupOrders(),
			ping:     m.Ping,
			close:    func() error { return nil },
		}, nil
	}

	conn, err := db.NewDatabase(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.MigrateOnStart {
		if err := db.Migrate(conn.DB, db.DirectionUp); err != nil {
			_ = conn.Close()
			return nil, err
		}
		logger.L().Info("migrations applied")
	}

	return &stores{
		users:    user.NewRepository(conn),
		products: product.NewRepository(conn),
		orders:   order.NewRepository(conn),
		groups:   grouporder.NewRepository(conn),
		ping:     conn.PingContext,
		close:    conn.Close,
	}, nil
}

// serve runs srv until ctx is done, then drains in-flight requests.
func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
