package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/amitmumana/inventory-order-engine-assignment/internal/app"
	"github.com/amitmumana/inventory-order-engine-assignment/internal/clock"
	"github.com/amitmumana/inventory-order-engine-assignment/internal/config"
	"github.com/amitmumana/inventory-order-engine-assignment/internal/storage/postgres"
	"github.com/amitmumana/inventory-order-engine-assignment/internal/sweeper"
	transporthttp "github.com/amitmumana/inventory-order-engine-assignment/internal/transport/http"
	"github.com/amitmumana/inventory-order-engine-assignment/migrations"
)

const startupTimeout = 5 * time.Second
const shutdownTimeout = 10 * time.Second

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	root := &cobra.Command{
		Use:           "api",
		Short:         "Inventory-aware order API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(logger), migrateCmd(logger), seedCmd(logger))

	if err := root.Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func serveCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and the expiry sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(logger)

			pool, err := openPool(cfg.DatabaseURL, true)
			if err != nil {
				return err
			}
			defer pool.Close()

			return serve(cfg, pool, logger)
		},
	}
}

func migrateCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(logger)

			pool, err := openPool(cfg.DatabaseURL, false)
			if err != nil {
				return err
			}
			defer pool.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if err := migrations.Apply(ctx, pool); err != nil {
				return fmt.Errorf("apply migrations: %w", err)
			}
			logger.Info("migrations applied")
			return nil
		},
	}
}

// openPool connects and pings; applyMigrations additionally brings the
// schema up to date before the pool is handed out.
func openPool(databaseURL string, applyMigrations bool) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	if applyMigrations {
		if err := migrations.Apply(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
	}
	return pool, nil
}

func serve(cfg config.Config, pool *pgxpool.Pool, logger *slog.Logger) error {
	clk := clock.NewSystem()

	productSvc := app.NewProductService(postgres.NewProductRepository(pool))
	cartSvc := app.NewCartService(postgres.NewCartRepository(pool), clk)
	checkoutSvc := app.NewCheckoutService(
		postgres.NewCheckoutRepository(pool), clk,
		app.WithHoldDuration(cfg.ReservationHold),
	)
	orderSvc := app.NewOrderService(postgres.NewOrderRepository(pool), clk)
	sweepSvc := app.NewSweepService(postgres.NewSweepRepository(pool), clk)
	adminSvc := app.NewAdminService(postgres.NewAdminRepository(pool), clk)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", transporthttp.HealthHandler)
	mux.Handle("/products", transporthttp.HandleProducts(productSvc))
	mux.Handle("/products/", transporthttp.HandleProducts(productSvc))
	mux.Handle("/cart", transporthttp.HandleCart(cartSvc))
	mux.Handle("/cart/items", transporthttp.HandleCart(cartSvc))
	mux.Handle("/cart/items/", transporthttp.HandleCartItem(cartSvc))
	mux.Handle("/checkout", transporthttp.HandleCheckout(checkoutSvc))
	mux.Handle("/orders", transporthttp.HandleOrders(orderSvc))
	mux.Handle("/orders/buy-now", transporthttp.HandleBuyNow(checkoutSvc))
	mux.Handle("/orders/", transporthttp.HandleOrder(orderSvc))
	mux.Handle("/admin/products/", transporthttp.RequireAdmin(transporthttp.HandleAdminProductStock(adminSvc)))
	mux.Handle("/admin/reservations", transporthttp.RequireAdmin(transporthttp.HandleAdminReservations(adminSvc)))
	mux.Handle("/admin/orders", transporthttp.RequireAdmin(transporthttp.HandleAdminOrders(adminSvc)))
	mux.Handle("/admin/orders/", transporthttp.RequireAdmin(transporthttp.HandleAdminOrders(adminSvc)))
	mux.Handle("/", transporthttp.NotFoundHandler())

	handler := transporthttp.RequestLogger(transporthttp.CORS(cfg.CORSOrigins, mux), logger)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweep := sweeper.New(sweepSvc, cfg.SweepInterval, logger)
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		sweep.Run(stopCtx)
	}()

	logger.Info("api listening", "port", cfg.Port)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown error", "error", err)
	}
	<-sweepDone
	logger.Info("server stopped")
	return nil
}
