// Command fmcli is the interactive terminal client of the fleamarket
// marketplace.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/fleamarket/internal/buildinfo"
	"github.com/dmitrijs2005/fleamarket/internal/client/cli"
	"github.com/dmitrijs2005/fleamarket/internal/client/client"
	"github.com/dmitrijs2005/fleamarket/internal/client/config"
	"github.com/dmitrijs2005/fleamarket/internal/client/credential"
	"github.com/dmitrijs2005/fleamarket/internal/client/notify"
	"github.com/dmitrijs2005/fleamarket/internal/client/repositories"
	"github.com/dmitrijs2005/fleamarket/internal/client/router"
	"github.com/dmitrijs2005/fleamarket/internal/client/services"
	"github.com/dmitrijs2005/fleamarket/internal/client/session"
	"github.com/dmitrijs2005/fleamarket/internal/logging"
)

const shutdownTimeout = 3 * time.Second

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger, err := logging.New(cfg.LogLevel, os.Stderr)
	if err != nil {
		return err
	}

	db, err := repositories.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("local db: %w", err)
	}
	defer db.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	store := credential.NewStore(db, cfg.CredentialTTL)
	sess := session.New()
	notifier := notify.NewWriter(os.Stdout)

	table, err := router.NewTable(router.DefaultRoutes())
	if err != nil {
		return err
	}
	nav, err := router.NewNavigator(table, sess,
		router.WithNotifier(notifier),
		router.WithNavigatorMetrics(router.NewMetrics(reg)),
		router.WithNavigatorLogger(logger),
	)
	if err != nil {
		return err
	}

	disp, err := client.New(cfg.BaseURL,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithCredentialSource(sess),
		client.WithLogger(logger),
		client.WithMetrics(client.NewMetrics(reg)),
		client.WithTracer(otel.Tracer("github.com/dmitrijs2005/fleamarket/client")),
	)
	if err != nil {
		return err
	}

	auth := services.NewAuthService(client.NewAPI(disp), store, sess, nav,
		services.WithNotifier(notifier),
		services.WithLogger(logger),
		services.WithLogoutDelay(cfg.LogoutDelay),
	)

	// Session teardown must happen before the user sees the message.
	disp.AddObserver(client.ObserverFunc(auth.OnFailure))
	disp.AddObserver(notify.FailureObserver(notifier))

	if err := auth.Restore(ctx); err != nil {
		logger.Warn(ctx, "restoring session", "error", err)
	}

	app := cli.NewApp(auth, sess, nav, disp, os.Stdin, os.Stdout)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	// The shell blocks on stdin, so it is left behind when a signal arrives.
	g.Go(func() error {
		defer cancel()
		done := make(chan error, 1)
		go func() { done <- app.Run(gctx) }()
		select {
		case err := <-done:
			return err
		case <-gctx.Done():
			return nil
		}
	})

	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: shutdownTimeout,
		}
		g.Go(func() error {
			logger.Info(gctx, "metrics endpoint listening", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}
