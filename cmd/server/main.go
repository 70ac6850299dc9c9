// Command server runs the registrar backend: the EPP registry session,
// the domain and request workflows, and the HTTP API in front of them.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"registrar/internal/agencies"
	"registrar/internal/domains/cache"
	"registrar/internal/domains/dnscheck"
	domainhandler "registrar/internal/domains/handler"
	domainmetrics "registrar/internal/domains/metrics"
	domainservice "registrar/internal/domains/service"
	contactstore "registrar/internal/domains/store/contact"
	domainstore "registrar/internal/domains/store/domain"
	"registrar/internal/domains/store/information"
	"registrar/internal/epp"
	"registrar/internal/notify"
	"registrar/internal/platform/config"
	"registrar/internal/platform/httpserver"
	"registrar/internal/platform/logger"
	"registrar/internal/platform/postgres"
	platformredis "registrar/internal/platform/redis"
	requesthandler "registrar/internal/requests/handler"
	requestmetrics "registrar/internal/requests/metrics"
	requestservice "registrar/internal/requests/service"
	requeststore "registrar/internal/requests/store/request"
	"registrar/internal/roles"
	httptransport "registrar/internal/transport/http"
	"registrar/internal/users"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(cfg.Postgres)
	if err != nil {
		return err
	}

	// Without a database URL everything runs in memory, matching what
	// postgres.Open documents. Fine for development; state dies with the
	// process.
	var (
		domStore  domainservice.DomainStore       = domainstore.NewInMemory()
		conStore  domainservice.ContactStore      = contactstore.NewInMemory()
		reqStore  requestservice.RequestStore     = requeststore.NewInMemory()
		infoStore requestservice.InformationStore = information.NewInMemory()
		roleStore roles.Store                     = roles.NewInMemory()
	)
	if db != nil {
		defer db.Close()
		for _, schema := range []string{domainstore.Schema, contactstore.Schema,
			requeststore.Schema, information.Schema, roles.Schema} {
			if _, err := db.ExecContext(ctx, schema); err != nil {
				return err
			}
		}
		domStore = domainstore.NewPostgres(db)
		conStore = contactstore.NewPostgres(db)
		reqStore = requeststore.NewPostgres(db)
		infoStore = information.NewPostgres(db)
		roleStore = roles.NewPostgres(db)
	} else {
		log.Warn("no database configured; using in-memory stores")
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var sender notify.Sender = notify.Discard{}
	if len(cfg.Kafka.SeedBrokers) > 0 {
		kafka, err := notify.NewKafka(cfg.Kafka.SeedBrokers, cfg.Kafka.EmailTopic, log)
		if err != nil {
			return err
		}
		defer kafka.Close()
		sender = kafka
	}

	dial, err := epp.NewTLSDialer(cfg.EPP)
	if err != nil {
		return err
	}
	registry := epp.New(cfg.EPP, dial,
		epp.WithLogger(log),
		epp.WithMetrics(epp.NewMetrics()),
	)
	defer registry.Close(context.Background())

	domainSvcOpts := []domainservice.Option{
		domainservice.WithLogger(log),
		domainservice.WithMetrics(domainmetrics.New()),
	}
	if redisClient != nil {
		domainSvcOpts = append(domainSvcOpts,
			domainservice.WithCache(cache.NewRedis(redisClient)))
	}
	domainSvc, err := domainservice.New(
		domStore,
		conStore,
		registry,
		domainSvcOpts...,
	)
	if err != nil {
		return err
	}

	// Development stub: nothing seeds this directory yet, so requester and
	// investigator lookups fail until the identity integration lands.
	userDir := users.NewInMemory()
	log.Warn("user directory is an empty in-memory stub; seed it or wire the identity provider")
	requestSvc, err := requestservice.New(
		reqStore,
		domainSvc,
		infoStore,
		roleStore,
		userDir,
		agencies.NewStatic(agencies.DefaultFederalAgencies),
		requestservice.WithLogger(log),
		requestservice.WithMetrics(requestmetrics.New()),
		requestservice.WithSender(sender),
	)
	if err != nil {
		return err
	}

	checks := map[string]func() error{}
	if db != nil {
		checks["postgres"] = db.Ping
	}
	if redisClient != nil {
		checks["redis"] = func() error { return redisClient.Health(ctx) }
	}

	router := httptransport.NewRouter(
		domainhandler.New(domainSvc, dnscheck.New(dnscheck.WithLogger(log)), log),
		requesthandler.New(requestSvc, log),
		httptransport.RouterConfig{
			JWTSigningKey: cfg.JWTSigningKey,
			AdminToken:    cfg.AdminToken,
			HealthChecks:  checks,
		},
	)
	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting registrar", "addr", cfg.Addr, "epp_host", cfg.EPP.Host)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
