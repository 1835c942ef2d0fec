package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"plenum/internal/audit"
	"plenum/internal/domain"
	"plenum/internal/issue"
	"plenum/internal/platform/config"
	"plenum/internal/platform/db"
	"plenum/internal/platform/httpserver"
	"plenum/internal/platform/logger"
	"plenum/internal/platform/metrics"
	platformredis "plenum/internal/platform/redis"
	"plenum/internal/realtime"
	"plenum/internal/session"
	"plenum/internal/storage"
	httptransport "plenum/internal/transport/http"
	"plenum/internal/vote"
)

// main wires the shared components once and injects them into every
// connection actor; no process-wide mutable singletons.
func main() {
	if err := run(); err != nil {
		logger.New().Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	var (
		users      storage.UserStore
		sessions   storage.SessionStore
		issues     storage.IssueStore
		votes      storage.VoteStore
		auditStore audit.Store
	)
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer conn.Close()
		if err := db.Migrate(ctx, conn); err != nil {
			return err
		}
		users = storage.NewPostgresUserStore(conn)
		sessions = storage.NewPostgresSessionStore(conn)
		issues = storage.NewPostgresIssueStore(conn)
		votes = storage.NewPostgresVoteStore(conn)
		auditStore = audit.NewPostgresStore(conn)
		log.Info("using postgres storage")
	} else {
		users = storage.NewInMemoryUserStore()
		sessions = storage.NewInMemorySessionStore()
		issues = storage.NewInMemoryIssueStore()
		votes = storage.NewInMemoryVoteStore()
		auditStore = audit.NewInMemoryStore()
		log.Warn("DATABASE_URL not set, using in-memory storage")
	}
	if cfg.RedisURL != "" {
		redisClient, err := platformredis.New(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		sessions = session.NewRedisStore(redisClient.Client)
		log.Info("using redis session storage")
	}

	auditSvc := audit.NewService(0, log, m)
	auditWorker := audit.NewWorker(auditStore, auditSvc.Inbox(), log)

	sessionSvc := session.NewService(users, sessions, auditSvc, log)
	voteSvc := vote.NewService(votes, auditSvc, m, log)
	issueSvc := issue.NewService(issues, votes, auditSvc, log)

	if cfg.SeedDemo {
		if err := seedDemoIssue(ctx, issueSvc); err != nil {
			return err
		}
	}

	hub := realtime.NewHub(log, m)
	handler := httptransport.NewHandler(hub, realtime.Services{
		Issues:   issueSvc,
		Votes:    voteSvc,
		Identity: sessionSvc,
	}, issueSvc, m, log, cfg.SendQueueSize)
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(handler, registry))

	log.Info("starting plenum", "addr", cfg.Addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := auditWorker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// seedDemoIssue puts one in-progress issue in place so a fresh process has
// something to serve on connect. Skipped when any issue already exists.
func seedDemoIssue(ctx context.Context, issues *issue.Service) error {
	active, err := issues.Active(ctx)
	if err != nil {
		return err
	}
	if active != nil {
		return nil
	}
	created, err := issues.Create(ctx, domain.NewIssue{
		Title:            "Demo referendum",
		Description:      "Seeded demo issue",
		Alternatives:     []string{"Yes", "No"},
		ShowDistribution: true,
	})
	if err != nil {
		return err
	}
	_, err = issues.SetState(ctx, created.ID, domain.IssueStateInProgress)
	return err
}
