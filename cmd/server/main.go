package main // Entry point package

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/mission-dashboard/internal/client"
	"github.com/iliyamo/mission-dashboard/internal/config"
	"github.com/iliyamo/mission-dashboard/internal/dashboard"
	"github.com/iliyamo/mission-dashboard/internal/database"
	"github.com/iliyamo/mission-dashboard/internal/handler"
	"github.com/iliyamo/mission-dashboard/internal/middleware"
	"github.com/iliyamo/mission-dashboard/internal/queue"
	"github.com/iliyamo/mission-dashboard/internal/router"
	queue_publisher "github.com/iliyamo/mission-dashboard/internal/service"
	"github.com/iliyamo/mission-dashboard/internal/session"
	"github.com/iliyamo/mission-dashboard/internal/view"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb := config.NewRedisClient(cfg.Redis) // nil when Redis is unreachable
	store := sessionStore(ctx, cfg, rdb)
	mgr := session.NewManager(store, cfg.SessionTTL)

	api := client.NewAPI(cfg.APIURL, cfg.APITimeout)
	registry := dashboard.NewRegistry()
	publisher := queue_publisher.New(cfg.AMQPURL, cfg.EventsEnabled)
	cookie := middleware.CookieConfig{Name: cfg.CookieName, Secure: cfg.CookieSecure, TTL: cfg.SessionTTL}

	e := echo.New()
	e.HideBanner = true
	e.Renderer = view.NewRenderer()
	e.Use(middleware.Session(mgr, cookie))

	var limiter echo.MiddlewareFunc
	if rdb != nil {
		limiter = middleware.LimitAttempts(cfg.RateLimit, rdb)
	}
	router.RegisterRoutes(e, router.Deps{
		Auth:      handler.NewAuthHandler(api, cookie, registry),
		Dashboard: handler.NewDashboardHandler(api, cookie, registry, publisher, cfg.PageSize),
		Health:    handler.Health(registry),
		RateLimit: limiter,
	})

	var purge func() int
	if mem, ok := store.(*session.MemoryStore); ok {
		purge = mem.Purge
	}
	go sweep(ctx, registry, cfg.IdleTimeout, purge)
	if cfg.EventsEnabled && cfg.ConsumeEvents {
		go func() {
			if err := queue.StartActivityConsumer(ctx, cfg.AMQPURL, cfg.ActivityLogDir); err != nil && ctx.Err() == nil {
				log.Printf("activity consumer stopped: %v", err)
			}
		}()
	}

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, api=%s, sessions=%s)", addr, cfg.Env, cfg.APIURL, cfg.SessionStore)
	go func() {
		if err := e.Start(addr); err != nil && ctx.Err() == nil {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	publisher.Wait()
	if rdb != nil {
		_ = rdb.Close()
	}
}

// sessionStore builds the configured session backend.  Redis falls back to
// memory when the server is unreachable; MySQL is required once selected.
func sessionStore(ctx context.Context, cfg config.Config, rdb *redis.Client) session.Store {
	switch cfg.SessionStore {
	case config.StoreRedis:
		if rdb == nil {
			log.Printf("redis unreachable at %s, using in-memory sessions", cfg.Redis.Addr)
			return session.NewMemoryStore()
		}
		return session.NewRedisStore(rdb, cfg.Redis.SessionPrefix)
	case config.StoreMySQL:
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatalf("mysql: %v", err)
		}
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatalf("mysql: %v", err)
		}
		store := session.NewSQLStore(db)
		go purgeSessions(ctx, store)
		return store
	case config.StoreCookie:
		store, err := session.NewCookieStore(cfg.SessionSecret)
		if err != nil {
			log.Fatal(err)
		}
		return store
	}
	return session.NewMemoryStore()
}

// sweep drops idle dashboards and, for the in-memory store, expired
// sessions nobody came back for.
func sweep(ctx context.Context, reg *dashboard.Registry, idle time.Duration, purge func() int) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := reg.Sweep(idle); n > 0 {
				log.Printf("dropped %d idle dashboards", n)
			}
			if purge != nil {
				if n := purge(); n > 0 {
					log.Printf("purged %d expired sessions", n)
				}
			}
		}
	}
}

func purgeSessions(ctx context.Context, store *session.SQLStore) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := store.PurgeExpired(ctx, time.Now().UTC().Add(-24*time.Hour))
			if err != nil {
				log.Printf("purge sessions: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("purged %d sessions", n)
			}
		}
	}
}
