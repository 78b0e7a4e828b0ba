package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/code-sharad/e-com-sub000/internal/config"
	"github.com/code-sharad/e-com-sub000/internal/customers"
	"github.com/code-sharad/e-com-sub000/internal/database"
	"github.com/code-sharad/e-com-sub000/internal/handlers"
	"github.com/code-sharad/e-com-sub000/internal/middleware"
	"github.com/code-sharad/e-com-sub000/internal/notify"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	}()

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("[DB] [WARN] user index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("[DB] [WARN] order index warning: %v", err)
	}

	feed, notifier, closeFeed := changeFeed(db)
	defer closeFeed()

	engine, err := customers.NewEngine(
		database.NewProfileStore(db),
		database.NewOrderStore(db),
		feed,
		customers.Options{
			Location:        config.AppEnv.ReportLocation,
			Debounce:        config.AppEnv.RebuildDebounce,
			RefreshSchedule: config.AppEnv.StatusRefresh,
			Notifier:        notifier,
		},
	)
	if err != nil {
		log.Fatal(err)
	}
	engine.Start()

	srv := &http.Server{
		Addr:    ":" + config.AppEnv.Port,
		Handler: router(db, engine),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("[HTTP] [INFO] listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[HTTP] [ERROR] %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("[HTTP] [INFO] shutting down")
	if err := shutdown(srv, engine, 10*time.Second); err != nil {
		log.Printf("[HTTP] [ERROR] shutdown: %v", err)
	}
}

// shutdown stops the engine exactly once and then drains the server. Streams
// only end when their subscriptions do, so those are closed first.
func shutdown(srv *http.Server, engine interface{ Stop() }, timeout time.Duration) error {
	engine.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

func router(db *mongo.Database, engine *customers.Engine) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID())

	r.GET("/healthz", handlers.Health(db))

	keepAlive := config.AppEnv.StreamKeepAlive

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(config.AppEnv.JWTSecret))
	{
		admin.GET("/me", func(c *gin.Context) {
			c.JSON(200, gin.H{"ok": true})
		})

		admin.GET("/customers", handlers.GetCustomers(engine))
		admin.GET("/customers/stream", handlers.StreamCustomers(engine, keepAlive))
		admin.GET("/customers/stats", handlers.GetCustomerStats(engine))
		admin.GET("/customers/stats/stream", handlers.StreamCustomerStats(engine, keepAlive))
		admin.GET("/customers/by-email/:email", handlers.GetCustomer(engine))
		admin.GET("/customers/by-email/:email/stream", handlers.StreamCustomer(engine, keepAlive))
		admin.PATCH("/customers/:id/status", handlers.UpdateCustomerStatus(engine))
	}
	return r
}

// changeFeed picks the change notification transport. Without a feed the
// engine still answers one-shot reads and scheduled refreshes.
func changeFeed(db *mongo.Database) (customers.ChangeFeed, customers.Notifier, func()) {
	switch config.AppEnv.ChangeFeed {
	case config.FeedRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     config.AppEnv.RedisAddr,
			Password: config.AppEnv.RedisPassword,
			DB:       config.AppEnv.RedisDB,
		})
		feed := notify.NewRedisFeed(rdb)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := feed.Ping(ctx); err != nil {
			log.Printf("[FEED] [WARN] redis at %s unreachable: %v", config.AppEnv.RedisAddr, err)
		} else {
			log.Printf("[FEED] [INFO] using redis pub/sub at %s", config.AppEnv.RedisAddr)
		}
		return feed, feed, func() { _ = rdb.Close() }
	default:
		log.Println("[FEED] [INFO] using mongo change streams")
		return database.NewChangeStreamFeed(db), nil, func() {}
	}
}
