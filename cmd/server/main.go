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

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	glog "github.com/labstack/gommon/log"
	"github.com/spf13/pflag"

	"github.com/iliyamo/hotel-reservation/internal/catalog"
	"github.com/iliyamo/hotel-reservation/internal/config"
	"github.com/iliyamo/hotel-reservation/internal/database"
	"github.com/iliyamo/hotel-reservation/internal/handler"
	"github.com/iliyamo/hotel-reservation/internal/ledger"
	"github.com/iliyamo/hotel-reservation/internal/middleware"
	"github.com/iliyamo/hotel-reservation/internal/queue"
	"github.com/iliyamo/hotel-reservation/internal/repository"
	"github.com/iliyamo/hotel-reservation/internal/router"
)

func main() {
	envFile := pflag.String("env-file", ".env", "dotenv file loaded before reading the environment")
	port := pflag.String("port", "", "listen port (overrides APP_PORT)")
	storeDriver := pflag.String("store", "", "store driver: memory or mysql (overrides STORE_DRIVER)")
	catalogFile := pflag.String("catalog", "", "catalog YAML file (overrides CATALOG_FILE)")
	pflag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("env file %s: %v", *envFile, err)
	}
	overrideEnv("APP_PORT", *port)
	overrideEnv("STORE_DRIVER", *storeDriver)
	overrideEnv("CATALOG_FILE", *catalogFile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := echo.New()
	e.HideBanner = true
	if cfg.Env == "prod" {
		e.Logger.SetLevel(glog.INFO)
	} else {
		e.Logger.SetLevel(glog.DEBUG)
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeStore()

	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.HotelName != "" {
		cat.Hotel.Name = cfg.HotelName
	}
	seeded, err := catalog.Seed(ctx, store, cat)
	if err != nil {
		log.Fatalf("seed rooms: %v", err)
	}
	if seeded > 0 {
		log.Printf("seeded %d rooms from catalog", seeded)
	}

	opts := ledger.Options{
		Location:   cfg.Timezone,
		References: ledger.NewReferenceGenerator(cfg.ReferencePrefix, cfg.Timezone, nil),
		MaxRetries: cfg.MaxRetries,
		Logger:     e.Logger,
	}
	if cfg.QueueEnabled {
		pub := queue.NewPublisher(cfg.RabbitMQURL, cfg.QueueName)
		defer pub.Close()
		opts.Publisher = pub
	}
	if cfg.QueueConsumerEnabled {
		consumer := &queue.Consumer{URL: cfg.RabbitMQURL, Queue: cfg.QueueName, LogPath: cfg.BookingLogPath}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("booking consumer stopped: %v", err)
			}
		}()
	}
	l := ledger.New(store, opts)

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Printf("redis unavailable; response cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLog())
	router.RegisterRoutes(e, router.Options{
		Hotel:     handler.NewHotelHandler(l, cat.Hotel),
		Store:     store,
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, store=%s, tz=%s)", addr, cfg.Env, cfg.StoreDriver, cfg.Timezone)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// overrideEnv lets a non-empty flag win over the environment.
func overrideEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func openStore(ctx context.Context, cfg config.Config) (repository.Store, func(), error) {
	if cfg.StoreDriver != config.StoreMySQL {
		return repository.NewMemoryStore(), func() {}, nil
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return nil, nil, err
	}
	store := repository.NewMySQLStore(db)
	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return store, func() { _ = db.Close() }, nil
}
