package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"juridico/api/internal/app"
	"juridico/api/internal/chat"
	"juridico/api/internal/collection"
	"juridico/api/internal/config"
	"juridico/api/internal/email"
	"juridico/api/internal/export"
	"juridico/api/internal/notify"
	"juridico/api/internal/search"
	"juridico/api/internal/seed"
	"juridico/api/internal/session"
	"juridico/api/internal/storage"
	"juridico/api/internal/store"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	ctx := context.Background()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}
	dataStore := store.NewPostgresStore(db)

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	// Notifications fan out to the process log and to the buffer the
	// frontend polls.
	alerts := notify.NewBuffer()
	notifier := notify.Multi{notify.LogNotifier{}, alerts}

	data := collection.NewStore(seed.Data())
	kv := storage.NewKVBackendWithClient(redisClient, seed.Data)
	coordinator := storage.NewCoordinator(data, kv, notifier)
	data.SetSaver(coordinator)
	if err := coordinator.Initialize(ctx); err != nil {
		log.Fatalf("storage initialization failed: %v", err)
	}
	if cfg.DataDir != "" {
		coordinator.SelectDirectory(ctx, cfg.DataDir)
	}

	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
		defer meiliClient.Close()
	}
	searchService := search.NewService(meiliClient, search.NewLocal(data))
	searchService.Reindex(data.Snapshot())

	bridge := chat.NewBridge(dataStore, dataStore, chat.NewStream(redisClient))
	mailer := email.NewService(email.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
	})

	service := app.New(cfg, app.Deps{
		Data:     data,
		Storage:  coordinator,
		Profiles: dataStore,
		Sessions: session.NewRedisStoreWithClient(redisClient),
		Bridge:   bridge,
		Search:   searchService,
		Export:   export.NewService(data),
		Email:    mailer,
		Alerts:   alerts,
	})

	if err := service.Bootstrap(ctx); err != nil {
		log.Fatalf("api: admin bootstrap: %v", err)
	}

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Juridico API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
