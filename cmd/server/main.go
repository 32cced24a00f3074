package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/teamsizer/sizeup/internal/api"
	"github.com/teamsizer/sizeup/internal/cache"
	"github.com/teamsizer/sizeup/internal/estimate"
	"github.com/teamsizer/sizeup/internal/importer"
	"github.com/teamsizer/sizeup/internal/middleware"
	"github.com/teamsizer/sizeup/internal/notify"
	"github.com/teamsizer/sizeup/internal/repository"
	"github.com/teamsizer/sizeup/internal/service"
	"github.com/teamsizer/sizeup/internal/ws"
)

const statsCacheTTL = 30 * time.Second

func main() {
	store := openStore()
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("failed to close store: %v", err)
		}
	}()

	var readCache *cache.Cache
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		c, err := cache.New(redisAddr, statsCacheTTL)
		if err != nil {
			log.Fatal(err)
		}
		readCache = c
		defer func() {
			if err := readCache.Close(); err != nil {
				log.Printf("failed to close cache: %v", err)
			}
		}()
		log.Printf("Read cache enabled at %s", redisAddr)
	}

	hub := ws.NewHub()
	go hub.Run()

	var notifier service.Notifier
	if apiKey := os.Getenv("EMAIL_API_KEY"); apiKey != "" {
		notifier = notify.NewEmailNotifier(
			apiKey,
			os.Getenv("FROM_NAME"),
			os.Getenv("FROM_ADDRESS"),
			os.Getenv("NOTIFY_ADDRESS"),
		)
	}

	jira := importer.NewJiraClient(
		os.Getenv("JIRA_BASE_URL"),
		os.Getenv("JIRA_EMAIL"),
		os.Getenv("JIRA_API_TOKEN"),
	)

	estimator := estimate.NewEstimator(rand.New(rand.NewSource(time.Now().UnixNano())))
	estimation := service.NewEstimationService(store, estimator)
	sessions := service.NewSessionCoordinator(store, hub, notifier)

	apiHandler := api.NewAPI(estimation, sessions, store, jira, readCache, hub.Handler())

	go startMetricsCollector(store)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, middleware.MetricsMiddleware(apiHandler)); err != nil {
		log.Fatal(err)
	}
}

// openStore picks Postgres when a DSN is configured, otherwise an in-memory
// store seeded with demo data for local development.
func openStore() repository.Store {
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Printf("POSTGRES_DSN not set, using in-memory store with demo data")
		store := repository.NewMemoryStore()
		if err := repository.Seed(context.Background(), store); err != nil {
			log.Fatal(err)
		}
		return store
	}

	store, err := repository.NewPostgresStore(dsn)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Connected to PostgreSQL")

	return store
}
