// Command dbinit creates the database schema and seeds demo users and tasks.
// It is safe to run repeatedly; existing data is left alone.
package main

import (
	"context"
	"log"
	"os"

	"github.com/teamsizer/sizeup/internal/repository"
)

func main() {
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	log.Println("Initializing database...")
	store, err := repository.NewPostgresStore(dsn)
	if err != nil {
		log.Fatal(err)
	}

	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("failed to close store: %v", err)
		}
	}()

	ctx := context.Background()
	if err := store.InitSchema(ctx); err != nil {
		log.Fatal(err)
	}
	log.Println("Schema ready")

	if err := repository.Seed(ctx, store); err != nil {
		log.Fatal(err)
	}
	log.Println("Seed data ready")
}
