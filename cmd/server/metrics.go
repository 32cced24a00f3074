package main

import (
	"context"
	"log"
	"time"

	"github.com/teamsizer/sizeup/internal/metrics"
	"github.com/teamsizer/sizeup/internal/repository"
)

func startMetricsCollector(store repository.Store) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		updateStoreGauges(store)
	}
}

func updateStoreGauges(store repository.Store) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tasks, err := store.GetAllTasks(ctx)
	if err != nil {
		log.Printf("Failed to get tasks for metrics: %v", err)
		return
	}
	metrics.UpdateTasksTotal(len(tasks))

	sessions, err := store.GetActiveSessions(ctx)
	if err != nil {
		log.Printf("Failed to get sessions for metrics: %v", err)
		return
	}
	metrics.UpdateActiveSessions(len(sessions))
}
