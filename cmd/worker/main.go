package main

import (
	"context"
	"log"

	"ai-chathub-be/internal/config"
	"ai-chathub-be/internal/pkg/logger"
	"ai-chathub-be/pkg/database"
	"ai-chathub-be/pkg/events"
	pktNats "ai-chathub-be/pkg/nats"
)

// The worker consumes thread lifecycle events off NATS for housekeeping
// that must not sit on the request path: today that is purging soft-deleted
// thread rows and their messages once the delete event has been processed.
func main() {
	cfg := config.Load()
	sysLogger := logger.NewIsolatedLogger("logs/worker.log")

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer sub.Close()

	handler := func(ctx context.Context, event events.Event) error {
		threadId, ok := event.Payload()["thread_id"].(string)
		if !ok || threadId == "" {
			return nil
		}
		sysLogger.Info("Worker", "Purging deleted thread", map[string]interface{}{
			"thread_id": threadId,
		})

		// Soft-deleted rows are already invisible to the API; hard removal
		// happens here so message payloads do not accumulate.
		if err := gormDB.WithContext(ctx).Exec(
			`DELETE FROM messages WHERE thread_id = ?`, threadId,
		).Error; err != nil {
			return err
		}
		return gormDB.WithContext(ctx).Exec(
			`DELETE FROM threads WHERE id = ? AND deleted_at IS NOT NULL`, threadId,
		).Error
	}

	if err := sub.Subscribe("events."+events.ThreadDeleted, "chathub-worker", handler); err != nil {
		log.Fatalf("Failed to subscribe: %v", err)
	}

	log.Println("✅ Worker is running")
	select {}
}
