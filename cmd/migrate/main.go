package main

import (
	"log"

	"sales-copilot-be/internal/config"
	"sales-copilot-be/internal/model"
	"sales-copilot-be/pkg/database"
)

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.IsProduction())
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Running AutoMigrate for copilot tables...")

	models := []interface{}{
		&model.ChatSession{},
		&model.ChatMessage{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// Ordered listing reads message rows per session by timestamp.
	indexSQL := []string{
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_session_created ON chat_messages (chat_session_id, created_at);`,
	}
	for _, sql := range indexSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute index SQL: %v", err)
		}
	}

	log.Println("Success: database migration completed.")
}
