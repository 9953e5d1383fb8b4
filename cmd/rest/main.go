package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"sales-copilot-be/internal/bootstrap"
	"sales-copilot-be/internal/config"
	"sales-copilot-be/internal/server"
	"sales-copilot-be/internal/tracer"
	"sales-copilot-be/pkg/database"

	"gorm.io/gorm"
)

func main() {
	// 0. Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	var gormDB *gorm.DB
	if cfg.Database.Driver != "memory" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.IsProduction())
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Close()

	// 4. Start Background Services
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	container.Start(ctx)

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		if err := srv.Shutdown(); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
