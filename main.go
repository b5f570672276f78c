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

	"github.com/NE-Resources-2025/Restful-sample-pms/internal/api"
	"github.com/NE-Resources-2025/Restful-sample-pms/internal/api/middleware"
	"github.com/NE-Resources-2025/Restful-sample-pms/internal/config"
	"github.com/NE-Resources-2025/Restful-sample-pms/internal/notify"
	"github.com/NE-Resources-2025/Restful-sample-pms/internal/repository/postgresql"
	"github.com/NE-Resources-2025/Restful-sample-pms/internal/service"
)

func main() {
	cfg := config.Load()

	db, err := postgresql.NewDB(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := postgresql.Migrate(ctx, db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	if err := postgresql.Seed(ctx, db, cfg); err != nil {
		log.Fatalf("failed to seed database: %v", err)
	}

	userRepo := postgresql.NewPgUserRepository(db)
	vehicleRepo := postgresql.NewPgVehicleRepository(db)
	slotRepo := postgresql.NewPgParkingSlotRepository(db)
	requestRepo := postgresql.NewPgSlotRequestRepository(db)
	logRepo := postgresql.NewPgLogRepository(db)

	mailer := notify.NewMailer(cfg)

	authService := service.NewAuthService(userRepo, logRepo, mailer, cfg.JWTSecret, cfg.JWTExpirationHours)
	userService := service.NewUserService(userRepo, logRepo)
	vehicleService := service.NewVehicleService(vehicleRepo, logRepo)
	slotService := service.NewSlotService(slotRepo, logRepo)
	requestService := service.NewRequestService(requestRepo, vehicleRepo, logRepo, mailer)
	logService := service.NewLogService(logRepo)

	authMw := middleware.NewAuthMiddleware(authService)

	router := api.SetupRouter(authService, userService, vehicleService,
		slotService, requestService, logService, authMw)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("server listening on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("server stopped")
}
