package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andrej/teamup-api/internal/config"
	"github.com/andrej/teamup-api/internal/database"
	"github.com/andrej/teamup-api/internal/handlers"
	authmw "github.com/andrej/teamup-api/internal/middleware"
	"github.com/andrej/teamup-api/internal/services"
	"github.com/andrej/teamup-api/internal/sse"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	userService := services.NewUserService(db)
	tokenService := services.NewTokenService(db)
	eventService := services.NewEventService(db)
	teamService := services.NewTeamService(db)
	requestService := services.NewRequestService(db)
	emailService := services.NewEmailService(cfg.SMTP)

	hub := sse.NewHub()
	go hub.Run()

	authHandler := handlers.NewAuthHandler(userService, tokenService, jwtService)
	userHandler := handlers.NewUserHandler(userService)
	eventHandler := handlers.NewEventHandler(eventService)
	teamHandler := handlers.NewTeamHandler(teamService, hub)
	requestHandler := handlers.NewRequestHandler(requestService, teamService, userService, emailService, hub)
	sseHandler := handlers.NewSSEHandler(hub, teamService)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.RefreshToken)
	auth.Post("/logout", authHandler.Logout)

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService))

	protected.Get("/users/me", userHandler.GetMe)
	protected.Patch("/users/me", userHandler.UpdateMe)

	protected.Get("/events", eventHandler.List)
	protected.Post("/events", eventHandler.Create)
	protected.Get("/events/:id", eventHandler.Get)
	protected.Get("/events/:id/teams", teamHandler.ListByEvent)
	protected.Get("/events/:id/my-team", teamHandler.GetMyTeam)
	protected.Get("/events/:id/my-request", requestHandler.GetMyRequest)

	protected.Post("/teams", teamHandler.Create)
	protected.Get("/teams/:id", teamHandler.Get)
	protected.Patch("/teams/:id", teamHandler.Update)
	protected.Delete("/teams/:id", teamHandler.Delete)
	protected.Get("/teams/:id/members", teamHandler.GetMembers)
	protected.Delete("/teams/:id/members/:memberId", teamHandler.RemoveMember)
	protected.Post("/teams/:id/leave", teamHandler.Leave)
	protected.Get("/teams/:id/requests", requestHandler.ListForTeam)
	protected.Post("/teams/:id/requests", requestHandler.Create)

	protected.Get("/requests/pending", requestHandler.ListPendingForLeader)
	protected.Post("/requests/:requestId/accept", requestHandler.Accept)
	protected.Post("/requests/:requestId/decline", requestHandler.Decline)
	protected.Delete("/requests/:requestId", requestHandler.Cancel)

	protected.Get("/teams/:id/events", sseHandler.Connect)
	protected.Post("/sse/:clientId/subscribe/:id", sseHandler.Subscribe)
	protected.Post("/sse/:clientId/unsubscribe/:id", sseHandler.Unsubscribe)

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		for range ticker.C {
			_ = tokenService.CleanupExpired(context.Background())
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Printf("Server starting on %s", addr)
		if err := app.Run(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
}
