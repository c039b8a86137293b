package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/forgo/reginald/internal/config"
	"github.com/forgo/reginald/internal/database"
	"github.com/forgo/reginald/internal/forecast"
	"github.com/forgo/reginald/internal/gateway"
	"github.com/forgo/reginald/internal/handler"
	"github.com/forgo/reginald/internal/jobs"
	"github.com/forgo/reginald/internal/middleware"
	"github.com/forgo/reginald/internal/repository"
	"github.com/forgo/reginald/internal/service"
)

func main() {
	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection
	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})

	ctx := context.Background()
	if err := db.Connect(ctx); err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	slog.Info("connected to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Database),
	)

	// Initialize repositories
	eventRepo := repository.NewEventRepository(db)
	channelRepo := repository.NewChannelRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	tokenRepo := repository.NewTokenRepository(db)

	// Initialize external collaborators
	slackGateway := gateway.NewSlackGateway(cfg.Slack.BotToken)
	weatherService := forecast.NewOpenMeteo(forecast.Config{
		Latitude:  cfg.Forecast.Latitude,
		Longitude: cfg.Forecast.Longitude,
		Timezone:  cfg.Forecast.Timezone,
	}, logger)

	// Initialize services
	announcementSync := service.NewAnnouncementSync(slackGateway, channelRepo, logger)
	eventService := service.NewEventService(eventRepo, channelRepo, profileRepo, slackGateway, announcementSync, logger)
	reminderService := service.NewReminderService(eventRepo, channelRepo, slackGateway, weatherService, logger)
	inquiryService := service.NewInquiryService(eventRepo, channelRepo, logger)
	channelService := service.NewChannelService(channelRepo, profileRepo, slackGateway, logger)
	calendarService := service.NewCalendarService(eventRepo, tokenRepo, service.CalendarConfig{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  cfg.Google.RedirectURL,
	}, logger)

	// Background jobs mirror the task endpoints for deployments without an
	// external cron
	publisher := jobs.NewScheduledPublisher(eventService, cfg.Tasks.PublishInterval)
	publisher.Start()
	defer publisher.Stop()

	reminderProcessor := jobs.NewReminderProcessor(reminderService, cfg.Tasks.ReminderSendHour)
	reminderProcessor.Start()
	defer reminderProcessor.Stop()

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(db)
	eventHandler := handler.NewEventHandler(eventService)
	channelHandler := handler.NewChannelHandler(channelService)
	inquiryHandler := handler.NewInquiryHandler(inquiryService)
	googleHandler := handler.NewGoogleHandler(calendarService)
	taskHandler := handler.NewTaskHandler(eventService, reminderService, cfg.Slack.PrimaryChannelID, cfg.Tasks.DefaultEventTime)

	// Create router and register routes
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("GET /health", healthHandler.Health)

	// Event endpoints
	mux.HandleFunc("POST /v1/events", eventHandler.CreateEvent)
	mux.HandleFunc("GET /v1/events/{eventId}", eventHandler.GetEvent)
	mux.HandleFunc("DELETE /v1/events/{eventId}", eventHandler.DeleteEvent)
	mux.HandleFunc("POST /v1/events/{eventId}/join", eventHandler.JoinEvent)
	mux.HandleFunc("POST /v1/events/{eventId}/leave", eventHandler.LeaveEvent)
	mux.HandleFunc("POST /v1/events/{eventId}/rosters", eventHandler.AddRoster)
	mux.HandleFunc("DELETE /v1/events/{eventId}/rosters/{rosterName}", eventHandler.RemoveRoster)
	mux.HandleFunc("POST /v1/events/{eventId}/share", eventHandler.ShareEvent)
	mux.HandleFunc("POST /v1/events/{eventId}/calendar", googleHandler.AddToCalendar)

	// Channel configuration and event profile endpoints
	mux.HandleFunc("PUT /v1/channels/{channelId}", channelHandler.ConfigureChannel)
	mux.HandleFunc("GET /v1/channels/{channelId}", channelHandler.GetChannel)
	mux.HandleFunc("POST /v1/profiles", channelHandler.CreateProfile)
	mux.HandleFunc("GET /v1/profiles", channelHandler.ListProfiles)

	// Natural language inquiry endpoint
	mux.HandleFunc("POST /v1/inquiries", inquiryHandler.Ask)

	// Google Calendar OAuth endpoints (public)
	mux.HandleFunc("GET /google/oauth/authorize", googleHandler.AuthRedirect)
	mux.HandleFunc("GET /google/oauth/callback", googleHandler.Callback)

	// Task endpoints guarded by the cron bearer secret
	cronAuth := middleware.CronAuth(cfg.Tasks.CronSecret)
	mux.Handle("POST /tasks/post-scheduled", cronAuth(http.HandlerFunc(taskHandler.PostScheduled)))
	mux.Handle("POST /tasks/send-announcement", cronAuth(http.HandlerFunc(taskHandler.SendAnnouncement)))
	mux.Handle("POST /tasks/send-reminders", cronAuth(http.HandlerFunc(taskHandler.SendReminders)))

	// Apply global middleware
	wrapped := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}
