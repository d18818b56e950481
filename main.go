package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatbooking/config"
	"chatbooking/database"
	availabilityRepo "chatbooking/database/repository/availability"
	bookingRepo "chatbooking/database/repository/booking"
	catalogRepo "chatbooking/database/repository/catalog"
	conversationRepo "chatbooking/database/repository/conversation"
	"chatbooking/handlers"
	"chatbooking/middleware"
	"chatbooking/routes"
	"chatbooking/services/availability"
	"chatbooking/services/booking"
	"chatbooking/services/chat"
	"chatbooking/services/events"
	ai "chatbooking/services/intelligence"
	"chatbooking/services/tasks"
	"chatbooking/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	utils.InitializeLogger()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitEventsClient()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	bookings := bookingRepo.NewMongoBookingRepo()
	catalog := catalogRepo.NewMongoCatalogRepo()
	schedules := availabilityRepo.NewMongoAvailabilityRepo()
	conversations := conversationRepo.NewMongoConversationRepo()

	if err := bookings.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to create booking indexes: %v", err)
	}
	if err := conversations.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to create conversation indexes: %v", err)
	}
	if err := schedules.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to create availability indexes: %v", err)
	}

	// services.
	availabilitySvc := availability.NewAvailabilityService(
		catalog, schedules, bookings,
		config.AppConfig.SlotStepMinutes,
		config.AppConfig.MaxHorizonDays,
	)

	eventSink := events.NewFanoutSink(
		events.NewLogEventSink(),
		events.NewRedisEventSink(utils.GetEventsClient()),
	)
	bookingSvc := booking.NewBookingService(bookings, catalog, availabilitySvc, eventSink)

	var classifier ai.Classifier = ai.NewKeywordClassifier()
	if key := config.AppConfig.GeminiAPIKey; key != "" {
		gemini, err := ai.NewGeminiClassifier(key)
		if err != nil {
			logger.Sugar().Warnf("main: Gemini unavailable, using keyword classifier: %v", err)
		} else {
			classifier = gemini
		}
	}

	engine := chat.NewEngine(config.AppConfig.ChatRetryBudget)
	if err := engine.ValidateFlow(); err != nil {
		logger.Sugar().Fatalf("main: conversation flow validation failed: %v", err)
	}
	chatSvc := chat.NewChatAgentService(
		conversations, catalog, availabilitySvc, bookingSvc,
		classifier, engine, utils.GetCacheClient(),
	)

	sweeper := tasks.NewSweepWorker(
		bookingSvc,
		time.Duration(config.AppConfig.PendingSweepMinutes)*time.Minute,
		time.Duration(config.AppConfig.PendingSweepMinutes)*time.Minute,
	)
	if err := sweeper.Start(); err != nil {
		logger.Sugar().Fatalf("main: failed to start pending sweep: %v", err)
	}

	handlerBundle := &handlers.HandlerBundle{
		Availability: availabilitySvc,
		Bookings:     bookingSvc,
		Chat:         chatSvc,
		CatalogRepo:  catalog,
	}
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
