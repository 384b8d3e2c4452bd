package main

import (
	"context"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/talentops/Interview-Autopilot/internal/auth"
	"github.com/talentops/Interview-Autopilot/internal/config"
	"github.com/talentops/Interview-Autopilot/internal/database"
	"github.com/talentops/Interview-Autopilot/internal/handlers"
	"github.com/talentops/Interview-Autopilot/internal/services"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on process environment")
	}
	cfg := config.Load()

	// 2. Database Connection + Migrations
	db := database.Connect(cfg.DatabaseDSN)
	if cfg.SeedOnStartup {
		database.SeedIfEmpty(db, cfg.Timezone)
	}

	// 3. Outbound Channels (Gmail is optional; everything degrades to mock)
	var gmailService *gmail.Service
	if cfg.GmailEnabled {
		log.Println("Initializing Gmail Client...")
		if httpClient := auth.GetGmailClient(); httpClient != nil {
			svc, err := gmail.NewService(context.Background(), option.WithHTTPClient(httpClient))
			if err != nil {
				log.Printf("⚠️ Failed to create Gmail Service: %v", err)
			} else {
				log.Println("✅ Gmail Service connected successfully.")
				gmailService = svc
			}
		}
	}
	var notifier services.Notifier
	if gmailService != nil || cfg.SlackWebhookURL != "" {
		notifier = services.NewLiveNotifier(gmailService, cfg.SlackWebhookURL)
	} else {
		log.Println("📭 No notification channels configured, using mock notifier")
		notifier = services.MockNotifier{}
	}

	// 4. Initialize Core Services (Dependencies)
	llmService := services.NewLLMService(cfg.GeminiAPIKey)
	tokenService := services.NewTokenService(cfg.SecretKey)
	availabilityService := services.NewAvailabilityService(db)
	proposalService := services.NewProposalService(db, availabilityService)
	interviewService := services.NewInterviewService(db)
	approvalService := services.NewApprovalService(db, availabilityService, interviewService, notifier, cfg)
	atsService := services.NewATSService(db)
	feedbackService := services.NewFeedbackService(db, interviewService, llmService, atsService, notifier, tokenService, cfg)

	// 5. Start the Background Scheduler (reminders, feedback windows)
	schedulerService := services.NewSchedulerService(db, interviewService, feedbackService, notifier, cfg)
	schedulerService.Start()
	defer schedulerService.Stop()

	// 6. Initialize Handlers
	schedulingHandler := handlers.NewSchedulingHandler(proposalService, approvalService, interviewService)
	interviewHandler := handlers.NewInterviewHandler(interviewService)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService)
	directoryHandler := handlers.NewDirectoryHandler(db)

	// 7. Setup Router & CORS
	r := gin.Default()
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true // For development only
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// 8. Define Routes
	api := r.Group("/api/v1")
	{
		api.GET("/health", handlers.HealthCheck)

		// Scheduling
		api.POST("/scheduling/propose", schedulingHandler.Propose)
		api.POST("/scheduling/approve", schedulingHandler.Approve)

		// Interviews
		api.POST("/interviews/start", schedulingHandler.Start)
		api.GET("/interviews/:id", interviewHandler.Get)
		api.POST("/interviews/:id/cancel", interviewHandler.Cancel)

		// Feedback
		api.POST("/feedback", feedbackHandler.Submit)
		api.POST("/feedback/token", feedbackHandler.SubmitByToken)

		// Directory (read-only)
		api.GET("/users", directoryHandler.ListUsers)
		api.GET("/candidates", directoryHandler.ListCandidates)
	}

	log.Printf("🚀 Server starting on port %s...", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
