package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/AndreiCalugar/FertiHub/internal/api"
	"github.com/AndreiCalugar/FertiHub/internal/cache"
	"github.com/AndreiCalugar/FertiHub/internal/config"
	"github.com/AndreiCalugar/FertiHub/internal/db"
	"github.com/AndreiCalugar/FertiHub/internal/email"
	"github.com/AndreiCalugar/FertiHub/internal/metrics"
	"github.com/AndreiCalugar/FertiHub/internal/services"
	"github.com/AndreiCalugar/FertiHub/internal/storage"
	"github.com/AndreiCalugar/FertiHub/internal/tasks"
)

var runMode = flag.String("m", "all", "Run mode: 'api', 'bg' (background worker), 'all' (default)")

// Scan cadence for the background worker. The cron HTTP endpoints remain the
// primary trigger on hosted deployments; these tickers cover self-hosted runs.
const (
	followUpScanInterval      = 1 * time.Hour
	deadlineCheckScanInterval = 24 * time.Hour
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*runMode)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Database
	mongoClient, mongoDb, err := db.ConnectDB(cfg.MongoURI, cfg.MongoDbName)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.DisconnectDB(mongoClient); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	// Idempotence for notifications relies on the unique partial indexes.
	if err := db.EnsureIndexes(context.Background(), mongoDb); err != nil {
		log.Fatalf("Failed to ensure MongoDB indexes: %v", err)
	}

	// Initialize Cache (Redis)
	redisClient, err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer func() {
		if err := cache.DisconnectRedis(redisClient); err != nil {
			log.Printf("Error disconnecting from Redis: %v", err)
		}
	}()

	// Initialize Email Sender
	var primaryEmailSender email.Sender
	if os.Getenv("MOCK_SERVICES") == "true" {
		log.Println("MOCK_SERVICES enabled: Using Redis email sender.")
		primaryEmailSender = email.NewRedisSender(redisClient, cfg)
	} else if cfg.SendGridAPIKey != "" {
		log.Println("Using SendGrid email sender.")
		primaryEmailSender = email.NewSendGridSender(cfg)
	} else {
		log.Println("SENDGRID_API_KEY not set: Using SMTP email sender.")
		primaryEmailSender = email.NewSMTPSender(cfg)
	}

	// The composite sender always includes the primary sender.
	compositeSender := email.NewCompositeEmailSender(primaryEmailSender)

	// Optionally add FileEmailSender if LOG_EMAILS is set
	logEmailsPath := os.Getenv("LOG_EMAILS")
	if logEmailsPath != "" {
		log.Printf("LOG_EMAILS set to '%s', enabling file email logger.", logEmailsPath)
		fileSender, err := email.NewFileEmailSender(logEmailsPath, cfg)
		if err != nil {
			log.Printf("WARNING: Failed to initialize file email sender (LOG_EMAILS='%s'): %v. Proceeding without file logging.", logEmailsPath, err)
		} else {
			compositeSender.AddSender(fileSender)
		}
	}
	finalEmailSender := email.Sender(compositeSender)

	// Initialize Task Client + Enqueuer
	taskClient := tasks.NewClient(redisClient)
	defer taskClient.Close()
	enqueuer := tasks.NewEnqueuer(taskClient)

	// Services needed by the task processor. The API router initializes its
	// own set inside api.SetupRouter.
	supplierService := services.NewSupplierService(mongoDb)
	profileService := services.NewProfileService(mongoDb, cfg)
	inquiryService := services.NewInquiryService(mongoDb, supplierService)
	notificationService := services.NewNotificationService(mongoDb)
	quoteService := services.NewQuoteService(mongoDb, cfg, inquiryService, supplierService,
		notificationService, profileService, enqueuer)
	followUpClaims := cache.NewFollowUpClaims(redisClient, cfg.FollowUpClaimTTL)
	var storageService storage.IS3Storage
	if cfg.AwsS3Bucket != "" {
		s3Service, err := storage.NewS3Storage(cfg)
		if err != nil {
			log.Printf("S3 storage disabled: %v", err)
		} else {
			storageService = s3Service
		}
	}
	engagementService := services.NewEngagementService(cfg, inquiryService, quoteService,
		notificationService, profileService, finalEmailSender, followUpClaims, enqueuer,
		storageService, nil)

	taskProcessor := tasks.NewTaskProcessor(cfg, finalEmailSender, engagementService)

	// WaitGroup for managing goroutines
	var wg sync.WaitGroup

	// Channel to signal shutdown from Service API
	shutdownChan := make(chan struct{}, 1)

	// Start Service API (always runs)
	serviceRouter := api.SetupServiceRouter(cfg, redisClient, shutdownChan)
	serviceSrv := &http.Server{
		Addr:    ":" + cfg.ServiceApiPort,
		Handler: serviceRouter,
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		fmt.Printf("Service API listening on :%s\n", cfg.ServiceApiPort)
		if err := serviceSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Service API ListenAndServe error: %v", err)
		}
		fmt.Println("Service API server stopped.")
	}()

	// --- Mode-specific servers ---
	var mainApiSrv *http.Server
	var backgroundTaskSrv *asynq.Server
	scanCtx, stopScans := context.WithCancel(context.Background())
	defer stopScans()

	fmt.Printf("Starting application in '%s' mode...\n", cfg.RunMode)

	apiMode := func() {
		fmt.Println("Starting main API server...")
		metrics.InitAPIMetrics()
		// The cron endpoints run dispatcher passes inside the API process.
		metrics.InitDispatcherMetrics()
		mainApiRouter := api.SetupRouter(cfg, mongoDb, redisClient, finalEmailSender, enqueuer)
		mainApiSrv = &http.Server{
			Addr:    ":" + cfg.ApiPort,
			Handler: mainApiRouter,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			fmt.Printf("Main API listening on :%s\n", cfg.ApiPort)
			if err := mainApiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Main API ListenAndServe error: %v", err)
			}
			fmt.Println("Main API server stopped.")
		}()
	}

	bgMode := func() {
		fmt.Println("Starting background worker...")
		metrics.InitDispatcherMetrics()
		srv, mux := tasks.SetupServer(redisClient, taskProcessor)
		backgroundTaskSrv = srv
		wg.Add(1)
		go func() {
			defer wg.Done()
			fmt.Println("Background task server starting...")
			if err := backgroundTaskSrv.Run(mux); err != nil {
				log.Fatalf("Background task server error: %v", err)
			}
			fmt.Println("Background task server stopped.")
		}()

		// Periodic scans. EnqueueScan tasks are marked non-retryable so a
		// missed tick is recovered by the next one, not by asynq retries.
		scheduleScan := func(taskType string, every time.Duration) {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ticker := time.NewTicker(every)
				defer ticker.Stop()
				for {
					select {
					case <-scanCtx.Done():
						return
					case <-ticker.C:
						if err := enqueuer.EnqueueScan(scanCtx, taskType); err != nil {
							log.Printf("Failed to enqueue %s scan: %v", taskType, err)
						}
					}
				}
			}()
		}
		scheduleScan(tasks.TypeFollowUpScan, followUpScanInterval)
		scheduleScan(tasks.TypeDeadlineCheck, deadlineCheckScanInterval)
	}

	switch cfg.RunMode {
	case "api":
		apiMode()
	case "bg":
		bgMode()
	case "all":
		apiMode()
		bgMode()
	default:
		log.Fatalf("Invalid run mode specified in config: %s.", cfg.RunMode)
	}

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		fmt.Printf("\nReceived signal: %s. Shutting down gracefully...\n", sig)
	case <-shutdownChan:
		fmt.Println("\nShutdown requested via Service API. Shutting down gracefully...")
	}

	stopScans()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	fmt.Println("Shutting down Service API server...")
	if err := serviceSrv.Shutdown(ctxShutdown); err != nil {
		log.Printf("Service API server shutdown error: %v", err)
	}

	if mainApiSrv != nil {
		fmt.Println("Shutting down Main API server...")
		if err := mainApiSrv.Shutdown(ctxShutdown); err != nil {
			log.Printf("Main API server shutdown error: %v", err)
		}
	}

	if backgroundTaskSrv != nil {
		fmt.Println("Shutting down Background Task server...")
		backgroundTaskSrv.Shutdown()
	}

	fmt.Println("Waiting for servers to stop...")
	wg.Wait()

	fmt.Println("Server gracefully stopped")
}
