package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/AndreiCalugar/FertiHub/internal/ai"
	"github.com/AndreiCalugar/FertiHub/internal/api/handlers"
	"github.com/AndreiCalugar/FertiHub/internal/api/middleware"
	"github.com/AndreiCalugar/FertiHub/internal/cache"
	"github.com/AndreiCalugar/FertiHub/internal/config"
	"github.com/AndreiCalugar/FertiHub/internal/email"
	"github.com/AndreiCalugar/FertiHub/internal/services"
	"github.com/AndreiCalugar/FertiHub/internal/storage"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client,
	sender email.Sender, enqueuer services.ITaskEnqueuer) *gin.Engine {
	// Initialize services needed by API handlers here.
	supplierService := services.NewSupplierService(db)
	profileService := services.NewProfileService(db, cfg)
	inquiryService := services.NewInquiryService(db, supplierService)
	notificationService := services.NewNotificationService(db)
	quoteService := services.NewQuoteService(db, cfg, inquiryService, supplierService,
		notificationService, profileService, enqueuer)
	claims := cache.NewFollowUpClaims(rdb, cfg.FollowUpClaimTTL)

	var quoteParser ai.IQuoteParser
	if cfg.OpenAIAPIKey != "" {
		parser, err := ai.NewQuoteParser(cfg)
		if err != nil {
			log.Printf("AI quote parser disabled: %v", err)
		} else {
			quoteParser = parser
		}
	}

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
		notificationService, profileService, sender, claims, enqueuer, storageService, nil)

	r := gin.Default()

	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(rateLimiter.Handler())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg, profileService)
	profileHandler := handlers.NewProfileHandler(profileService)
	supplierHandler := handlers.NewSupplierHandler(supplierService)
	inquiryHandler := handlers.NewInquiryHandler(inquiryService, quoteService, engagementService)
	quoteHandler := handlers.NewQuoteHandler(quoteService, engagementService, quoteParser, storageService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	engagementHandler := handlers.NewEngagementHandler(engagementService)
	healthHandler := handlers.NewHealthHandler(cfg)

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		// Public routes
		v1.POST("/auth/register", authHandler.Register)
		v1.POST("/auth/login", authHandler.Login)

		v1.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		// Cron routes, guarded by the shared secret. Hosted schedulers
		// only issue GET, so auto-follow-up accepts both verbs.
		cron := v1.Group("/cron")
		cron.Use(middleware.CronAuthMiddleware(cfg.CronSecret))
		{
			cron.POST("/auto-follow-up", engagementHandler.AutoFollowUp)
			cron.GET("/auto-follow-up", engagementHandler.AutoFollowUp)
			cron.GET("/deadline-reminders", engagementHandler.DeadlineReminders)
		}

		// Authenticated routes
		authRequired := v1.Group("/")
		authRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret))
		{
			authRequired.GET("/profile", profileHandler.Get)
			authRequired.PUT("/profile", profileHandler.Update)
			authRequired.POST("/profile/password", profileHandler.ChangePassword)

			authRequired.POST("/suppliers", supplierHandler.Create)
			authRequired.GET("/suppliers", supplierHandler.List)
			authRequired.GET("/suppliers/:id", supplierHandler.Get)
			authRequired.PUT("/suppliers/:id", supplierHandler.Update)
			authRequired.DELETE("/suppliers/:id", supplierHandler.Delete)

			authRequired.POST("/inquiries", inquiryHandler.Create)
			authRequired.GET("/inquiries", inquiryHandler.List)
			authRequired.GET("/inquiries/:id", inquiryHandler.Get)
			authRequired.DELETE("/inquiries/:id", inquiryHandler.Delete)
			authRequired.POST("/inquiries/:id/send", inquiryHandler.Send)

			authRequired.POST("/quotes", quoteHandler.Create)
			authRequired.GET("/quotes", quoteHandler.ListByInquiry)
			authRequired.DELETE("/quotes/:id", quoteHandler.Delete)
			authRequired.POST("/quotes/check-completion", quoteHandler.CheckCompletion)
			authRequired.POST("/quotes/parse-ai", quoteHandler.ParseAI)
			authRequired.POST("/quotes/upload-url", quoteHandler.UploadURL)

			authRequired.POST("/email/follow-up", engagementHandler.ManualFollowUp)

			authRequired.GET("/notifications", notificationHandler.List)
			authRequired.GET("/notifications/unread-count", notificationHandler.UnreadCount)
			authRequired.POST("/notifications/mark-read", notificationHandler.MarkRead)
		}
	}

	return r
}

// SetupServiceRouter configures and returns the service Gin engine: a
// localhost-only control port used by deployment scripts and integration
// tests.
func SetupServiceRouter(cfg *config.Config, rdb *redis.Client, shutdownChan chan<- struct{}) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.POST("/api", func(c *gin.Context) {
		var req struct {
			Method    string          `json:"method"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
			return
		}

		switch req.Method {
		case "shutdown":
			log.Println("Received shutdown command via Service API")
			c.JSON(http.StatusOK, gin.H{"success": true, "result": "Shutdown initiated"})
			select {
			case shutdownChan <- struct{}{}:
			default:
				log.Println("Shutdown channel already signaled or blocked.")
			}

		case "getTestEmail":
			var args []string // ["kind", "email"]
			if err := json.Unmarshal(req.Arguments, &args); err != nil || len(args) != 2 {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid arguments: expected JSON array [kind, email]"})
				return
			}
			redisKey := email.MockEmailKey(args[1], email.Kind(args[0]))

			// Poll briefly: the email may still be in flight through the
			// task queue when the test asks for it.
			var emailJSON string
			found := false
			ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
			defer cancel()
			for i := 0; i < 10; i++ {
				data, err := rdb.Get(ctx, redisKey).Result()
				if err == nil {
					emailJSON = data
					found = true
					rdb.Del(ctx, redisKey)
					break
				}
				if err != redis.Nil {
					log.Printf("Service API: Error getting key %s from Redis: %v", redisKey, err)
					c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Redis error"})
					return
				}
				time.Sleep(200 * time.Millisecond)
			}
			if !found {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Test email not found in Redis for key %s", redisKey)})
				return
			}

			var emailData map[string]interface{}
			if err := json.Unmarshal([]byte(emailJSON), &emailData); err != nil {
				log.Printf("Service API: Error unmarshalling email data from key %s: %v", redisKey, err)
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to parse stored email data"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "data": emailData})

		default:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Unknown service method: %s", req.Method)})
		}
	})

	return r
}
