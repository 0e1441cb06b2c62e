package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AndreiCalugar/FertiHub/internal/config"
)

// HealthHandler reports configuration presence for deployment diagnosis.
type HealthHandler struct {
	cfg *config.Config
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg}
}

// Health handles GET /health. Required settings missing => status error and
// a 500 so orchestrators flag the deployment; optional ones only warn.
func (h *HealthHandler) Health(c *gin.Context) {
	status := "ok"
	missing := []string{}
	warnings := []string{}

	if h.cfg.MongoURI == "" {
		missing = append(missing, "MONGO_URI")
		status = "error"
	}
	if h.cfg.JwtSecret == "" {
		missing = append(missing, "JWT_SECRET")
		status = "error"
	}
	if h.cfg.SendGridAPIKey == "" && h.cfg.SmtpHost == "" {
		warnings = append(warnings, "SENDGRID_API_KEY / SMTP_HOST (email features disabled)")
	}
	if h.cfg.EmailFromAddress == "" {
		warnings = append(warnings, "SENDGRID_FROM_EMAIL (email features disabled)")
	}
	if h.cfg.CronSecret == "" {
		warnings = append(warnings, "CRON_SECRET (cron jobs disabled)")
	}
	if h.cfg.OpenAIAPIKey == "" {
		warnings = append(warnings, "OPENAI_API_KEY (AI quote parsing disabled)")
	}

	message := "All required settings are configured"
	httpStatus := http.StatusOK
	if status != "ok" {
		message = "Missing required settings"
		httpStatus = http.StatusInternalServerError
	}

	c.JSON(httpStatus, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks": gin.H{
			"mongo":      h.cfg.MongoURI != "",
			"jwtSecret":  h.cfg.JwtSecret != "",
			"sendgrid":   h.cfg.SendGridAPIKey != "",
			"smtp":       h.cfg.SmtpHost != "",
			"cronSecret": h.cfg.CronSecret != "",
			"openai":     h.cfg.OpenAIAPIKey != "",
		},
		"missing":  missing,
		"warnings": warnings,
		"message":  message,
	})
}
