package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/AndreiCalugar/FertiHub/internal/api/handlers"
	"github.com/AndreiCalugar/FertiHub/internal/config"
)

func doHealth(cfg *config.Config) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewHealthHandler(cfg)

	r := gin.New()
	r.GET("/health", handler.Health)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestHealthHandler_AllConfigured(t *testing.T) {
	w := doHealth(&config.Config{
		MongoURI:         "mongodb://localhost:27017",
		JwtSecret:        "secret",
		SendGridAPIKey:   "SG.key",
		EmailFromAddress: "noreply@example.com",
		CronSecret:       "cron",
		OpenAIAPIKey:     "sk-key",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var respBody map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &respBody)
	assert.NoError(t, err)
	assert.Equal(t, "ok", respBody["status"])
	assert.Empty(t, respBody["missing"])
	assert.Empty(t, respBody["warnings"])
	assert.Equal(t, "All required settings are configured", respBody["message"])
}

func TestHealthHandler_MissingRequired(t *testing.T) {
	w := doHealth(&config.Config{JwtSecret: "secret"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var respBody map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &respBody)
	assert.NoError(t, err)
	assert.Equal(t, "error", respBody["status"])
	assert.Contains(t, respBody["missing"], "MONGO_URI")
	assert.Equal(t, "Missing required settings", respBody["message"])
}

func TestHealthHandler_OptionalWarningsOnly(t *testing.T) {
	w := doHealth(&config.Config{
		MongoURI:  "mongodb://localhost:27017",
		JwtSecret: "secret",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var respBody map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &respBody)
	assert.NoError(t, err)
	assert.Equal(t, "ok", respBody["status"])
	assert.Len(t, respBody["warnings"], 4)

	checks, ok := respBody["checks"].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, false, checks["sendgrid"])
	assert.Equal(t, false, checks["openai"])
}
