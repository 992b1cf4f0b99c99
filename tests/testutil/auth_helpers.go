package testutil

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/teatime/teashop-api/config"
	"github.com/teatime/teashop-api/middleware"
	"github.com/teatime/teashop-api/models"
	"github.com/teatime/teashop-api/services"
)

// TestConfig returns a configuration suitable for tests that issue real tokens
func TestConfig() *config.Config {
	return &config.Config{
		DatabaseDriver:     "sqlite",
		DatabaseURL:        ":memory:",
		GoEnv:              "test",
		Port:               "8080",
		JWTSecret:          "test-secret-that-is-long-enough-for-hs256",
		JWTIssuer:          "teashop-api",
		JWTAudience:        "teashop-web",
		JWTTTL:             24 * time.Hour,
		CookieName:         "token",
		CORSAllowedOrigins: []string{"http://localhost:3000"},
		UploadDir:          "./uploads",
		LogLevel:           "error",
	}
}

// MockAuthMiddleware simulates an authenticated caller without a token
func MockAuthMiddleware(userID uint, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextRole, role)
		c.Next()
	}
}

// BearerRequest adds an Authorization header carrying a freshly issued token for user
func BearerRequest(req *http.Request, cfg *config.Config, user models.User) *http.Request {
	token, _, err := services.NewTokenService(cfg).Issue(user)
	if err != nil {
		panic(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}
