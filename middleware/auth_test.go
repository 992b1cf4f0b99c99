package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teatime/teashop-api/config"
	"github.com/teatime/teashop-api/models"
	"github.com/teatime/teashop-api/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:   "test-secret-that-is-long-enough-for-hs256",
		JWTIssuer:   "teashop-api",
		JWTAudience: "teashop-web",
		JWTTTL:      time.Hour,
		CookieName:  "token",
	}
}

// setupUserDB points config at an in-memory database holding the given users
func setupUserDB(t *testing.T, users ...models.User) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.User{}))
	for i := range users {
		users[i].Name = fmt.Sprintf("user-%d", users[i].ID)
		users[i].Email = fmt.Sprintf("user-%d@example.com", users[i].ID)
		users[i].PasswordHash = "x"
		require.NoError(t, db.Create(&users[i]).Error)
	}

	config.SetDB(db)
	return db
}

// protectedRouter mounts EnsureValidToken in front of a handler echoing the caller
func protectedRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/me", EnsureValidToken(cfg), func(c *gin.Context) {
		userID, err := GetUserID(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "role": GetRole(c)})
	})
	return router
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestEnsureValidToken_BearerHeader(t *testing.T) {
	setupUserDB(t, models.User{ID: 42, Role: models.RoleManager})
	cfg := testConfig()
	token, _, err := services.NewTokenService(cfg).Issue(models.User{ID: 42, Role: models.RoleManager})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	protectedRouter(cfg).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	response := decodeBody(t, w)
	assert.Equal(t, float64(42), response["user_id"])
	assert.Equal(t, "manager", response["role"])
}

func TestEnsureValidToken_Cookie(t *testing.T) {
	setupUserDB(t, models.User{ID: 7, Role: models.RoleCustomer})
	cfg := testConfig()
	token, _, err := services.NewTokenService(cfg).Issue(models.User{ID: 7, Role: models.RoleCustomer})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	w := httptest.NewRecorder()
	protectedRouter(cfg).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	response := decodeBody(t, w)
	assert.Equal(t, float64(7), response["user_id"])
	assert.Equal(t, "customer", response["role"])
}

func TestEnsureValidToken_RoleComesFromUserRow(t *testing.T) {
	db := setupUserDB(t, models.User{ID: 42, Role: models.RoleManager})
	cfg := testConfig()
	token, _, err := services.NewTokenService(cfg).Issue(models.User{ID: 42, Role: models.RoleManager})
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.User{ID: 42}).Update("role", models.RoleCustomer).Error)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	protectedRouter(cfg).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "customer", decodeBody(t, w)["role"])
}

func TestEnsureValidToken_DeletedUser(t *testing.T) {
	db := setupUserDB(t, models.User{ID: 9, Role: models.RoleCustomer})
	cfg := testConfig()
	token, _, err := services.NewTokenService(cfg).Issue(models.User{ID: 9, Role: models.RoleCustomer})
	require.NoError(t, err)

	require.NoError(t, db.Delete(&models.User{}, 9).Error)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	protectedRouter(cfg).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	response := decodeBody(t, w)
	assert.Equal(t, "UNAUTHORIZED", response["error"].(map[string]interface{})["code"])
	assert.NotContains(t, response, "user_id")
}

func TestEnsureValidToken_Rejections(t *testing.T) {
	cfg := testConfig()

	otherSecret := testConfig()
	otherSecret.JWTSecret = "a-completely-different-secret-value!!"
	forged, _, err := services.NewTokenService(otherSecret).Issue(models.User{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)

	otherAudience := testConfig()
	otherAudience.JWTAudience = "someone-else"
	wrongAudience, _, err := services.NewTokenService(otherAudience).Issue(models.User{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)

	expiredCfg := testConfig()
	expiredCfg.JWTTTL = -time.Hour
	expired, _, err := services.NewTokenService(expiredCfg).Issue(models.User{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)

	unknownRole, _, err := services.NewTokenService(cfg).Issue(models.User{ID: 1, Role: "superuser"})
	require.NoError(t, err)

	tests := []struct {
		name         string
		header       string
		expectedCode string
	}{
		{"missing token", "", "UNAUTHORIZED"},
		{"garbage token", "Bearer not-a-jwt", "INVALID_TOKEN"},
		{"wrong signature", "Bearer " + forged, "INVALID_TOKEN"},
		{"wrong audience", "Bearer " + wrongAudience, "INVALID_TOKEN"},
		{"expired", "Bearer " + expired, "INVALID_TOKEN"},
		{"unknown role", "Bearer " + unknownRole, "INVALID_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			protectedRouter(cfg).ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			response := decodeBody(t, w)
			assert.False(t, response["success"].(bool))
			errorData := response["error"].(map[string]interface{})
			assert.Equal(t, tt.expectedCode, errorData["code"])
			assert.NotContains(t, response, "user_id", "handler must not run after a rejected token")
		})
	}
}

func TestGetUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		setupFunc func(*gin.Context)
		wantID    uint
		wantErr   bool
	}{
		{
			name: "successfully extracts user ID",
			setupFunc: func(c *gin.Context) {
				c.Set(ContextUserID, uint(12))
			},
			wantID: 12,
		},
		{
			name:      "user ID not found in context",
			setupFunc: func(c *gin.Context) {},
			wantErr:   true,
		},
		{
			name: "user ID is not numeric",
			setupFunc: func(c *gin.Context) {
				c.Set(ContextUserID, "12")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			tt.setupFunc(c)

			gotID, err := GetUserID(c)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Zero(t, gotID)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantID, gotID)
			}
		})
	}
}

func TestGetClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	_, err := GetClaims(c)
	assert.Error(t, err)

	c.Set(ContextClaims, "invalid")
	_, err = GetClaims(c)
	assert.Error(t, err)

	c.Set(ContextClaims, &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{Subject: "5"},
		CustomClaims:     &CustomClaims{Role: models.RoleAdmin},
	})
	claims, err := GetClaims(c)
	assert.NoError(t, err)
	assert.Equal(t, "5", claims.RegisteredClaims.Subject)
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		allowed        []string
		role           *string
		wantStatusCode int
		wantAborted    bool
	}{
		{"admin allowed", []string{models.RoleAdmin}, strPtr(models.RoleAdmin), 0, false},
		{"manager allowed among several", []string{models.RoleManager, models.RoleAdmin}, strPtr(models.RoleManager), 0, false},
		{"customer forbidden", []string{models.RoleManager, models.RoleAdmin}, strPtr(models.RoleCustomer), http.StatusForbidden, true},
		{"unauthenticated", []string{models.RoleAdmin}, nil, http.StatusUnauthorized, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.role != nil {
				c.Set(ContextRole, *tt.role)
			}

			RequireRole(tt.allowed...)(c)

			assert.Equal(t, tt.wantAborted, c.IsAborted())
			if tt.wantAborted {
				assert.Equal(t, tt.wantStatusCode, w.Code)
			}
		})
	}
}

func TestIsPrivileged(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.False(t, IsPrivileged(c))
	c.Set(ContextRole, models.RoleCustomer)
	assert.False(t, IsPrivileged(c))
	c.Set(ContextRole, models.RoleAdmin)
	assert.True(t, IsPrivileged(c))
}

func TestCustomClaims_Validate(t *testing.T) {
	assert.NoError(t, CustomClaims{Role: models.RoleCustomer}.Validate(nil))
	assert.Error(t, CustomClaims{Role: "technician"}.Validate(nil))
}

func TestAuthError(t *testing.T) {
	err := &AuthError{
		Code:    "TEST_ERROR",
		Message: "This is a test error",
	}

	assert.Equal(t, "This is a test error", err.Error())
}

func strPtr(s string) *string {
	return &s
}
