package controllers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/teatime/teashop-api/config"
	"github.com/teatime/teashop-api/tests/testutil"
	"gorm.io/gorm"
)

// setupTestDB points the controllers at a fresh in-memory database
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.OpenTestDB(t)
	config.SetDB(db)
	config.SetConfig(testutil.TestConfig())
	return db
}

// authedRouter returns an engine whose routes run as userID with role
func authedRouter(userID uint, role string) *gin.Engine {
	router := gin.New()
	router.Use(testutil.MockAuthMiddleware(userID, role))
	return router
}

// doJSON sends body as JSON and returns the recorder
func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// parseResponse decodes the envelope
func parseResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return response
}

// errorCode extracts error.code from an error envelope
func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	response := parseResponse(t, w)
	errorData, ok := response["error"].(map[string]interface{})
	require.True(t, ok, "expected error envelope, got %s", w.Body.String())
	return errorData["code"].(string)
}
