package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/teatime/teashop-api/config"
	"github.com/teatime/teashop-api/models"
	"github.com/teatime/teashop-api/utils"
	"gorm.io/gorm"
)

// Gin context keys set by EnsureValidToken
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
	ContextClaims = "validated_claims"
)

// CustomClaims contains custom data we want from the token.
type CustomClaims struct {
	Role string `json:"role"`
}

// Validate rejects tokens carrying an unknown role.
func (c CustomClaims) Validate(ctx context.Context) error {
	if !models.IsValidRole(c.Role) {
		return fmt.Errorf("unknown role %q", c.Role)
	}
	return nil
}

// EnsureValidToken is a middleware that will check the validity of our JWT.
// The token is read from the Authorization header or, failing that, the session cookie.
func EnsureValidToken(cfg *config.Config) gin.HandlerFunc {
	keyFunc := func(ctx context.Context) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	}

	jwtValidator, err := validator.New(
		keyFunc,
		validator.HS256,
		cfg.JWTIssuer,
		[]string{cfg.JWTAudience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &CustomClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		utils.Logger.Fatalf("Failed to set up the jwt validator: %v", err)
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		code, message := "INVALID_TOKEN", "Failed to validate JWT."
		if errors.Is(err, jwtmiddleware.ErrJWTMissing) {
			code, message = "UNAUTHORIZED", "Authentication required"
		} else {
			utils.Logger.WithError(err).Debug("Encountered error while validating JWT")
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		body := fmt.Sprintf(`{"success":false,"error":{"code":%q,"message":%q}}`, code, message)
		if _, writeErr := w.Write([]byte(body)); writeErr != nil {
			utils.Logger.WithError(writeErr).Warn("Failed to write error response")
		}
	}

	middleware := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
		jwtmiddleware.WithTokenExtractor(jwtmiddleware.MultiTokenExtractor(
			jwtmiddleware.AuthHeaderTokenExtractor,
			cookieTokenExtractor(cfg.CookieName),
		)),
	)

	return func(c *gin.Context) {
		authorized := false

		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			token := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)

			userID, err := strconv.ParseUint(token.RegisteredClaims.Subject, 10, 64)
			if err != nil || userID == 0 {
				errorHandler(w, r, fmt.Errorf("invalid subject %q", token.RegisteredClaims.Subject))
				return
			}

			// The account may have been deleted or had its role changed since the
			// token was issued, so the role always comes from the user row.
			var user models.User
			err = config.GetDB().WithContext(r.Context()).Select("id", "role").First(&user, uint(userID)).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.Logger.WithField("user_id", userID).Info("Rejected token for a deleted user")
				utils.RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "User account no longer exists")
				return
			}
			if err != nil {
				utils.Logger.WithError(err).Error("Failed to load token user")
				utils.RespondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load user")
				return
			}

			authorized = true
			c.Request = r
			c.Set(ContextUserID, user.ID)
			c.Set(ContextRole, user.Role)
			c.Set(ContextClaims, token)

			c.Next()
		}

		// Use the JWT middleware to check the token
		middleware.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)

		if !authorized {
			c.Abort()
		}
	}
}

// cookieTokenExtractor reads the token from the session cookie.
// A missing cookie is not an error so other extractors and the
// missing-token handling still apply.
func cookieTokenExtractor(name string) jwtmiddleware.TokenExtractor {
	return func(r *http.Request) (string, error) {
		cookie, err := r.Cookie(name)
		if errors.Is(err, http.ErrNoCookie) {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		return cookie.Value, nil
	}
}

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) (uint, error) {
	userID, exists := c.Get(ContextUserID)
	if !exists {
		return 0, &AuthError{Code: "MISSING_USER_ID", Message: "User ID not found in context"}
	}

	id, ok := userID.(uint)
	if !ok {
		return 0, &AuthError{Code: "INVALID_USER_ID", Message: "User ID is not numeric"}
	}

	return id, nil
}

// GetRole returns the caller's role, or an empty string when unauthenticated
func GetRole(c *gin.Context) string {
	return c.GetString(ContextRole)
}

// IsPrivileged reports whether the caller is a manager or admin
func IsPrivileged(c *gin.Context) bool {
	return models.IsPrivilegedRole(GetRole(c))
}

// GetClaims extracts the validated JWT claims from the Gin context
func GetClaims(c *gin.Context) (*validator.ValidatedClaims, error) {
	claims, exists := c.Get(ContextClaims)
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"}
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}

	return validatedClaims, nil
}

// RequireRole is a middleware that only lets callers with one of roles through
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextRole)
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			c.Abort()
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		utils.RespondError(c, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions to access this resource")
		c.Abort()
	}
}

// RequirePrivileged lets managers and admins through
func RequirePrivileged() gin.HandlerFunc {
	return RequireRole(models.RoleManager, models.RoleAdmin)
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
