package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/intrafeed/intrafeed/models"
	"github.com/intrafeed/intrafeed/utils"
)

const (
	// ContextUserIDKey is the key used to store authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextUserKey stores the loaded *models.User.
	ContextUserKey = "user"
	// ContextClaimsKey stores the parsed token claims.
	ContextClaimsKey = "claims"
	// SessionTokenKey is where the browser session keeps the access token.
	SessionTokenKey = "token"
)

// AuthRequired authenticates the request with a bearer token, falling back to the
// session cookie set by the OAuth callback, and loads the user.
func AuthRequired(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, code, msg := extractToken(ctx)
		if tokenString == "" {
			utils.Error(ctx, http.StatusUnauthorized, code, msg)
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
			ctx.Abort()
			return
		}

		if utils.IsTokenBlacklisted(ctx.Request.Context(), claims.ID) {
			utils.Error(ctx, http.StatusUnauthorized, 40104, "token revoked")
			ctx.Abort()
			return
		}

		var user models.User
		if err := db.WithContext(ctx.Request.Context()).First(&user, claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.Error(ctx, http.StatusUnauthorized, 40106, "account no longer exists")
			} else {
				utils.Fail(ctx, err, 50001)
			}
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, user.ID)
		ctx.Set(ContextUserKey, &user)
		ctx.Set(ContextClaimsKey, claims)
		ctx.Next()
	}
}

// AdminRequired must run after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := CurrentUser(ctx)
		if !ok {
			utils.Error(ctx, http.StatusUnauthorized, 40100, "authentication required")
			ctx.Abort()
			return
		}
		if !user.IsAdmin {
			utils.Error(ctx, http.StatusForbidden, 40300, "administrator privileges required")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// CurrentUser returns the user loaded by AuthRequired.
func CurrentUser(ctx *gin.Context) (*models.User, bool) {
	v, ok := ctx.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok && u != nil
}

// CurrentClaims returns the token claims of the request.
func CurrentClaims(ctx *gin.Context) (*utils.Claims, bool) {
	v, ok := ctx.Get(ContextClaimsKey)
	if !ok {
		return nil, false
	}
	c, ok := v.(*utils.Claims)
	return c, ok
}

func extractToken(ctx *gin.Context) (string, int, string) {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", 40102, "invalid authorization header format"
		}
		token := strings.TrimSpace(parts[1])
		if token == "" {
			return "", 40103, "empty bearer token"
		}
		return token, 0, ""
	}
	if token := sessionToken(ctx); token != "" {
		return token, 0, ""
	}
	return "", 40101, "authorization header missing"
}

// sessionToken reads the token from the cookie session when the sessions middleware is mounted.
func sessionToken(ctx *gin.Context) string {
	if _, ok := ctx.Get(sessions.DefaultKey); !ok {
		return ""
	}
	token, _ := sessions.Default(ctx).Get(SessionTokenKey).(string)
	return token
}
