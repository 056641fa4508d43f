package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/soteriahealth/soteria/utils"
)

const (
	// ContextUserIDKey is the key used to store the authenticated user's UUID in Gin context.
	ContextUserIDKey = "user_id"
	// AdminKeyHeader carries the operator key for admin routes.
	AdminKeyHeader = "X-Admin-Key"
)

// AuthRequired ensures the request carries a valid access token signed with secret.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "authorization header missing")
			ctx.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.Error(ctx, http.StatusUnauthorized, 40102, "invalid authorization header format")
			ctx.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40103, "empty bearer token")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(secret, tokenString)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
			ctx.Abort()
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, 40106, "token subject is not a user")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, userID)
		ctx.Next()
	}
}

// AdminRequired checks the operator key against its bcrypt hash. An empty
// hash disables every admin route.
func AdminRequired(keyHash string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if keyHash == "" {
			utils.Error(ctx, http.StatusForbidden, 40301, "admin api disabled")
			ctx.Abort()
			return
		}
		if !utils.CheckKey(keyHash, ctx.GetHeader(AdminKeyHeader)) {
			utils.Error(ctx, http.StatusForbidden, 40302, "invalid admin key")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
