package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/platform/auth"
)

const claimsKey = "claims"

// TokenParser はアクセストークンを検証します。
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// Auth は Bearer トークンを検証し、Claims をコンテキストへ保存します。
func Auth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		claims, err := parser.Parse(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireAdmin は管理者ロール以外を 403 で拒否します。Auth の後に配置します。
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !claims.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}

// GetClaims は Auth が保存した Claims を返します。
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok && claims != nil
}

// CanAccessClient は利用者が指定顧客のデータを参照できるかどうかを返します。
// 管理者はすべての顧客、client ロールは自身の顧客のみ参照できます。
func CanAccessClient(c *gin.Context, clientID string) bool {
	claims, ok := GetClaims(c)
	if !ok {
		return false
	}
	if claims.IsAdmin() {
		return true
	}
	return claims.ClientID != "" && claims.ClientID == clientID
}
