package routers

import (
	"strings"

	"nft-marketplace/internal/market"
	"nft-marketplace/pkg/httputil"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var jwtSecret []byte

// SetJWTSecret 设置JWT密钥
func SetJWTSecret(secret string) {
	jwtSecret = []byte(secret)
}

// AuthMiddleware JWT认证中间件。address声明即调用方的链上地址。
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			httputil.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			httputil.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			httputil.Unauthorized(c, "invalid token claims")
			c.Abort()
			return
		}

		address, ok := claims["address"].(string)
		if !ok || address == "" {
			httputil.Unauthorized(c, "token is missing the address claim")
			c.Abort()
			return
		}
		c.Set("address", address)

		c.Next()
	}
}

// GetAddress 取当前调用方地址
func GetAddress(c *gin.Context) string {
	return c.GetString("address")
}

// GetActor 取当事人。撤销类操作里运营方可通过on_behalf_of代当事人行事。
func GetActor(c *gin.Context) market.Actor {
	onBehalfOf := c.Query("on_behalf_of")
	if onBehalfOf != "" {
		return market.DelegatedFor(GetAddress(c), onBehalfOf)
	}
	return market.Direct(GetAddress(c))
}

// CORSMiddleware CORS中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// LoggerMiddleware 日志中间件
func LoggerMiddleware() gin.HandlerFunc {
	return gin.Logger()
}

// RecoveryMiddleware 恢复中间件
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.Recovery()
}
