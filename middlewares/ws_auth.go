package middlewares

import (
	"net/http"

	"github.com/abdout/souq/utils"

	"github.com/gin-gonic/gin"
)

// WSAuthMiddleware ตรวจ JWT จาก query ?token= ก่อน (browser ใส่ header ตอน upgrade ไม่ได้) แล้วค่อย header
func WSAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.Query("token")
		if tokenStr == "" {
			tokenStr = bearer(c)
		}
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := utils.ParseToken(tokenStr, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}
