package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/thread_go_server/internal/pkg/jwt"
	"github.com/qs3c/thread_go_server/internal/pkg/response"
)

// UserIDKey 认证通过后写入 gin 上下文的键，评论、通知等处理器靠它拿当前用户
const UserIDKey = "userID"

var errNoBearer = errors.New("missing bearer token")

// bearerUserID 解析 Authorization 头并返回 token 里的用户 ID
func bearerUserID(c *gin.Context, jwtSecret string) (int64, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return 0, errNoBearer
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return 0, errNoBearer
	}

	claims, err := jwt.ParseToken(tokenString, jwtSecret)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

// Auth 写评论、删评论这类接口的强制认证
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := bearerUserID(c, jwtSecret)
		if err != nil {
			if errors.Is(err, errNoBearer) {
				response.AuthError(c, "请提供认证信息")
			} else {
				response.AuthError(c, "认证失败或已过期")
			}
			c.Abort()
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// OptionalAuth 评论列表这类接口匿名也能访问，带了有效 token 才记录身份
func OptionalAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, err := bearerUserID(c, jwtSecret); err == nil {
			c.Set(UserIDKey, userID)
		}
		c.Next()
	}
}

// GetUserID 从上下文获取当前用户 ID，匿名请求返回 false
func GetUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(int64)
	return id, ok
}
