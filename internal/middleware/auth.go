package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
)

// ContextUserIDKey 是认证后用户 ID 在 gin.Context 中的 key
const ContextUserIDKey = "user_id"

// ErrMissingAuthHeader 表示缺少 Authorization 头
var ErrMissingAuthHeader = errors.New("missing Authorization header")

// Auth 返回一个 Gin 中间件，要求请求携带有效的 JWT token。
func Auth(jwtSecret string) gin.HandlerFunc {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty for Auth middleware")
	}
	return func(c *gin.Context) {
		if !authenticate(c, jwtSecret, false) {
			return
		}
		c.Next()
	}
}

// OptionalAuth 在请求携带 token 时校验并设置用户 ID，未携带时按匿名访问继续。
// 携带了无效 token 的请求仍然返回 401。
func OptionalAuth(jwtSecret string) gin.HandlerFunc {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty for OptionalAuth middleware")
	}
	return func(c *gin.Context) {
		if !authenticate(c, jwtSecret, true) {
			return
		}
		c.Next()
	}
}

// UserID 返回认证中间件设置的用户 ID，匿名请求返回 0
func UserID(c *gin.Context) uint {
	if v, ok := c.Get(ContextUserIDKey); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// authenticate 校验 token 并写入上下文。返回 false 时请求已被终止。
func authenticate(c *gin.Context, jwtSecret string, optional bool) bool {
	tokenStr, err := extractToken(c)
	if err != nil {
		if errors.Is(err, ErrMissingAuthHeader) {
			if optional {
				return true
			}
			logrus.Warn("Auth middleware: Missing Authorization header")
			abortUnauthorized(c, "Authorization header is required")
			return false
		}
		logrus.Warnf("Auth middleware: Malformed token format: %v", err)
		abortUnauthorized(c, "Invalid token format")
		return false
	}

	claims, err := validateToken(tokenStr, jwtSecret)
	if err != nil {
		logCtx := logrus.WithError(err)
		var validationError *jwt.ValidationError
		if errors.As(err, &validationError) && validationError.Errors&jwt.ValidationErrorExpired != 0 {
			logCtx = logCtx.WithField("reason", "expired")
		}
		logCtx.Warn("Auth middleware: Invalid token")
		abortUnauthorized(c, "Invalid or expired token")
		return false
	}

	// JWT 数字默认为 float64，需要安全转换为 uint
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok || userIDFloat <= 0 || userIDFloat != float64(uint(userIDFloat)) {
		logrus.Errorf("Auth middleware: 'user_id' claim is not a valid positive integer: %v", claims["user_id"])
		abortUnauthorized(c, "Invalid token claims")
		return false
	}
	userID := uint(userIDFloat)
	c.Set(ContextUserIDKey, userID)
	logrus.WithField("user_id", userID).Debug("Auth middleware: User authenticated via JWT")
	return true
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

// extractToken 从 Gin 上下文中提取 Bearer Token
func extractToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", jwt.ErrTokenMalformed
	}
	return parts[1], nil
}

// validateToken 解析并验证 JWT token 字符串
func validateToken(tokenStr string, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token or claims type")
}
