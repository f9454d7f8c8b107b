package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ==================== JWT 配置 ====================

// JWTConfig JWT 配置
type JWTConfig struct {
	SecretKey      string        // 签名密钥
	AccessTokenTTL time.Duration // Access Token 有效期
	Issuer         string        // 签发者
}

// DefaultJWTConfig 默认配置
func DefaultJWTConfig() *JWTConfig {
	return &JWTConfig{
		SecretKey:      "storefront-secret-change-in-production",
		AccessTokenTTL: 12 * time.Hour,
		Issuer:         "storefront",
	}
}

// 全局配置
var jwtConfig = DefaultJWTConfig()

// SetJWTConfig 设置 JWT 配置
func SetJWTConfig(cfg *JWTConfig) {
	jwtConfig = cfg
}

// GetJWTConfig 获取 JWT 配置
func GetJWTConfig() *JWTConfig {
	return jwtConfig
}

// ==================== Claims 定义 ====================

// OwnerClaims 商家声明，owner_id 是不透明字符串
type OwnerClaims struct {
	OwnerID string `json:"owner_id"`
	Name    string `json:"name,omitempty"`
	Role    string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// ==================== Token 生成 ====================

// GenerateAccessToken 生成 Access Token（开发环境与测试用）
func GenerateAccessToken(ownerID, name, role string) (string, error) {
	now := time.Now()
	claims := &OwnerClaims{
		OwnerID: ownerID,
		Name:    name,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtConfig.Issuer,
			Subject:   "access",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(jwtConfig.AccessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtConfig.SecretKey))
}

// ==================== Token 解析 ====================

// ParseToken 解析 Token
func ParseToken(tokenString string) (*OwnerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &OwnerClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(jwtConfig.SecretKey), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*OwnerClaims); ok && token.Valid {
		if strings.TrimSpace(claims.OwnerID) == "" {
			return nil, errors.New("token missing owner_id")
		}
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// ==================== Gin 中间件 ====================

// Context Keys
const (
	ContextKeyOwnerID = "owner_id"
	ContextKeyName    = "owner_name"
	ContextKeyRole    = "role"
)

func bearerClaims(c *gin.Context) (*OwnerClaims, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, "未提供认证信息"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, "认证格式错误，应为 Bearer {token}"
	}

	claims, err := ParseToken(parts[1])
	if err != nil {
		return nil, "Token 无效或已过期"
	}
	if claims.Subject != "access" {
		return nil, "Token 类型错误"
	}
	return claims, ""
}

func setClaims(c *gin.Context, claims *OwnerClaims) {
	c.Set(ContextKeyOwnerID, claims.OwnerID)
	c.Set(ContextKeyName, claims.Name)
	c.Set(ContextKeyRole, claims.Role)
}

// JWTAuth JWT 认证中间件
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, msg := bearerClaims(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": msg,
			})
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth 可选认证中间件（公开店铺页：登录的商家可预览未发布页面）
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, _ := bearerClaims(c); claims != nil {
			setClaims(c, claims)
		}
		c.Next()
	}
}

// ==================== 辅助函数 ====================

// GetOwnerID 从 Context 获取商家 ID
func GetOwnerID(c *gin.Context) string {
	return c.GetString(ContextKeyOwnerID)
}

// GetOwnerName 从 Context 获取商家名称
func GetOwnerName(c *gin.Context) string {
	return c.GetString(ContextKeyName)
}
