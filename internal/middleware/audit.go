package middleware

import (
	"context"
	"reflect"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ==================== 审计上下文 ====================

type auditContextKey struct{}

// AuditInfo 审计信息
type AuditInfo struct {
	OwnerID string
	Name    string
}

// WithAuditInfo 注入审计信息到 context
func WithAuditInfo(ctx context.Context, ownerID string, name string) context.Context {
	return context.WithValue(ctx, auditContextKey{}, &AuditInfo{
		OwnerID: ownerID,
		Name:    name,
	})
}

// GetAuditInfo 从 context 获取审计信息
func GetAuditInfo(ctx context.Context) *AuditInfo {
	if info, ok := ctx.Value(auditContextKey{}).(*AuditInfo); ok {
		return info
	}
	return nil
}

// GetAuditOwnerID 从 context 获取操作人
func GetAuditOwnerID(ctx context.Context) string {
	if info := GetAuditInfo(ctx); info != nil {
		return info.OwnerID
	}
	return ""
}

// ==================== Gin 中间件 ====================

// AuditContext 将 JWT 中的商家信息注入 request context，供 GORM 回调使用
func AuditContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ownerID := GetOwnerID(c); ownerID != "" {
			ctx := WithAuditInfo(c.Request.Context(), ownerID, GetOwnerName(c))
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()
	}
}

// ==================== GORM 回调 ====================

// RegisterAuditCallbacks 在 Create/Update 时自动填充 CreatedBy/UpdatedBy
func RegisterAuditCallbacks(db *gorm.DB) error {
	err := db.Callback().Create().Before("gorm:create").Register("audit:create", func(tx *gorm.DB) {
		ownerID := auditOwner(tx)
		if ownerID == "" {
			return
		}
		setAuditField(tx, "CreatedBy", ownerID, true)
		setAuditField(tx, "UpdatedBy", ownerID, true)
	})
	if err != nil {
		return err
	}

	return db.Callback().Update().Before("gorm:update").Register("audit:update", func(tx *gorm.DB) {
		ownerID := auditOwner(tx)
		if ownerID == "" {
			return
		}
		// SetColumn 同时兼容 Updates(struct) 与 Updates(map)
		if tx.Statement.Schema != nil && tx.Statement.Schema.LookUpField("UpdatedBy") != nil {
			tx.Statement.SetColumn("UpdatedBy", ownerID, true)
		}
	})
}

func auditOwner(tx *gorm.DB) string {
	if tx.Statement.Context == nil {
		return ""
	}
	return GetAuditOwnerID(tx.Statement.Context)
}

// setAuditField 设置审计字段；onlyZero 时不覆盖已有值
func setAuditField(tx *gorm.DB, fieldName string, value string, onlyZero bool) {
	if tx.Statement.Schema == nil {
		return
	}

	field := tx.Statement.Schema.LookUpField(fieldName)
	if field == nil {
		return
	}

	apply := func(rv reflect.Value) {
		if _, isZero := field.ValueOf(tx.Statement.Context, rv); isZero || !onlyZero {
			_ = field.Set(tx.Statement.Context, rv, value)
		}
	}

	rv := reflect.Indirect(tx.Statement.ReflectValue)
	switch rv.Kind() {
	case reflect.Struct:
		apply(rv)
	case reflect.Slice:
		// 批量插入
		for i := 0; i < rv.Len(); i++ {
			apply(reflect.Indirect(rv.Index(i)))
		}
	}
}
