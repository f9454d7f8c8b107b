package model

import (
	"time"

	"gorm.io/gorm"
)

type BaseModel struct {
	ID        int64          `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// AuditMixin 审计字段 (只记录，不参与 WHERE 查询权限)
// 由 middleware.RegisterAuditCallbacks 在 Create/Update 时自动填充
type AuditMixin struct {
	CreatedBy string `gorm:"size:64;comment:创建人" json:"created_by"`
	UpdatedBy string `gorm:"size:64;comment:更新人" json:"updated_by"`
}

// Models 需要自动迁移的全部表
func Models() []interface{} {
	return []interface{}{
		&Page{},
		&PageBlock{},
		&BusinessInfoSection{},
		&Product{},
	}
}
