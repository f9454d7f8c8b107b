package model

import (
	"strings"

	"github.com/lib/pq"
)

// Product 商品（目录展示用，不含库存/订单）
type Product struct {
	BaseModel
	AuditMixin

	OwnerID     string `gorm:"size:64;not null;index:idx_owner_active;comment:所属商家" json:"owner_id"`
	Name        string `gorm:"size:255;not null;comment:商品名称" json:"name"`
	Description string `gorm:"type:text;comment:商品描述" json:"description"`

	// --- 价格（单位：分） ---
	PriceCents   int64  `gorm:"default:0;comment:价格(分)" json:"price_cents"`
	CurrencyCode string `gorm:"size:5;default:BRL;comment:货币代码" json:"currency_code"`

	// --- 分类与标签 (Postgres Array) ---
	Category string         `gorm:"size:100;index;comment:分类" json:"category"`
	Tags     pq.StringArray `gorm:"type:text[];comment:标签" json:"tags"`

	ImageURL  string `gorm:"size:512;comment:主图" json:"image_url"`
	Featured  bool   `gorm:"default:false;comment:是否推荐" json:"featured"`
	Active    bool   `gorm:"not null;index:idx_owner_active;comment:是否上架" json:"active"`
	SortOrder int    `gorm:"default:0;comment:手动排序" json:"sort_order"`
}

func (Product) TableName() string {
	return "products"
}

// HasTag 标签匹配，忽略大小写
func (p *Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
