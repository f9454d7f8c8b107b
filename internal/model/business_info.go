package model

import (
	"errors"
	"strings"

	"gorm.io/datatypes"
)

// ==================== 内容类型 ====================

// ContentType 商家信息分区类型，一个类型对应一个逻辑分区
type ContentType string

const (
	ContentTypeHowToBuy  ContentType = "how_to_buy"
	ContentTypeDelivery  ContentType = "delivery"
	ContentTypePickup    ContentType = "pickup"
	ContentTypeShipping  ContentType = "shipping"
	ContentTypePayment   ContentType = "payment"
	ContentTypeGuarantee ContentType = "guarantee"
)

// ContentTypes 全部合法的内容类型（顺序即后台展示顺序）
var ContentTypes = []ContentType{
	ContentTypeHowToBuy,
	ContentTypeDelivery,
	ContentTypePickup,
	ContentTypeShipping,
	ContentTypePayment,
	ContentTypeGuarantee,
}

func (t ContentType) Valid() bool {
	for _, ct := range ContentTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// ==================== 作用域 ====================

// Scope 内容覆盖粒度
type Scope string

const (
	ScopeGlobal   Scope = "global"
	ScopeCategory Scope = "category"
	ScopeTag      Scope = "tag"
	ScopeProduct  Scope = "product"
)

func (s Scope) Valid() bool {
	switch s {
	case ScopeGlobal, ScopeCategory, ScopeTag, ScopeProduct:
		return true
	}
	return false
}

var (
	ErrUnknownScope   = errors.New("未知的作用域")
	ErrScopeIDMissing = errors.New("非 global 作用域必须指定 scope_id")
)

// ScopeDescriptor 内容查找描述
// FallbackToGlobal 为空时视为 true（默认回退到 global）
type ScopeDescriptor struct {
	Scope            Scope   `json:"scope"`
	ScopeID          *string `json:"scope_id,omitempty"`
	FallbackToGlobal *bool   `json:"fallback_to_global,omitempty"`
}

// GlobalScope 默认的 global 描述
func GlobalScope() ScopeDescriptor {
	return ScopeDescriptor{Scope: ScopeGlobal}
}

// ShouldFallback 未命中时是否回退到 global，缺省为 true
func (d ScopeDescriptor) ShouldFallback() bool {
	if d.FallbackToGlobal == nil {
		return true
	}
	return *d.FallbackToGlobal
}

// Normalize 校验并规范化
// global 永远不带 scope_id；其它作用域必须有非空 scope_id
func (d ScopeDescriptor) Normalize() (ScopeDescriptor, error) {
	if d.Scope == "" {
		d.Scope = ScopeGlobal
	}
	if !d.Scope.Valid() {
		return d, ErrUnknownScope
	}
	if d.Scope == ScopeGlobal {
		d.ScopeID = nil
		return d, nil
	}
	if d.ScopeID == nil || strings.TrimSpace(*d.ScopeID) == "" {
		return d, ErrScopeIDMissing
	}
	return d, nil
}

// ==================== 存储模型 ====================

// SectionKey 分区唯一键 (owner, content_type, scope, scope_id)
// 作为复合值使用，不拼接成字符串，避免 tag/5 与 category/5 冲突
type SectionKey struct {
	OwnerID     string
	ContentType ContentType
	Scope       Scope
	ScopeID     *string // global 时必须为 nil
}

// Global 返回同 owner、同类型的 global 键
func (k SectionKey) Global() SectionKey {
	return SectionKey{OwnerID: k.OwnerID, ContentType: k.ContentType, Scope: ScopeGlobal}
}

// BusinessInfoSection 商家信息分区（支付、配送、购买方式等）
type BusinessInfoSection struct {
	BaseModel
	AuditMixin

	// 唯一键拆成两个部分索引：NULL 不参与唯一约束，global 需要单独约束
	OwnerID     string      `gorm:"size:64;not null;uniqueIndex:uq_section_global,priority:1,where:scope_id IS NULL AND deleted_at IS NULL;uniqueIndex:uq_section_scoped,priority:1,where:scope_id IS NOT NULL AND deleted_at IS NULL;comment:所属商家" json:"owner_id"`
	ContentType ContentType `gorm:"size:32;not null;uniqueIndex:uq_section_global,priority:2;uniqueIndex:uq_section_scoped,priority:2;comment:内容类型" json:"content_type"`
	Scope       Scope       `gorm:"size:16;not null;default:global;uniqueIndex:uq_section_global,priority:3;uniqueIndex:uq_section_scoped,priority:3;comment:作用域" json:"scope"`
	ScopeID     *string     `gorm:"size:64;uniqueIndex:uq_section_scoped,priority:4;comment:作用域ID(global为NULL)" json:"scope_id"`

	Title           *string        `gorm:"size:255;comment:标题" json:"title"`
	Items           datatypes.JSON `gorm:"type:jsonb;comment:结构化条目" json:"items"`
	ContentMarkdown *string        `gorm:"type:text;comment:Markdown 正文" json:"content_markdown"`
}

func (BusinessInfoSection) TableName() string {
	return "business_info_sections"
}

// Key 返回记录的复合键
func (s *BusinessInfoSection) Key() SectionKey {
	return SectionKey{
		OwnerID:     s.OwnerID,
		ContentType: s.ContentType,
		Scope:       s.Scope,
		ScopeID:     s.ScopeID,
	}
}
