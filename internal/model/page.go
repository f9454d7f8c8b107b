package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// ==================== 页面 ====================

// Page 商家自建的店铺页面，通过 slug 公开访问
type Page struct {
	BaseModel
	AuditMixin

	OwnerID     string         `gorm:"size:64;not null;index;comment:所属商家" json:"owner_id"`
	Title       string         `gorm:"size:255;not null;comment:页面标题" json:"title"`
	Slug        string         `gorm:"size:255;not null;uniqueIndex;comment:公开访问路径" json:"slug"`
	Description string         `gorm:"type:text;comment:页面描述" json:"description"`
	Theme       datatypes.JSON `gorm:"type:jsonb;comment:主题配置" json:"theme"`

	Published   bool       `gorm:"default:false;comment:是否发布" json:"published"`
	PublishedAt *time.Time `gorm:"comment:发布时间" json:"published_at"`

	Blocks []PageBlock `gorm:"foreignKey:PageID;constraint:OnDelete:CASCADE;" json:"blocks,omitempty"`
}

func (Page) TableName() string {
	return "pages"
}

// ==================== 区块 ====================

// BlockType 区块类型
type BlockType string

const (
	BlockTypeCover        BlockType = "cover"
	BlockTypeProductGrid  BlockType = "product_grid"
	BlockTypeTestimonials BlockType = "testimonials"
	BlockTypeFAQ          BlockType = "faq"
	BlockTypeText         BlockType = "text"

	// 以下区块内容来自商家信息（auto/custom）
	BlockTypeHowToBuy  BlockType = "how_to_buy"
	BlockTypeDelivery  BlockType = "delivery"
	BlockTypePickup    BlockType = "pickup"
	BlockTypeShipping  BlockType = "shipping"
	BlockTypePayment   BlockType = "payment"
	BlockTypeGuarantee BlockType = "guarantee"
)

var blockContentTypes = map[BlockType]ContentType{
	BlockTypeHowToBuy:  ContentTypeHowToBuy,
	BlockTypeDelivery:  ContentTypeDelivery,
	BlockTypePickup:    ContentTypePickup,
	BlockTypeShipping:  ContentTypeShipping,
	BlockTypePayment:   ContentTypePayment,
	BlockTypeGuarantee: ContentTypeGuarantee,
}

func (t BlockType) Valid() bool {
	switch t {
	case BlockTypeCover, BlockTypeProductGrid, BlockTypeTestimonials, BlockTypeFAQ, BlockTypeText:
		return true
	}
	_, ok := blockContentTypes[t]
	return ok
}

// ContentType 内容驱动型区块对应的商家信息类型
func (t BlockType) ContentType() (ContentType, bool) {
	ct, ok := blockContentTypes[t]
	return ct, ok
}

// BlockLayout 区块宽度
type BlockLayout string

const (
	LayoutFull BlockLayout = "full"
	LayoutHalf BlockLayout = "half"
)

// PageBlock 页面中的一个区块
type PageBlock struct {
	BaseModel
	AuditMixin

	PageID   int64       `gorm:"index;not null;comment:所属页面" json:"page_id"`
	Type     BlockType   `gorm:"size:32;not null;comment:区块类型" json:"type"`
	Position int         `gorm:"default:0;index;comment:排序" json:"position"`
	Layout   BlockLayout `gorm:"size:16;default:full;comment:宽度 full/half" json:"layout"`
	// Visible 为空视为显示
	Visible *bool `gorm:"comment:是否显示" json:"visible"`

	Settings    datatypes.JSON `gorm:"type:jsonb;comment:区块配置" json:"settings"`
	AutoContent datatypes.JSON `gorm:"type:jsonb;comment:自动内容配置" json:"auto_content"`
}

func (PageBlock) TableName() string {
	return "page_blocks"
}

// IsVisible 缺省为 true
func (b *PageBlock) IsVisible() bool {
	return b.Visible == nil || *b.Visible
}

// GetAutoContent 解析自动内容配置，未配置时返回 nil
func (b *PageBlock) GetAutoContent() (*AutoContentConfig, error) {
	if len(b.AutoContent) == 0 || string(b.AutoContent) == "null" {
		return nil, nil
	}
	var cfg AutoContentConfig
	if err := json.Unmarshal(b.AutoContent, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetAutoContent 写回自动内容配置
func (b *PageBlock) SetAutoContent(cfg *AutoContentConfig) error {
	if cfg == nil {
		b.AutoContent = nil
		return nil
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	b.AutoContent = datatypes.JSON(raw)
	return nil
}

// ==================== 自动内容配置 ====================

// ContentMode 内容来源模式
type ContentMode string

const (
	ContentModeAuto   ContentMode = "auto"
	ContentModeCustom ContentMode = "custom"
)

// AutoContentConfig 区块内容配置
// mode=custom 时只看 Custom；mode=auto 时只看 Auto/Snapshot
type AutoContentConfig struct {
	Mode     ContentMode      `json:"mode"`
	Auto     *ScopeDescriptor `json:"auto,omitempty"`
	Custom   json.RawMessage  `json:"custom,omitempty"`
	Snapshot *ContentSnapshot `json:"snapshot,omitempty"`
}

// IsCustom 空 mode 按 auto 处理
func (c *AutoContentConfig) IsCustom() bool {
	return c != nil && c.Mode == ContentModeCustom
}

// Descriptor auto 模式下的查找描述，未配置时使用 global
func (c *AutoContentConfig) Descriptor() ScopeDescriptor {
	if c == nil || c.Auto == nil {
		return GlobalScope()
	}
	return *c.Auto
}

// ContentSnapshot 冻结的内容快照
// Sync=true 表示忽略快照、实时解析
type ContentSnapshot struct {
	Content json.RawMessage `json:"content,omitempty"`
	TakenAt time.Time       `json:"taken_at"`
	Sync    bool            `json:"sync"`
}

// HasContent 快照内容非空（JSON null 视为空）
func (s *ContentSnapshot) HasContent() bool {
	return s != nil && len(s.Content) > 0 && string(s.Content) != "null"
}
