package dto

import (
	"encoding/json"
	"time"

	"storefront_v1_202610/internal/model"
)

// ================== 商家信息分区 ==================

// SectionUpsertReq 按 (content_type, scope, scope_id) 新建或覆盖
type SectionUpsertReq struct {
	ContentType     model.ContentType `json:"content_type" binding:"required"`
	Scope           model.Scope       `json:"scope"`
	ScopeID         *string           `json:"scope_id"`
	Title           *string           `json:"title"`
	Items           json.RawMessage   `json:"items"`
	ContentMarkdown *string           `json:"content_markdown"`
}

// SectionResolveReq 编辑器里试算某个作用域最终会显示什么
type SectionResolveReq struct {
	ContentType model.ContentType `form:"content_type" binding:"required"`
	Scope       model.Scope       `form:"scope"`
	ScopeID     *string           `form:"scope_id"`
	Fallback    *bool             `form:"fallback"`
}

// SectionResolveResp 试算结果；Section 为 nil 表示没有命中
type SectionResolveResp struct {
	Section *model.BusinessInfoSection `json:"section"`
	Content BlockContent               `json:"content"`
}

// ================== 公开店铺页 ==================

// StorefrontResp 公开渲染结果
type StorefrontResp struct {
	Page       StorefrontPage    `json:"page"`
	Theme      map[string]string `json:"theme"`
	Rows       []BlockRow        `json:"rows"`
	RenderedAt time.Time         `json:"rendered_at"`
}

type StorefrontPage struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	PublishedAt *time.Time `json:"published_at"`
}

// BlockRow 一行：一个 full 区块，或最多两个 half 区块
type BlockRow struct {
	Blocks []RenderedBlock `json:"blocks"`
}

// RenderedBlock 单个区块的渲染数据
type RenderedBlock struct {
	ID       int64             `json:"id"`
	Type     model.BlockType   `json:"type"`
	Layout   model.BlockLayout `json:"layout"`
	Settings json.RawMessage   `json:"settings,omitempty"`

	// 内容驱动型区块
	Content BlockContent  `json:"content,omitempty"`
	Source  ContentSource `json:"source,omitempty"`

	// 商品网格
	Products []ProductCard `json:"products,omitempty"`
}
