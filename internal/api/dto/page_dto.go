package dto

import (
	"encoding/json"

	"storefront_v1_202610/internal/model"
)

// ================== Page DTO ==================

// PageCreateReq 新建页面；slug 留空时由标题生成
type PageCreateReq struct {
	Title       string          `json:"title" binding:"required,max=255"`
	Slug        string          `json:"slug" binding:"max=255"`
	Description string          `json:"description"`
	Theme       json.RawMessage `json:"theme"`
}

// PageUpdateReq 部分更新，nil 字段不修改
type PageUpdateReq struct {
	Title       *string         `json:"title" binding:"omitempty,max=255"`
	Slug        *string         `json:"slug" binding:"omitempty,max=255"`
	Description *string         `json:"description"`
	Theme       json.RawMessage `json:"theme"`
}

// PageDetailResp 页面详情（含区块）
type PageDetailResp struct {
	*model.Page
	Blocks []model.PageBlock `json:"blocks"`
}

// ================== Block DTO ==================

// BlockCreateReq 添加区块
type BlockCreateReq struct {
	Type     model.BlockType   `json:"type" binding:"required"`
	Layout   model.BlockLayout `json:"layout"`
	Visible  *bool             `json:"visible"`
	Settings json.RawMessage   `json:"settings"`
}

// BlockUpdateReq 部分更新
type BlockUpdateReq struct {
	Layout   *model.BlockLayout `json:"layout"`
	Visible  *bool              `json:"visible"`
	Settings json.RawMessage    `json:"settings"`
}

// BlockReorderReq 拖拽排序后的完整 ID 列表
type BlockReorderReq struct {
	BlockIDs []int64 `json:"block_ids" binding:"required"`
}

// AutoContentReq 修改区块内容模式 / 作用域 / 自定义内容
// 不包含快照，快照只能通过 capture/sync/clear 接口修改
type AutoContentReq struct {
	Mode   model.ContentMode      `json:"mode"`
	Auto   *model.ScopeDescriptor `json:"auto"`
	Custom json.RawMessage        `json:"custom"`
}

// SnapshotSyncReq 切换快照同步
type SnapshotSyncReq struct {
	Sync bool `json:"sync"`
}

// BlockPreviewResp 编辑器预览
type BlockPreviewResp struct {
	BlockID int64           `json:"block_id"`
	Type    model.BlockType `json:"type"`
	ResolvedContent
}
