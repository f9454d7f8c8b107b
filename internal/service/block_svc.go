package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"storefront_v1_202610/internal/api/dto"
	"storefront_v1_202610/internal/model"
	"storefront_v1_202610/internal/repository"
	"storefront_v1_202610/pkg/logger"
)

// BlockService 页面区块管理：增删改、排序、内容模式与快照
type BlockService struct {
	pages     repository.PageRepository
	blocks    repository.BlockRepository
	snapshots *SnapshotManager
	content   *BlockContentService
	mapper    *ContentMapper
	log       *logger.Logger
}

func NewBlockService(
	pages repository.PageRepository,
	blocks repository.BlockRepository,
	snapshots *SnapshotManager,
	content *BlockContentService,
	mapper *ContentMapper,
	log *logger.Logger,
) *BlockService {
	if log == nil {
		log = logger.Nop()
	}
	return &BlockService{
		pages:     pages,
		blocks:    blocks,
		snapshots: snapshots,
		content:   content,
		mapper:    mapper,
		log:       log,
	}
}

// ==================== 区块增删改 ====================

// Add 追加到页面末尾；内容驱动型区块默认 auto + global
func (s *BlockService) Add(ctx context.Context, ownerID string, pageID int64, req dto.BlockCreateReq) (*model.PageBlock, error) {
	page, err := loadOwnedPage(ctx, s.pages, ownerID, pageID)
	if err != nil {
		return nil, err
	}
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBlockType, req.Type)
	}
	layout, err := normalizeLayout(req.Layout)
	if err != nil {
		return nil, err
	}
	settings, err := optionalJSON(req.Settings)
	if err != nil {
		return nil, err
	}

	maxPos, err := s.blocks.MaxPosition(ctx, page.ID)
	if err != nil {
		return nil, fmt.Errorf("查询排序失败: %w", err)
	}

	block := &model.PageBlock{
		PageID:   page.ID,
		Type:     req.Type,
		Position: maxPos + 1,
		Layout:   layout,
		Visible:  req.Visible,
		Settings: settings,
	}
	if _, ok := req.Type.ContentType(); ok {
		global := model.GlobalScope()
		if err := block.SetAutoContent(&model.AutoContentConfig{Mode: model.ContentModeAuto, Auto: &global}); err != nil {
			return nil, err
		}
	}

	if err := s.blocks.Create(ctx, block); err != nil {
		return nil, fmt.Errorf("创建区块失败: %w", err)
	}
	return block, nil
}

func (s *BlockService) Update(ctx context.Context, ownerID string, blockID int64, req dto.BlockUpdateReq) (*model.PageBlock, error) {
	block, err := s.ownedBlock(ctx, ownerID, blockID)
	if err != nil {
		return nil, err
	}

	if req.Layout != nil {
		layout, err := normalizeLayout(*req.Layout)
		if err != nil {
			return nil, err
		}
		block.Layout = layout
	}
	if req.Visible != nil {
		block.Visible = req.Visible
	}
	if len(req.Settings) > 0 {
		settings, err := optionalJSON(req.Settings)
		if err != nil {
			return nil, err
		}
		block.Settings = settings
	}

	if err := s.blocks.Update(ctx, block); err != nil {
		return nil, fmt.Errorf("更新区块失败: %w", err)
	}
	return block, nil
}

func (s *BlockService) Remove(ctx context.Context, ownerID string, blockID int64) error {
	if _, err := s.ownedBlock(ctx, ownerID, blockID); err != nil {
		return err
	}
	if err := s.blocks.Delete(ctx, blockID); err != nil {
		return fmt.Errorf("删除区块失败: %w", err)
	}
	return nil
}

// Reorder 拖拽排序，blockIDs 必须是页面全部区块
func (s *BlockService) Reorder(ctx context.Context, ownerID string, pageID int64, blockIDs []int64) ([]model.PageBlock, error) {
	if _, err := loadOwnedPage(ctx, s.pages, ownerID, pageID); err != nil {
		return nil, err
	}
	if err := s.blocks.Reorder(ctx, pageID, blockIDs); err != nil {
		return nil, err
	}
	return s.blocks.ListByPage(ctx, pageID)
}

// ==================== 内容模式 ====================

// UpdateAutoContent 修改模式 / 作用域 / 自定义内容，已有快照保留
func (s *BlockService) UpdateAutoContent(ctx context.Context, ownerID string, blockID int64, req dto.AutoContentReq) (*model.AutoContentConfig, error) {
	block, ct, cfg, err := s.contentBlock(ctx, ownerID, blockID)
	if err != nil {
		return nil, err
	}

	switch req.Mode {
	case "", model.ContentModeAuto, model.ContentModeCustom:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, req.Mode)
	}

	if req.Auto != nil {
		desc, err := req.Auto.Normalize()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidScope, err)
		}
		cfg.Auto = &desc
	}
	if len(req.Custom) > 0 {
		if _, err := s.mapper.Decode(ct, req.Custom); err != nil {
			return nil, err
		}
		cfg.Custom = req.Custom
	}
	if req.Mode != "" {
		cfg.Mode = req.Mode
	}
	if cfg.IsCustom() && len(cfg.Custom) == 0 {
		return nil, fmt.Errorf("%w: custom 模式缺少内容", ErrInvalidContent)
	}

	if err := s.saveConfig(ctx, block, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CaptureSnapshot 按当前作用域冻结内容
func (s *BlockService) CaptureSnapshot(ctx context.Context, ownerID string, blockID int64) (*model.AutoContentConfig, error) {
	block, ct, cfg, err := s.contentBlock(ctx, ownerID, blockID)
	if err != nil {
		return nil, err
	}

	snap, err := s.snapshots.Capture(ctx, ownerID, ct, cfg.Descriptor())
	if err != nil {
		return nil, err
	}
	cfg.Snapshot = snap

	if err := s.saveConfig(ctx, block, cfg); err != nil {
		return nil, err
	}
	s.log.Info("区块快照已冻结", "owner_id", ownerID, "block_id", blockID, "content_type", ct, "empty", !snap.HasContent())
	return cfg, nil
}

// SetSnapshotSync sync=true 时忽略快照、实时读取
func (s *BlockService) SetSnapshotSync(ctx context.Context, ownerID string, blockID int64, sync bool) (*model.AutoContentConfig, error) {
	block, _, cfg, err := s.contentBlock(ctx, ownerID, blockID)
	if err != nil {
		return nil, err
	}
	if cfg.Snapshot == nil {
		cfg.Snapshot = &model.ContentSnapshot{}
	}
	cfg.Snapshot.Sync = sync

	if err := s.saveConfig(ctx, block, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *BlockService) ClearSnapshot(ctx context.Context, ownerID string, blockID int64) (*model.AutoContentConfig, error) {
	block, _, cfg, err := s.contentBlock(ctx, ownerID, blockID)
	if err != nil {
		return nil, err
	}
	cfg.Snapshot = nil

	if err := s.saveConfig(ctx, block, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Preview 编辑器预览：与公开页相同的解析流程
func (s *BlockService) Preview(ctx context.Context, ownerID string, blockID int64) (*dto.BlockPreviewResp, error) {
	block, ct, cfg, err := s.contentBlock(ctx, ownerID, blockID)
	if err != nil {
		return nil, err
	}
	return &dto.BlockPreviewResp{
		BlockID:         block.ID,
		Type:            block.Type,
		ResolvedContent: s.content.Resolve(ctx, ownerID, ct, cfg),
	}, nil
}

// ==================== 私有方法 ====================

func (s *BlockService) ownedBlock(ctx context.Context, ownerID string, blockID int64) (*model.PageBlock, error) {
	block, err := s.blocks.GetByID(ctx, blockID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBlockNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询区块失败: %w", err)
	}
	if _, err := loadOwnedPage(ctx, s.pages, ownerID, block.PageID); err != nil {
		if errors.Is(err, ErrPageNotFound) {
			return nil, ErrBlockNotFound
		}
		return nil, err
	}
	return block, nil
}

// contentBlock 读取内容驱动型区块及其配置；配置损坏时从默认配置重新开始
func (s *BlockService) contentBlock(ctx context.Context, ownerID string, blockID int64) (*model.PageBlock, model.ContentType, *model.AutoContentConfig, error) {
	block, err := s.ownedBlock(ctx, ownerID, blockID)
	if err != nil {
		return nil, "", nil, err
	}
	ct, ok := block.Type.ContentType()
	if !ok {
		return nil, "", nil, ErrNotContentBlock
	}

	cfg, err := block.GetAutoContent()
	if err != nil {
		s.log.Warn("区块内容配置损坏，已重置", "block_id", blockID, "error", err)
		cfg = nil
	}
	if cfg == nil {
		global := model.GlobalScope()
		cfg = &model.AutoContentConfig{Mode: model.ContentModeAuto, Auto: &global}
	}
	return block, ct, cfg, nil
}

func (s *BlockService) saveConfig(ctx context.Context, block *model.PageBlock, cfg *model.AutoContentConfig) error {
	if err := block.SetAutoContent(cfg); err != nil {
		return fmt.Errorf("序列化内容配置失败: %w", err)
	}
	if err := s.blocks.UpdateFields(ctx, block.ID, map[string]interface{}{"auto_content": block.AutoContent}); err != nil {
		return fmt.Errorf("保存内容配置失败: %w", err)
	}
	return nil
}

func normalizeLayout(layout model.BlockLayout) (model.BlockLayout, error) {
	switch layout {
	case "":
		return model.LayoutFull, nil
	case model.LayoutFull, model.LayoutHalf:
		return layout, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidLayout, layout)
}
