package service

import (
	"context"
	"errors"
	"strings"

	"storefront_v1_202610/internal/api/dto"
	"storefront_v1_202610/internal/model"
	"storefront_v1_202610/pkg/logger"
)

// BlockContentService 决定区块最终显示什么内容
// 对调用方永不报错：任何失败都降级为该类型的默认内容
type BlockContentService struct {
	snapshots *SnapshotManager
	mapper    *ContentMapper
	log       *logger.Logger
}

func NewBlockContentService(snapshots *SnapshotManager, mapper *ContentMapper, log *logger.Logger) *BlockContentService {
	if log == nil {
		log = logger.Nop()
	}
	return &BlockContentService{snapshots: snapshots, mapper: mapper, log: log}
}

// Resolve 解析顺序：custom -> 快照 -> 实时
func (s *BlockContentService) Resolve(ctx context.Context, ownerID string, ct model.ContentType, cfg *model.AutoContentConfig) dto.ResolvedContent {
	// custom 优先，不访问存储，也不看快照
	if cfg.IsCustom() {
		content, err := s.mapper.Decode(ct, cfg.Custom)
		if err != nil {
			s.log.Warn("自定义内容解析失败", "content_type", ct, "error", err)
			return dto.ResolvedContent{Content: nil, Source: dto.SourceCustom}
		}
		return dto.ResolvedContent{Content: content, Source: dto.SourceCustom}
	}

	if strings.TrimSpace(ownerID) == "" {
		s.log.Warn("缺少商家身份，使用默认内容", "content_type", ct)
		return s.fallback(ct)
	}

	var snap *model.ContentSnapshot
	if cfg != nil {
		snap = cfg.Snapshot
	}

	content, source, err := s.snapshots.Resolve(ctx, ownerID, ct, cfg.Descriptor(), snap)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.log.Debug("请求已取消", "content_type", ct, "owner_id", ownerID)
		} else {
			s.log.Warn("区块内容解析失败，使用默认内容", "content_type", ct, "owner_id", ownerID, "error", err)
		}
		return s.fallback(ct)
	}
	return dto.ResolvedContent{Content: content, Source: source}
}

func (s *BlockContentService) fallback(ct model.ContentType) dto.ResolvedContent {
	return dto.ResolvedContent{Content: s.mapper.Default(ct), Source: dto.SourceDefault}
}
