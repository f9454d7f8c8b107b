package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront_v1_202610/internal/api/dto"
	"storefront_v1_202610/internal/model"
)

// SnapshotManager 冻结 / 读取区块内容快照
// 快照保存的是映射后的内容，读取时不再经过映射
type SnapshotManager struct {
	resolver *ContentResolver
	mapper   *ContentMapper
	now      func() time.Time
}

func NewSnapshotManager(resolver *ContentResolver, mapper *ContentMapper) *SnapshotManager {
	return &SnapshotManager{resolver: resolver, mapper: mapper, now: time.Now}
}

// Capture 实时解析并冻结当前内容；未找到时快照内容为 null
func (s *SnapshotManager) Capture(ctx context.Context, ownerID string, ct model.ContentType, desc model.ScopeDescriptor) (*model.ContentSnapshot, error) {
	section, err := s.resolver.Resolve(ctx, ownerID, ct, desc)
	if err != nil {
		return nil, err
	}

	content := s.mapper.Map(ct, section)
	raw := json.RawMessage("null")
	if content != nil {
		b, err := json.Marshal(content)
		if err != nil {
			return nil, fmt.Errorf("序列化快照失败: %w", err)
		}
		raw = b
	}

	return &model.ContentSnapshot{
		Content: raw,
		TakenAt: s.now().UTC(),
		Sync:    false,
	}, nil
}

// Resolve auto 模式下的内容读取
//   - 快照 sync=true：忽略快照，实时解析
//   - 快照有内容：原样返回，不查询存储
//   - 其它：实时解析，结果不回写快照
func (s *SnapshotManager) Resolve(ctx context.Context, ownerID string, ct model.ContentType, desc model.ScopeDescriptor, snap *model.ContentSnapshot) (dto.BlockContent, dto.ContentSource, error) {
	if snap != nil && !snap.Sync && snap.HasContent() {
		content, err := s.mapper.Decode(ct, snap.Content)
		if err != nil {
			return nil, dto.SourceSnapshot, err
		}
		return content, dto.SourceSnapshot, nil
	}

	section, err := s.resolver.Resolve(ctx, ownerID, ct, desc)
	if err != nil {
		return nil, dto.SourceLive, err
	}
	return s.mapper.Map(ct, section), dto.SourceLive, nil
}
