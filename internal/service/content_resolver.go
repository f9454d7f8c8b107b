package service

import (
	"context"
	"fmt"
	"strings"

	"storefront_v1_202610/internal/model"
	"storefront_v1_202610/internal/repository"
)

// ContentResolver 按作用域查找商家信息，未命中时按配置回退到 global
// 只读，最多两次查询；scoped 优先于 global，global 不会查第二次
type ContentResolver struct {
	store repository.ScopeStore
}

func NewContentResolver(store repository.ScopeStore) *ContentResolver {
	return &ContentResolver{store: store}
}

// Resolve 未找到返回 (nil, nil)；存储故障包装为 ErrStoreUnavailable
func (r *ContentResolver) Resolve(ctx context.Context, ownerID string, contentType model.ContentType, desc model.ScopeDescriptor) (*model.BusinessInfoSection, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrOwnerRequired
	}
	if !contentType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownContentType, contentType)
	}
	desc, err := desc.Normalize()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScope, err)
	}

	key := model.SectionKey{
		OwnerID:     ownerID,
		ContentType: contentType,
		Scope:       desc.Scope,
		ScopeID:     desc.ScopeID,
	}

	section, err := r.fetch(ctx, key)
	if err != nil || section != nil {
		return section, err
	}

	if desc.Scope == model.ScopeGlobal || !desc.ShouldFallback() {
		return nil, nil
	}
	return r.fetch(ctx, key.Global())
}

func (r *ContentResolver) fetch(ctx context.Context, key model.SectionKey) (*model.BusinessInfoSection, error) {
	section, err := r.store.FetchOne(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %w", ErrStoreUnavailable, key.ContentType, key.Scope, err)
	}
	// global 只接受 scope_id 为 NULL 的记录（空字符串也不算）
	if section != nil && key.Scope == model.ScopeGlobal && section.ScopeID != nil {
		return nil, nil
	}
	return section, nil
}
