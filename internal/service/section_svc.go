package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"storefront_v1_202610/internal/api/dto"
	"storefront_v1_202610/internal/model"
	"storefront_v1_202610/internal/repository"
)

// SectionService 商家信息分区维护
type SectionService struct {
	repo     repository.SectionRepository
	resolver *ContentResolver
	mapper   *ContentMapper
}

func NewSectionService(repo repository.SectionRepository, resolver *ContentResolver, mapper *ContentMapper) *SectionService {
	return &SectionService{repo: repo, resolver: resolver, mapper: mapper}
}

// Upsert 同一 (owner, content_type, scope, scope_id) 只保留一条
func (s *SectionService) Upsert(ctx context.Context, ownerID string, req dto.SectionUpsertReq) (*model.BusinessInfoSection, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrOwnerRequired
	}
	if !req.ContentType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownContentType, req.ContentType)
	}
	desc, err := model.ScopeDescriptor{Scope: req.Scope, ScopeID: trimmedPtr(req.ScopeID)}.Normalize()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScope, err)
	}
	items, err := optionalJSON(req.Items)
	if err != nil {
		return nil, err
	}

	section := &model.BusinessInfoSection{
		OwnerID:         ownerID,
		ContentType:     req.ContentType,
		Scope:           desc.Scope,
		ScopeID:         desc.ScopeID,
		Title:           req.Title,
		Items:           items,
		ContentMarkdown: req.ContentMarkdown,
	}
	if err := s.repo.Upsert(ctx, section); err != nil {
		return nil, fmt.Errorf("保存商家信息失败: %w", err)
	}
	return section, nil
}

func (s *SectionService) List(ctx context.Context, ownerID string, ct model.ContentType) ([]model.BusinessInfoSection, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrOwnerRequired
	}
	if ct != "" && !ct.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownContentType, ct)
	}
	return s.repo.ListByOwner(ctx, ownerID, ct)
}

func (s *SectionService) Delete(ctx context.Context, ownerID string, id int64) error {
	err := s.repo.Delete(ctx, ownerID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrSectionNotFound
	}
	return err
}

// Resolve 试算：返回命中的记录与映射后的内容
// 与区块渲染不同，这里把存储故障直接报给调用方
func (s *SectionService) Resolve(ctx context.Context, ownerID string, req dto.SectionResolveReq) (*dto.SectionResolveResp, error) {
	desc := model.ScopeDescriptor{
		Scope:            req.Scope,
		ScopeID:          trimmedPtr(req.ScopeID),
		FallbackToGlobal: req.Fallback,
	}
	section, err := s.resolver.Resolve(ctx, ownerID, req.ContentType, desc)
	if err != nil {
		return nil, err
	}
	return &dto.SectionResolveResp{
		Section: section,
		Content: s.mapper.Map(req.ContentType, section),
	}, nil
}

func trimmedPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
