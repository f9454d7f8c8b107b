package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"storefront_v1_202610/internal/api/dto"
	"storefront_v1_202610/internal/model"
	"storefront_v1_202610/internal/repository"
	"storefront_v1_202610/pkg/logger"
	"storefront_v1_202610/pkg/utils"
)

// PageService 店铺页面管理（商家后台）
type PageService struct {
	pages  repository.PageRepository
	blocks repository.BlockRepository
	log    *logger.Logger
}

func NewPageService(pages repository.PageRepository, blocks repository.BlockRepository, log *logger.Logger) *PageService {
	if log == nil {
		log = logger.Nop()
	}
	return &PageService{pages: pages, blocks: blocks, log: log}
}

// Create 新建页面，slug 冲突时自动追加 -2、-3…
func (s *PageService) Create(ctx context.Context, ownerID string, req dto.PageCreateReq) (*model.Page, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrOwnerRequired
	}
	theme, err := optionalJSON(req.Theme)
	if err != nil {
		return nil, err
	}

	base := req.Slug
	if strings.TrimSpace(base) == "" {
		base = req.Title
	}
	slug, err := utils.UniqueSlug(utils.Slugify(base), func(candidate string) (bool, error) {
		return s.pages.SlugExists(ctx, candidate)
	})
	if err != nil {
		return nil, fmt.Errorf("生成 slug 失败: %w", err)
	}

	page := &model.Page{
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(req.Title),
		Slug:        slug,
		Description: req.Description,
		Theme:       theme,
	}
	if err := s.pages.Create(ctx, page); err != nil {
		return nil, fmt.Errorf("创建页面失败: %w", err)
	}

	s.log.Info("页面已创建", "owner_id", ownerID, "page_id", page.ID, "slug", slug)
	return page, nil
}

// Get 页面详情（含区块，按 position 排序）
func (s *PageService) Get(ctx context.Context, ownerID string, id int64) (*dto.PageDetailResp, error) {
	page, err := s.ownedPage(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	blocks, err := s.blocks.ListByPage(ctx, page.ID)
	if err != nil {
		return nil, fmt.Errorf("查询区块失败: %w", err)
	}
	if blocks == nil {
		blocks = []model.PageBlock{}
	}
	return &dto.PageDetailResp{Page: page, Blocks: blocks}, nil
}

func (s *PageService) List(ctx context.Context, ownerID string) ([]model.Page, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrOwnerRequired
	}
	return s.pages.ListByOwner(ctx, ownerID)
}

// Update 部分更新；修改 slug 时同样去重
func (s *PageService) Update(ctx context.Context, ownerID string, id int64, req dto.PageUpdateReq) (*model.Page, error) {
	page, err := s.ownedPage(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		page.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		page.Description = *req.Description
	}
	if len(req.Theme) > 0 {
		theme, err := optionalJSON(req.Theme)
		if err != nil {
			return nil, err
		}
		page.Theme = theme
	}
	if req.Slug != nil {
		next := utils.Slugify(*req.Slug)
		if next != "" && next != page.Slug {
			slug, err := utils.UniqueSlug(next, func(candidate string) (bool, error) {
				return s.pages.SlugExists(ctx, candidate)
			})
			if err != nil {
				return nil, fmt.Errorf("生成 slug 失败: %w", err)
			}
			page.Slug = slug
		}
	}

	if err := s.pages.Update(ctx, page); err != nil {
		return nil, fmt.Errorf("更新页面失败: %w", err)
	}
	return page, nil
}

func (s *PageService) Delete(ctx context.Context, ownerID string, id int64) error {
	if _, err := s.ownedPage(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.pages.Delete(ctx, id); err != nil {
		return fmt.Errorf("删除页面失败: %w", err)
	}
	s.log.Info("页面已删除", "owner_id", ownerID, "page_id", id)
	return nil
}

// SetPublished 发布 / 下线
func (s *PageService) SetPublished(ctx context.Context, ownerID string, id int64, published bool) (*model.Page, error) {
	if _, err := s.ownedPage(ctx, ownerID, id); err != nil {
		return nil, err
	}
	if err := s.pages.SetPublished(ctx, id, published); err != nil {
		return nil, fmt.Errorf("更新发布状态失败: %w", err)
	}
	return s.pages.GetByID(ctx, id)
}

// ==================== 私有方法 ====================

// ownedPage 非本人页面一律按不存在处理
func (s *PageService) ownedPage(ctx context.Context, ownerID string, id int64) (*model.Page, error) {
	return loadOwnedPage(ctx, s.pages, ownerID, id)
}

func loadOwnedPage(ctx context.Context, pages repository.PageRepository, ownerID string, id int64) (*model.Page, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrOwnerRequired
	}
	page, err := pages.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询页面失败: %w", err)
	}
	if page.OwnerID != ownerID {
		return nil, ErrPageNotFound
	}
	return page, nil
}

// optionalJSON 空值返回 nil，非法 JSON 返回 ErrInvalidJSON
func optionalJSON(raw json.RawMessage) (datatypes.JSON, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	if !json.Valid([]byte(trimmed)) {
		return nil, ErrInvalidJSON
	}
	return datatypes.JSON(trimmed), nil
}
