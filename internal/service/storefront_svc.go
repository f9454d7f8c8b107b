package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"storefront_v1_202610/internal/api/dto"
	"storefront_v1_202610/internal/model"
	"storefront_v1_202610/internal/repository"
	"storefront_v1_202610/pkg/logger"
)

// renderConcurrency 单个页面同时解析的区块数上限
const renderConcurrency = 8

// StorefrontService 公开店铺页渲染
type StorefrontService struct {
	pages    repository.PageRepository
	blocks   repository.BlockRepository
	content  *BlockContentService
	products *ProductService
	log      *logger.Logger
	now      func() time.Time
}

func NewStorefrontService(
	pages repository.PageRepository,
	blocks repository.BlockRepository,
	content *BlockContentService,
	products *ProductService,
	log *logger.Logger,
) *StorefrontService {
	if log == nil {
		log = logger.Nop()
	}
	return &StorefrontService{
		pages:    pages,
		blocks:   blocks,
		content:  content,
		products: products,
		log:      log,
		now:      time.Now,
	}
}

// Render 按 slug 渲染；未发布页面只有页面所有者能看到（预览）
func (s *StorefrontService) Render(ctx context.Context, slug string, viewerOwnerID string) (*dto.StorefrontResp, error) {
	page, err := s.pages.GetBySlug(ctx, slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询页面失败: %w", err)
	}
	if !page.Published && (viewerOwnerID == "" || viewerOwnerID != page.OwnerID) {
		return nil, ErrPageNotPublished
	}

	all, err := s.blocks.ListByPage(ctx, page.ID)
	if err != nil {
		return nil, fmt.Errorf("查询区块失败: %w", err)
	}
	visible := make([]model.PageBlock, 0, len(all))
	for _, b := range all {
		if b.IsVisible() {
			visible = append(visible, b)
		}
	}

	// 每个区块独立解析，结果按下标落位，保持页面顺序
	rendered := make([]dto.RenderedBlock, len(visible))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(renderConcurrency)
	for i := range visible {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rendered[i] = s.renderBlock(gctx, page, &visible[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// 请求已取消时丢弃结果
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &dto.StorefrontResp{
		Page: dto.StorefrontPage{
			ID:          page.ID,
			Title:       page.Title,
			Slug:        page.Slug,
			Description: page.Description,
			PublishedAt: page.PublishedAt,
		},
		Theme:      ThemeVariables(page.Theme),
		Rows:       GroupRows(rendered),
		RenderedAt: s.now().UTC(),
	}, nil
}

func (s *StorefrontService) renderBlock(ctx context.Context, page *model.Page, block *model.PageBlock) dto.RenderedBlock {
	out := dto.RenderedBlock{
		ID:       block.ID,
		Type:     block.Type,
		Layout:   block.Layout,
		Settings: json.RawMessage(block.Settings),
	}
	if out.Layout == "" {
		out.Layout = model.LayoutFull
	}
	if len(out.Settings) == 0 {
		out.Settings = nil
	}

	if ct, ok := block.Type.ContentType(); ok {
		cfg, err := block.GetAutoContent()
		if err != nil {
			s.log.Warn("区块内容配置损坏，按 auto/global 解析", "block_id", block.ID, "error", err)
			cfg = nil
		}
		res := s.content.Resolve(ctx, page.OwnerID, ct, cfg)
		out.Content = res.Content
		out.Source = res.Source
		return out
	}

	if block.Type == model.BlockTypeProductGrid {
		var settings dto.ProductGridSettings
		if len(block.Settings) > 0 {
			if err := json.Unmarshal(block.Settings, &settings); err != nil {
				s.log.Warn("商品网格配置无效，使用默认", "block_id", block.ID, "error", err)
				settings = dto.ProductGridSettings{}
			}
		}
		cards, err := s.products.Grid(ctx, page.OwnerID, settings)
		if err != nil {
			s.log.Warn("商品网格加载失败", "block_id", block.ID, "error", err)
			cards = nil
		}
		if cards == nil {
			cards = []dto.ProductCard{}
		}
		out.Products = cards
	}
	return out
}

// GroupRows 相邻的 half 区块两两成行，full 区块独占一行
// 落单的 half 区块单独成行
func GroupRows(blocks []dto.RenderedBlock) []dto.BlockRow {
	rows := make([]dto.BlockRow, 0, len(blocks))
	for i := 0; i < len(blocks); i++ {
		b := blocks[i]
		if b.Layout == model.LayoutHalf && i+1 < len(blocks) && blocks[i+1].Layout == model.LayoutHalf {
			rows = append(rows, dto.BlockRow{Blocks: []dto.RenderedBlock{b, blocks[i+1]}})
			i++
			continue
		}
		rows = append(rows, dto.BlockRow{Blocks: []dto.RenderedBlock{b}})
	}
	return rows
}
