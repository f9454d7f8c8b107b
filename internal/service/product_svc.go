package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"storefront_v1_202610/internal/api/dto"
	"storefront_v1_202610/internal/model"
	"storefront_v1_202610/internal/repository"
)

const (
	defaultGridLimit = 12
	maxGridLimit     = 48
)

type ProductService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// ==================== 后台 CRUD ====================

func (s *ProductService) Create(ctx context.Context, ownerID string, req dto.ProductSaveReq) (*model.Product, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrOwnerRequired
	}
	product := &model.Product{OwnerID: ownerID}
	applyProductReq(product, req)
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("创建商品失败: %w", err)
	}
	return product, nil
}

func (s *ProductService) Get(ctx context.Context, ownerID string, id int64) (*model.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询商品失败: %w", err)
	}
	if product.OwnerID != ownerID {
		return nil, ErrProductNotFound
	}
	return product, nil
}

func (s *ProductService) Update(ctx context.Context, ownerID string, id int64, req dto.ProductSaveReq) (*model.Product, error) {
	product, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	applyProductReq(product, req)
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("更新商品失败: %w", err)
	}
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, ownerID string, id int64) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *ProductService) List(ctx context.Context, ownerID string, req dto.ProductListReq) ([]model.Product, int64, error) {
	return s.repo.List(ctx, repository.ProductFilter{
		OwnerID:  ownerID,
		Category: req.Category,
		Keyword:  req.Keyword,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
}

// ==================== 商品网格 ====================

// Grid product_grid 区块的商品；只取上架商品
// 标签过滤在内存中完成，sqlite 测试库不支持数组运算
func (s *ProductService) Grid(ctx context.Context, ownerID string, settings dto.ProductGridSettings) ([]dto.ProductCard, error) {
	products, err := s.repo.ListByOwner(ctx, ownerID, true)
	if err != nil {
		return nil, fmt.Errorf("查询商品失败: %w", err)
	}

	filtered := make([]model.Product, 0, len(products))
	for _, p := range products {
		if settings.Category != "" && !strings.EqualFold(p.Category, settings.Category) {
			continue
		}
		if settings.Tag != "" && !p.HasTag(settings.Tag) {
			continue
		}
		if settings.FeaturedOnly && !p.Featured {
			continue
		}
		filtered = append(filtered, p)
	}

	sortProducts(filtered, settings.Sort)

	limit := settings.Limit
	if limit <= 0 {
		limit = defaultGridLimit
	}
	if limit > maxGridLimit {
		limit = maxGridLimit
	}
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}

	cards := make([]dto.ProductCard, 0, len(filtered))
	for _, p := range filtered {
		cards = append(cards, dto.ProductCard{
			ID:       p.ID,
			Name:     p.Name,
			Price:    centsToPrice(p.PriceCents),
			Currency: p.CurrencyCode,
			ImageURL: p.ImageURL,
			Featured: p.Featured,
		})
	}
	return cards, nil
}

// ToProductResp 模型转响应
func (s *ProductService) ToProductResp(p *model.Product) dto.ProductResp {
	tags := []string(p.Tags)
	if tags == nil {
		tags = []string{}
	}
	return dto.ProductResp{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       centsToPrice(p.PriceCents),
		PriceCents:  p.PriceCents,
		Currency:    p.CurrencyCode,
		Category:    p.Category,
		Tags:        tags,
		ImageURL:    p.ImageURL,
		Featured:    p.Featured,
		Active:      p.Active,
		SortOrder:   p.SortOrder,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ==================== 私有方法 ====================

func applyProductReq(p *model.Product, req dto.ProductSaveReq) {
	p.Name = strings.TrimSpace(req.Name)
	p.Description = req.Description
	p.PriceCents = int64(math.Round(req.Price * 100))
	p.CurrencyCode = strings.ToUpper(strings.TrimSpace(req.Currency))
	if p.CurrencyCode == "" {
		p.CurrencyCode = "BRL"
	}
	p.Category = strings.TrimSpace(req.Category)
	p.Tags = normalizeTags(req.Tags)
	p.ImageURL = req.ImageURL
	p.Featured = req.Featured
	p.Active = req.Active == nil || *req.Active
	p.SortOrder = req.SortOrder
}

func normalizeTags(tags []string) pq.StringArray {
	out := make(pq.StringArray, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

func sortProducts(list []model.Product, by dto.GridSort) {
	var less func(a, b model.Product) bool
	switch by {
	case dto.GridSortPriceAsc:
		less = func(a, b model.Product) bool { return a.PriceCents < b.PriceCents }
	case dto.GridSortPriceDesc:
		less = func(a, b model.Product) bool { return a.PriceCents > b.PriceCents }
	case dto.GridSortName:
		less = func(a, b model.Product) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case dto.GridSortNewest:
		less = func(a, b model.Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	default:
		// manual：沿用仓储的 sort_order, id 顺序
		return
	}
	sort.SliceStable(list, func(i, j int) bool { return less(list[i], list[j]) })
}

func centsToPrice(cents int64) float64 {
	return float64(cents) / 100
}
