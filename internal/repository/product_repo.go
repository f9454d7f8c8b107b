package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"storefront_v1_202610/internal/model"
)

// ==================== 接口定义 ====================

// ProductRepository 商品仓储接口
type ProductRepository interface {
	// 基础 CRUD
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error

	// 列表查询
	List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error)
	ListByOwner(ctx context.Context, ownerID string, activeOnly bool) ([]model.Product, error)
}

// ==================== 过滤条件 ====================

// ProductFilter 后台商品列表过滤条件
type ProductFilter struct {
	OwnerID  string
	Category string
	Keyword  string
	Page     int
	PageSize int
}

// ==================== 仓储实现 ====================

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *productRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Product{}, id).Error
}

func (r *productRepo) List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error) {
	var list []model.Product
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Product{}).Where("owner_id = ?", filter.OwnerID)
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(kw)+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	err := q.Order("sort_order ASC, id DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&list).Error
	return list, total, err
}

// ListByOwner 店铺前台用，标签/排序等在 service 层处理
func (r *productRepo) ListByOwner(ctx context.Context, ownerID string, activeOnly bool) ([]model.Product, error) {
	var list []model.Product
	q := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	err := q.Order("sort_order ASC, id ASC").Find(&list).Error
	return list, err
}
