package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"storefront_v1_202610/internal/model"
)

// ==================== 接口定义 ====================

// PageRepository 页面仓储接口
type PageRepository interface {
	// 基础 CRUD
	Create(ctx context.Context, page *model.Page) error
	GetByID(ctx context.Context, id int64) (*model.Page, error)
	GetBySlug(ctx context.Context, slug string) (*model.Page, error)
	Update(ctx context.Context, page *model.Page) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error

	// 查询
	ListByOwner(ctx context.Context, ownerID string) ([]model.Page, error)
	SlugExists(ctx context.Context, slug string) (bool, error)

	// 发布
	SetPublished(ctx context.Context, id int64, published bool) error
}

// ==================== 仓储实现 ====================

type pageRepo struct {
	db *gorm.DB
}

// NewPageRepository 创建页面仓储
func NewPageRepository(db *gorm.DB) PageRepository {
	return &pageRepo{db: db}
}

func (r *pageRepo) Create(ctx context.Context, page *model.Page) error {
	return r.db.WithContext(ctx).Create(page).Error
}

func (r *pageRepo) GetByID(ctx context.Context, id int64) (*model.Page, error) {
	var page model.Page
	err := r.db.WithContext(ctx).First(&page, id).Error
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *pageRepo) GetBySlug(ctx context.Context, slug string) (*model.Page, error) {
	var page model.Page
	err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&page).Error
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *pageRepo) Update(ctx context.Context, page *model.Page) error {
	return r.db.WithContext(ctx).Save(page).Error
}

func (r *pageRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Page{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// Delete 删除页面及其全部区块
func (r *pageRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("page_id = ?", id).Delete(&model.PageBlock{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Page{}, id).Error
	})
}

func (r *pageRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Page, error) {
	var list []model.Page
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("updated_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

// SlugExists 包含软删除的记录，slug 唯一索引不区分删除状态
func (r *pageRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Unscoped().
		Model(&model.Page{}).
		Where("slug = ?", slug).
		Count(&count).Error
	return count > 0, err
}

func (r *pageRepo) SetPublished(ctx context.Context, id int64, published bool) error {
	fields := map[string]interface{}{"published": published}
	if published {
		fields["published_at"] = time.Now()
	} else {
		fields["published_at"] = nil
	}
	return r.UpdateFields(ctx, id, fields)
}
