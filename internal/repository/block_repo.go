package repository

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"

	"storefront_v1_202610/internal/model"
)

// ==================== 接口定义 ====================

// BlockRepository 页面区块仓储接口
type BlockRepository interface {
	// 基础 CRUD
	Create(ctx context.Context, block *model.PageBlock) error
	GetByID(ctx context.Context, id int64) (*model.PageBlock, error)
	Update(ctx context.Context, block *model.PageBlock) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error

	// 查询
	ListByPage(ctx context.Context, pageID int64) ([]model.PageBlock, error)
	MaxPosition(ctx context.Context, pageID int64) (int, error)
	ListWithAutoContent(ctx context.Context, afterID int64, limit int) ([]model.PageBlock, error)

	// 排序
	Reorder(ctx context.Context, pageID int64, orderedIDs []int64) error
}

// ==================== 仓储实现 ====================

type blockRepo struct {
	db *gorm.DB
}

// NewBlockRepository 创建区块仓储
func NewBlockRepository(db *gorm.DB) BlockRepository {
	return &blockRepo{db: db}
}

func (r *blockRepo) Create(ctx context.Context, block *model.PageBlock) error {
	return r.db.WithContext(ctx).Create(block).Error
}

func (r *blockRepo) GetByID(ctx context.Context, id int64) (*model.PageBlock, error) {
	var block model.PageBlock
	err := r.db.WithContext(ctx).First(&block, id).Error
	if err != nil {
		return nil, err
	}
	return &block, nil
}

func (r *blockRepo) Update(ctx context.Context, block *model.PageBlock) error {
	return r.db.WithContext(ctx).Save(block).Error
}

func (r *blockRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.PageBlock{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *blockRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.PageBlock{}, id).Error
}

func (r *blockRepo) ListByPage(ctx context.Context, pageID int64) ([]model.PageBlock, error) {
	var list []model.PageBlock
	err := r.db.WithContext(ctx).
		Where("page_id = ?", pageID).
		Order("position ASC, id ASC").
		Find(&list).Error
	return list, err
}

// MaxPosition 页面内最大排序值，空页面返回 -1
func (r *blockRepo) MaxPosition(ctx context.Context, pageID int64) (int, error) {
	var maxPos sql.NullInt64
	err := r.db.WithContext(ctx).
		Model(&model.PageBlock{}).
		Where("page_id = ?", pageID).
		Select("MAX(position)").
		Row().Scan(&maxPos)
	if err != nil {
		return 0, err
	}
	if !maxPos.Valid {
		return -1, nil
	}
	return int(maxPos.Int64), nil
}

// ListWithAutoContent 按 ID 游标分批拉取带自动内容配置的区块（巡检任务用）
func (r *blockRepo) ListWithAutoContent(ctx context.Context, afterID int64, limit int) ([]model.PageBlock, error) {
	var list []model.PageBlock
	err := r.db.WithContext(ctx).
		Where("id > ? AND auto_content IS NOT NULL", afterID).
		Order("id ASC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// Reorder 按给定顺序重写 position，ID 集合必须与页面现有区块完全一致
func (r *blockRepo) Reorder(ctx context.Context, pageID int64, orderedIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []int64
		if err := tx.Model(&model.PageBlock{}).Where("page_id = ?", pageID).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) != len(orderedIDs) {
			return fmt.Errorf("%w: 期望 %d 个区块，实际 %d 个", ErrBlockSetMismatch, len(ids), len(orderedIDs))
		}

		existing := make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			existing[id] = struct{}{}
		}
		for _, id := range orderedIDs {
			if _, ok := existing[id]; !ok {
				return fmt.Errorf("%w: 区块 %d 不属于页面 %d", ErrBlockSetMismatch, id, pageID)
			}
			delete(existing, id)
		}

		for pos, id := range orderedIDs {
			err := tx.Model(&model.PageBlock{}).
				Where("id = ?", id).
				Update("position", pos).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
