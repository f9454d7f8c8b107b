package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront_v1_202610/internal/model"
)

// ==================== 接口定义 ====================

// ScopeStore 商家信息按作用域查找的契约
// 未找到返回 (nil, nil)；只有存储故障才返回 error
type ScopeStore interface {
	FetchOne(ctx context.Context, key model.SectionKey) (*model.BusinessInfoSection, error)
}

// SectionRepository 商家信息分区仓储接口
type SectionRepository interface {
	ScopeStore

	GetByID(ctx context.Context, id int64) (*model.BusinessInfoSection, error)
	ListByOwner(ctx context.Context, ownerID string, contentType model.ContentType) ([]model.BusinessInfoSection, error)
	Upsert(ctx context.Context, section *model.BusinessInfoSection) error
	Delete(ctx context.Context, ownerID string, id int64) error
}

// ==================== 仓储实现 ====================

type sectionRepo struct {
	db *gorm.DB
}

// NewSectionRepository 创建商家信息仓储
func NewSectionRepository(db *gorm.DB) SectionRepository {
	return &sectionRepo{db: db}
}

// keyQuery 按复合键构造查询
// global 一律按 scope_id IS NULL 查，不会命中 scope_id 为空字符串的记录
func keyQuery(db *gorm.DB, key model.SectionKey) *gorm.DB {
	q := db.Where("owner_id = ? AND content_type = ? AND scope = ?", key.OwnerID, key.ContentType, key.Scope)
	if key.Scope == model.ScopeGlobal || key.ScopeID == nil {
		return q.Where("scope_id IS NULL")
	}
	return q.Where("scope_id = ?", *key.ScopeID)
}

func (r *sectionRepo) FetchOne(ctx context.Context, key model.SectionKey) (*model.BusinessInfoSection, error) {
	var section model.BusinessInfoSection
	err := keyQuery(r.db.WithContext(ctx), key).
		Order("id ASC").
		Take(&section).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &section, nil
}

func (r *sectionRepo) GetByID(ctx context.Context, id int64) (*model.BusinessInfoSection, error) {
	var section model.BusinessInfoSection
	err := r.db.WithContext(ctx).First(&section, id).Error
	if err != nil {
		return nil, err
	}
	return &section, nil
}

func (r *sectionRepo) ListByOwner(ctx context.Context, ownerID string, contentType model.ContentType) ([]model.BusinessInfoSection, error) {
	var list []model.BusinessInfoSection
	q := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if contentType != "" {
		q = q.Where("content_type = ?", contentType)
	}
	err := q.Order("content_type ASC, scope ASC, id ASC").Find(&list).Error
	return list, err
}

// Upsert 按复合键插入或更新，section.ID 回填为实际记录 ID
// 冲突由部分唯一索引裁决，并发写同一个键只会留下一条记录
func (r *sectionRepo) Upsert(ctx context.Context, section *model.BusinessInfoSection) error {
	if section.Scope == model.ScopeGlobal {
		section.ScopeID = nil
	}
	key := section.Key()

	target := []clause.Column{{Name: "owner_id"}, {Name: "content_type"}, {Name: "scope"}}
	targetWhere := "scope_id IS NULL AND deleted_at IS NULL"
	if key.ScopeID != nil {
		target = append(target, clause.Column{Name: "scope_id"})
		targetWhere = "scope_id IS NOT NULL AND deleted_at IS NULL"
	}

	db := r.db.WithContext(ctx)
	section.ID = 0
	err := db.Clauses(clause.OnConflict{
		Columns:     target,
		TargetWhere: clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: targetWhere}}},
		DoUpdates:   clause.AssignmentColumns([]string{"title", "items", "content_markdown", "updated_by", "updated_at"}),
	}).Create(section).Error
	if err != nil {
		return err
	}

	// 冲突更新时各驱动回填的 ID 不一致，按键回读
	var saved model.BusinessInfoSection
	if err := keyQuery(db, key).Order("id ASC").Take(&saved).Error; err != nil {
		return err
	}
	*section = saved
	return nil
}

func (r *sectionRepo) Delete(ctx context.Context, ownerID string, id int64) error {
	res := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Delete(&model.BusinessInfoSection{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
