package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storefront_v1_202610/internal/model"
)

// ==================== 测试模型 ====================

// testProduct sqlite 没有数组类型，tags 用文本列承载 pq.StringArray 的 {a,b} 格式
type testProduct struct {
	model.BaseModel
	model.AuditMixin
	OwnerID      string
	Name         string
	Description  string
	PriceCents   int64
	CurrencyCode string
	Category     string
	Tags         string
	ImageURL     string
	Featured     bool
	Active       bool
	SortOrder    int
}

func (testProduct) TableName() string { return "products" }

// ==================== 辅助函数 ====================

func setupRepoTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	// :memory: 每个连接是独立的库
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("获取连接池失败: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&model.Page{}, &model.PageBlock{}, &model.BusinessInfoSection{}, &testProduct{})
	if err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

func strPtr(s string) *string { return &s }

func newSection(owner string, ct model.ContentType, scope model.Scope, scopeID *string, title string) *model.BusinessInfoSection {
	return &model.BusinessInfoSection{
		OwnerID:     owner,
		ContentType: ct,
		Scope:       scope,
		ScopeID:     scopeID,
		Title:       strPtr(title),
		Items:       datatypes.JSON(`[]`),
	}
}

// ==================== 商家信息 ====================

func TestSectionRepo_FetchOne(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewSectionRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(newSection("o1", model.ContentTypePayment, model.ScopeGlobal, nil, "global")).Error)
	require.NoError(t, db.Create(newSection("o1", model.ContentTypePayment, model.ScopeTag, strPtr("5"), "tag-5")).Error)
	require.NoError(t, db.Create(newSection("o2", model.ContentTypePayment, model.ScopeGlobal, nil, "other owner")).Error)

	t.Run("global 命中 scope_id 为 NULL 的记录", func(t *testing.T) {
		got, err := repo.FetchOne(ctx, model.SectionKey{OwnerID: "o1", ContentType: model.ContentTypePayment, Scope: model.ScopeGlobal})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "global", *got.Title)
	})

	t.Run("作用域类型参与匹配", func(t *testing.T) {
		got, err := repo.FetchOne(ctx, model.SectionKey{OwnerID: "o1", ContentType: model.ContentTypePayment, Scope: model.ScopeCategory, ScopeID: strPtr("5")})
		require.NoError(t, err)
		assert.Nil(t, got)

		got, err = repo.FetchOne(ctx, model.SectionKey{OwnerID: "o1", ContentType: model.ContentTypePayment, Scope: model.ScopeTag, ScopeID: strPtr("5")})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "tag-5", *got.Title)
	})

	t.Run("未找到返回 nil, nil", func(t *testing.T) {
		got, err := repo.FetchOne(ctx, model.SectionKey{OwnerID: "o3", ContentType: model.ContentTypePayment, Scope: model.ScopeGlobal})
		assert.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestSectionRepo_GlobalIgnoresEmptyScopeID(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewSectionRepository(db)

	// 脏数据：global 但 scope_id 为空字符串
	require.NoError(t, db.Create(newSection("o1", model.ContentTypeShipping, model.ScopeGlobal, strPtr(""), "dirty")).Error)

	got, err := repo.FetchOne(context.Background(), model.SectionKey{OwnerID: "o1", ContentType: model.ContentTypeShipping, Scope: model.ScopeGlobal})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSectionRepo_Upsert(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewSectionRepository(db)
	ctx := context.Background()

	first := newSection("o1", model.ContentTypeHowToBuy, model.ScopeGlobal, strPtr("ignored"), "v1")
	require.NoError(t, repo.Upsert(ctx, first))
	assert.Nil(t, first.ScopeID)

	second := newSection("o1", model.ContentTypeHowToBuy, model.ScopeGlobal, nil, "v2")
	require.NoError(t, repo.Upsert(ctx, second))
	assert.Equal(t, first.ID, second.ID)

	list, err := repo.ListByOwner(ctx, "o1", model.ContentTypeHowToBuy)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "v2", *list[0].Title)

	// 不同作用域是独立记录
	require.NoError(t, repo.Upsert(ctx, newSection("o1", model.ContentTypeHowToBuy, model.ScopeCategory, strPtr("roupas"), "roupas")))
	list, err = repo.ListByOwner(ctx, "o1", "")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestSectionRepo_UniqueKeyEnforced(t *testing.T) {
	db := setupRepoTestDB(t)

	require.NoError(t, db.Create(newSection("o1", model.ContentTypePayment, model.ScopeGlobal, nil, "a")).Error)
	assert.Error(t, db.Create(newSection("o1", model.ContentTypePayment, model.ScopeGlobal, nil, "b")).Error)

	require.NoError(t, db.Create(newSection("o1", model.ContentTypePayment, model.ScopeTag, strPtr("5"), "a")).Error)
	assert.Error(t, db.Create(newSection("o1", model.ContentTypePayment, model.ScopeTag, strPtr("5"), "b")).Error)

	// 其它维度不同的键互不影响
	require.NoError(t, db.Create(newSection("o1", model.ContentTypePayment, model.ScopeCategory, strPtr("5"), "c")).Error)
	require.NoError(t, db.Create(newSection("o2", model.ContentTypePayment, model.ScopeGlobal, nil, "d")).Error)
}

func TestSectionRepo_UpsertConcurrent(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewSectionRepository(db)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Upsert(ctx, newSection("o1", model.ContentTypePayment, model.ScopeProduct, strPtr("prod-1"), "v"))
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	list, err := repo.ListByOwner(ctx, "o1", model.ContentTypePayment)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSectionRepo_UpsertUpdatesResolvedRow(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewSectionRepository(db)
	ctx := context.Background()

	first := newSection("o1", model.ContentTypeDelivery, model.ScopeGlobal, nil, "v1")
	require.NoError(t, repo.Upsert(ctx, first))
	require.NoError(t, repo.Delete(ctx, "o1", first.ID))

	// 删除后同一个键可以重新写入
	second := newSection("o1", model.ContentTypeDelivery, model.ScopeGlobal, nil, "v2")
	require.NoError(t, repo.Upsert(ctx, second))
	assert.NotEqual(t, first.ID, second.ID)

	third := newSection("o1", model.ContentTypeDelivery, model.ScopeGlobal, nil, "v3")
	require.NoError(t, repo.Upsert(ctx, third))
	assert.Equal(t, second.ID, third.ID)

	got, err := repo.FetchOne(ctx, model.SectionKey{OwnerID: "o1", ContentType: model.ContentTypeDelivery, Scope: model.ScopeGlobal})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, third.ID, got.ID)
	assert.Equal(t, "v3", *got.Title)
}

func TestSectionRepo_DeleteChecksOwner(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewSectionRepository(db)
	ctx := context.Background()

	s := newSection("o1", model.ContentTypePickup, model.ScopeGlobal, nil, "Retirada")
	require.NoError(t, repo.Upsert(ctx, s))

	err := repo.Delete(ctx, "o2", s.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.Delete(ctx, "o1", s.ID))
	_, err = repo.GetByID(ctx, s.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

// 数据库故障必须以 error 返回，不能被当成未找到
func TestSectionRepo_FetchOneStoreFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT \* FROM "business_info_sections"`).WillReturnError(errors.New("connection reset by peer"))

	got, err := NewSectionRepository(db).FetchOne(context.Background(), model.SectionKey{
		OwnerID:     "o1",
		ContentType: model.ContentTypePayment,
		Scope:       model.ScopeGlobal,
	})
	assert.Nil(t, got)
	assert.ErrorContains(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==================== 页面 ====================

func TestPageRepo_SlugAndCascade(t *testing.T) {
	db := setupRepoTestDB(t)
	pages := NewPageRepository(db)
	blocks := NewBlockRepository(db)
	ctx := context.Background()

	page := &model.Page{OwnerID: "o1", Title: "Loja", Slug: "loja"}
	require.NoError(t, pages.Create(ctx, page))
	require.NoError(t, blocks.Create(ctx, &model.PageBlock{PageID: page.ID, Type: model.BlockTypeText}))

	got, err := pages.GetBySlug(ctx, "loja")
	require.NoError(t, err)
	assert.Equal(t, page.ID, got.ID)

	require.NoError(t, pages.Delete(ctx, page.ID))

	// 软删除后 slug 仍被占用
	exists, err := pages.SlugExists(ctx, "loja")
	require.NoError(t, err)
	assert.True(t, exists)

	list, err := blocks.ListByPage(ctx, page.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPageRepo_SetPublished(t *testing.T) {
	db := setupRepoTestDB(t)
	pages := NewPageRepository(db)
	ctx := context.Background()

	page := &model.Page{OwnerID: "o1", Title: "Loja", Slug: "loja"}
	require.NoError(t, pages.Create(ctx, page))

	require.NoError(t, pages.SetPublished(ctx, page.ID, true))
	got, err := pages.GetByID(ctx, page.ID)
	require.NoError(t, err)
	assert.True(t, got.Published)
	assert.NotNil(t, got.PublishedAt)

	require.NoError(t, pages.SetPublished(ctx, page.ID, false))
	got, err = pages.GetByID(ctx, page.ID)
	require.NoError(t, err)
	assert.False(t, got.Published)
	assert.Nil(t, got.PublishedAt)
}

// ==================== 区块 ====================

func TestBlockRepo_PositionAndReorder(t *testing.T) {
	db := setupRepoTestDB(t)
	blocks := NewBlockRepository(db)
	ctx := context.Background()

	maxPos, err := blocks.MaxPosition(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, -1, maxPos)

	var ids []int64
	for i := 0; i < 3; i++ {
		b := &model.PageBlock{PageID: 1, Type: model.BlockTypeText, Position: i}
		require.NoError(t, blocks.Create(ctx, b))
		ids = append(ids, b.ID)
	}
	other := &model.PageBlock{PageID: 2, Type: model.BlockTypeText}
	require.NoError(t, blocks.Create(ctx, other))

	maxPos, err = blocks.MaxPosition(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, maxPos)

	require.NoError(t, blocks.Reorder(ctx, 1, []int64{ids[2], ids[0], ids[1]}))
	list, err := blocks.ListByPage(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{ids[2], ids[0], ids[1]}, []int64{list[0].ID, list[1].ID, list[2].ID})

	err = blocks.Reorder(ctx, 1, []int64{ids[0], ids[1]})
	assert.ErrorIs(t, err, ErrBlockSetMismatch)

	err = blocks.Reorder(ctx, 1, []int64{ids[0], ids[1], other.ID})
	assert.ErrorIs(t, err, ErrBlockSetMismatch)
}

func TestBlockRepo_ListWithAutoContent(t *testing.T) {
	db := setupRepoTestDB(t)
	blocks := NewBlockRepository(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		b := &model.PageBlock{PageID: 1, Type: model.BlockTypePayment}
		require.NoError(t, b.SetAutoContent(&model.AutoContentConfig{Mode: model.ContentModeAuto}))
		require.NoError(t, blocks.Create(ctx, b))
	}
	require.NoError(t, blocks.Create(ctx, &model.PageBlock{PageID: 1, Type: model.BlockTypeText}))

	first, err := blocks.ListWithAutoContent(ctx, 0, 3)
	require.NoError(t, err)
	require.Len(t, first, 3)

	rest, err := blocks.ListWithAutoContent(ctx, first[2].ID, 3)
	require.NoError(t, err)
	assert.Len(t, rest, 2)
}

// ==================== 商品 ====================

func TestProductRepo_ListAndTags(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	items := []*model.Product{
		{OwnerID: "o1", Name: "Camiseta Azul", Category: "roupas", Tags: pq.StringArray{"verão", "algodão"}, Active: true},
		{OwnerID: "o1", Name: "Caneca", Category: "casa", Active: true},
		{OwnerID: "o1", Name: "Camiseta Velha", Category: "roupas", Active: false},
		{OwnerID: "o2", Name: "Camiseta", Category: "roupas", Active: true},
	}
	for _, p := range items {
		require.NoError(t, repo.Create(ctx, p))
	}

	list, total, err := repo.List(ctx, ProductFilter{OwnerID: "o1", Keyword: "camiseta"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, list, 2)

	list, total, err = repo.List(ctx, ProductFilter{OwnerID: "o1", Category: "casa"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Caneca", list[0].Name)

	active, err := repo.ListByOwner(ctx, "o1", true)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	got, err := repo.GetByID(ctx, items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, pq.StringArray{"verão", "algodão"}, got.Tags)
	assert.True(t, got.HasTag("VERÃO"))
}
