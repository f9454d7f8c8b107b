package service

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"storefront_v1_202610/internal/api/dto"
	"storefront_v1_202610/internal/model"
	"storefront_v1_202610/pkg/logger"
)

// ==================== 内存仓储 ====================

type fakePageRepo struct {
	mu     sync.Mutex
	pages  map[int64]*model.Page
	nextID int64
}

func newFakePageRepo() *fakePageRepo {
	return &fakePageRepo{pages: map[int64]*model.Page{}}
}

func (f *fakePageRepo) Create(_ context.Context, p *model.Page) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	cp := *p
	f.pages[p.ID] = &cp
	return nil
}

func (f *fakePageRepo) GetByID(_ context.Context, id int64) (*model.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pages[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePageRepo) GetBySlug(_ context.Context, slug string) (*model.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pages {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePageRepo) Update(_ context.Context, p *model.Page) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.pages[p.ID] = &cp
	return nil
}

func (f *fakePageRepo) UpdateFields(context.Context, int64, map[string]interface{}) error {
	return nil
}

func (f *fakePageRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pages, id)
	return nil
}

func (f *fakePageRepo) ListByOwner(_ context.Context, ownerID string) ([]model.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Page
	for _, p := range f.pages {
		if p.OwnerID == ownerID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePageRepo) SlugExists(_ context.Context, slug string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pages {
		if p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePageRepo) SetPublished(_ context.Context, id int64, published bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pages[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Published = published
	if published {
		now := time.Now()
		p.PublishedAt = &now
	}
	return nil
}

type fakeBlockRepo struct {
	blocks []model.PageBlock
}

func (f *fakeBlockRepo) Create(_ context.Context, b *model.PageBlock) error {
	b.ID = int64(len(f.blocks) + 1)
	f.blocks = append(f.blocks, *b)
	return nil
}

func (f *fakeBlockRepo) GetByID(_ context.Context, id int64) (*model.PageBlock, error) {
	for i := range f.blocks {
		if f.blocks[i].ID == id {
			b := f.blocks[i]
			return &b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBlockRepo) Update(context.Context, *model.PageBlock) error { return nil }

func (f *fakeBlockRepo) UpdateFields(context.Context, int64, map[string]interface{}) error {
	return nil
}

func (f *fakeBlockRepo) Delete(context.Context, int64) error { return nil }

func (f *fakeBlockRepo) ListByPage(_ context.Context, pageID int64) ([]model.PageBlock, error) {
	var out []model.PageBlock
	for _, b := range f.blocks {
		if b.PageID == pageID {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeBlockRepo) MaxPosition(context.Context, int64) (int, error) { return len(f.blocks) - 1, nil }

func (f *fakeBlockRepo) ListWithAutoContent(context.Context, int64, int) ([]model.PageBlock, error) {
	return nil, nil
}

func (f *fakeBlockRepo) Reorder(context.Context, int64, []int64) error { return nil }

// ==================== 测试辅助 ====================

type storefrontFixture struct {
	svc    *StorefrontService
	pages  *fakePageRepo
	blocks *fakeBlockRepo
	store  *fakeScopeStore
	logs   *observer.ObservedLogs
}

func newStorefrontFixture(t *testing.T) *storefrontFixture {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.FromZap(zap.New(core))

	store := &fakeScopeStore{}
	mapper := NewContentMapper()
	content := NewBlockContentService(NewSnapshotManager(NewContentResolver(store), mapper), mapper, log)
	pages := newFakePageRepo()
	blocks := &fakeBlockRepo{}

	svc := NewStorefrontService(pages, blocks, content, NewProductService(gridFixture()), log)
	svc.now = func() time.Time { return time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC) }
	return &storefrontFixture{svc: svc, pages: pages, blocks: blocks, store: store, logs: logs}
}

func (f *storefrontFixture) page(t *testing.T, slug string, published bool) *model.Page {
	t.Helper()
	p := &model.Page{OwnerID: "o1", Title: slug, Slug: slug, Published: published}
	require.NoError(t, f.pages.Create(context.Background(), p))
	return p
}

func (f *storefrontFixture) block(t *testing.T, pageID int64, typ model.BlockType, layout model.BlockLayout, visible *bool, settings string) {
	t.Helper()
	b := &model.PageBlock{
		PageID:   pageID,
		Type:     typ,
		Layout:   layout,
		Visible:  visible,
		Position: len(f.blocks.blocks),
	}
	if settings != "" {
		b.Settings = datatypes.JSON(settings)
	}
	require.NoError(t, f.blocks.Create(context.Background(), b))
}

// ==================== 行分组 ====================

func TestGroupRows(t *testing.T) {
	rb := func(id int64, layout model.BlockLayout) dto.RenderedBlock {
		return dto.RenderedBlock{ID: id, Layout: layout}
	}
	ids := func(rows []dto.BlockRow) [][]int64 {
		out := make([][]int64, 0, len(rows))
		for _, r := range rows {
			var row []int64
			for _, b := range r.Blocks {
				row = append(row, b.ID)
			}
			out = append(out, row)
		}
		return out
	}

	cases := []struct {
		name   string
		blocks []dto.RenderedBlock
		want   [][]int64
	}{
		{"空页面", nil, [][]int64{}},
		{"全宽独占一行", []dto.RenderedBlock{rb(1, model.LayoutFull), rb(2, model.LayoutFull)}, [][]int64{{1}, {2}}},
		{"相邻半宽成对", []dto.RenderedBlock{rb(1, model.LayoutHalf), rb(2, model.LayoutHalf)}, [][]int64{{1, 2}}},
		{"落单半宽单独成行", []dto.RenderedBlock{rb(1, model.LayoutHalf), rb(2, model.LayoutFull), rb(3, model.LayoutHalf)}, [][]int64{{1}, {2}, {3}}},
		{"三个半宽", []dto.RenderedBlock{rb(1, model.LayoutHalf), rb(2, model.LayoutHalf), rb(3, model.LayoutHalf)}, [][]int64{{1, 2}, {3}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(GroupRows(tc.blocks)))
		})
	}
}

// ==================== 渲染 ====================

func TestStorefrontRender_OrderAndVisibility(t *testing.T) {
	f := newStorefrontFixture(t)
	f.store.rows = []model.BusinessInfoSection{
		section("o1", model.ContentTypePayment, model.ScopeGlobal, nil, "Pagamento"),
	}
	p := f.page(t, "loja", true)
	f.block(t, p.ID, model.BlockTypeCover, model.LayoutFull, nil, `{"headline":"Olá"}`)
	f.block(t, p.ID, model.BlockTypePayment, model.LayoutHalf, nil, "")
	f.block(t, p.ID, model.BlockTypeFAQ, model.LayoutHalf, boolPtr(false), "")
	f.block(t, p.ID, model.BlockTypeProductGrid, model.LayoutHalf, boolPtr(true), `{"sort":"price_asc","limit":2}`)

	resp, err := f.svc.Render(context.Background(), "loja", "")
	require.NoError(t, err)

	require.Len(t, resp.Rows, 2)
	cover := resp.Rows[0].Blocks[0]
	assert.Equal(t, model.BlockTypeCover, cover.Type)
	assert.JSONEq(t, `{"headline":"Olá"}`, string(cover.Settings))

	// 隐藏的 faq 不占位，payment 与 product_grid 成为一行
	require.Len(t, resp.Rows[1].Blocks, 2)
	payment := resp.Rows[1].Blocks[0]
	assert.Equal(t, dto.SourceLive, payment.Source)
	assert.Equal(t, "Pagamento", payment.Content.(*dto.PaymentContent).Title)

	grid := resp.Rows[1].Blocks[1]
	assert.Equal(t, []string{"Caneca", "Camiseta"}, cardNames(grid.Products))

	assert.Equal(t, "loja", resp.Page.Slug)
	assert.Equal(t, time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC), resp.RenderedAt)
}

func TestStorefrontRender_StoreDownStillRenders(t *testing.T) {
	f := newStorefrontFixture(t)
	f.store.err = assert.AnError
	p := f.page(t, "loja", true)
	f.block(t, p.ID, model.BlockTypeShipping, model.LayoutFull, nil, "")

	resp, err := f.svc.Render(context.Background(), "loja", "")
	require.NoError(t, err)

	require.Len(t, resp.Rows, 1)
	assert.Equal(t, dto.SourceDefault, resp.Rows[0].Blocks[0].Source)
	assert.NotNil(t, resp.Rows[0].Blocks[0].Content)
}

func TestStorefrontRender_CorruptConfigFallsBackToGlobal(t *testing.T) {
	f := newStorefrontFixture(t)
	f.store.rows = []model.BusinessInfoSection{
		section("o1", model.ContentTypeShipping, model.ScopeGlobal, nil, "Envio"),
	}
	p := f.page(t, "loja", true)
	f.block(t, p.ID, model.BlockTypeShipping, model.LayoutFull, nil, "")
	f.blocks.blocks[0].AutoContent = datatypes.JSON(`{"mode":`)

	resp, err := f.svc.Render(context.Background(), "loja", "")
	require.NoError(t, err)

	assert.Equal(t, dto.SourceLive, resp.Rows[0].Blocks[0].Source)
	assert.Equal(t, 1, f.logs.FilterMessage("区块内容配置损坏，按 auto/global 解析").Len())
}

func TestStorefrontRender_BadGridSettings(t *testing.T) {
	f := newStorefrontFixture(t)
	p := f.page(t, "loja", true)
	f.block(t, p.ID, model.BlockTypeProductGrid, model.LayoutFull, nil, `"nope"`)

	resp, err := f.svc.Render(context.Background(), "loja", "")
	require.NoError(t, err)

	assert.Len(t, resp.Rows[0].Blocks[0].Products, 3)
	assert.Equal(t, 1, f.logs.FilterMessage("商品网格配置无效，使用默认").Len())
}

func TestStorefrontRender_Unpublished(t *testing.T) {
	f := newStorefrontFixture(t)
	f.page(t, "rascunho", false)

	_, err := f.svc.Render(context.Background(), "rascunho", "")
	assert.ErrorIs(t, err, ErrPageNotPublished)

	_, err = f.svc.Render(context.Background(), "rascunho", "o2")
	assert.ErrorIs(t, err, ErrPageNotPublished)

	resp, err := f.svc.Render(context.Background(), "rascunho", "o1")
	require.NoError(t, err)
	assert.Equal(t, "rascunho", resp.Page.Slug)
}

func TestStorefrontRender_UnknownSlug(t *testing.T) {
	f := newStorefrontFixture(t)

	_, err := f.svc.Render(context.Background(), "nada", "")
	assert.ErrorIs(t, err, ErrPageNotFound)
}

func TestStorefrontRender_CancelledContext(t *testing.T) {
	f := newStorefrontFixture(t)
	p := f.page(t, "loja", true)
	for i := 0; i < 20; i++ {
		f.block(t, p.ID, model.BlockTypePayment, model.LayoutHalf, nil, "")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp, err := f.svc.Render(ctx, "loja", "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, resp)
}

func TestStorefrontRender_ManyBlocksKeepOrder(t *testing.T) {
	f := newStorefrontFixture(t)
	p := f.page(t, "loja", true)
	for i := 0; i < 30; i++ {
		f.block(t, p.ID, model.BlockTypeText, model.LayoutFull, nil, "")
	}

	resp, err := f.svc.Render(context.Background(), "loja", "")
	require.NoError(t, err)

	require.Len(t, resp.Rows, 30)
	for i, row := range resp.Rows {
		assert.EqualValues(t, i+1, row.Blocks[0].ID)
	}
}

// ==================== 页面管理 ====================

func TestPageService_CreateDedupesSlug(t *testing.T) {
	svc := NewPageService(newFakePageRepo(), &fakeBlockRepo{}, nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, "o1", dto.PageCreateReq{Title: "Promoção de Verão"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, "o2", dto.PageCreateReq{Title: "Promoção de Verão"})
	require.NoError(t, err)

	assert.Equal(t, "promocao-de-verao", first.Slug)
	assert.Equal(t, "promocao-de-verao-2", second.Slug)
}

func TestPageService_InvalidTheme(t *testing.T) {
	svc := NewPageService(newFakePageRepo(), &fakeBlockRepo{}, nil)

	_, err := svc.Create(context.Background(), "o1", dto.PageCreateReq{Title: "Loja", Theme: json.RawMessage(`{"primary":`)})
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestPageService_OwnerIsolation(t *testing.T) {
	pages := newFakePageRepo()
	svc := NewPageService(pages, &fakeBlockRepo{}, nil)
	ctx := context.Background()

	p, err := svc.Create(ctx, "o1", dto.PageCreateReq{Title: "Loja"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, "o2", p.ID)
	assert.ErrorIs(t, err, ErrPageNotFound)
	_, err = svc.SetPublished(ctx, "o2", p.ID, true)
	assert.ErrorIs(t, err, ErrPageNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "o2", p.ID), ErrPageNotFound)
	_, err = svc.Get(ctx, "", p.ID)
	assert.ErrorIs(t, err, ErrOwnerRequired)

	published, err := svc.SetPublished(ctx, "o1", p.ID, true)
	require.NoError(t, err)
	assert.True(t, published.Published)
	assert.NotNil(t, published.PublishedAt)
}

func TestPageService_UpdateSlug(t *testing.T) {
	svc := NewPageService(newFakePageRepo(), &fakeBlockRepo{}, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "o1", dto.PageCreateReq{Title: "Ofertas"})
	require.NoError(t, err)
	p, err := svc.Create(ctx, "o1", dto.PageCreateReq{Title: "Outra"})
	require.NoError(t, err)

	slug := "Ofertas"
	updated, err := svc.Update(ctx, "o1", p.ID, dto.PageUpdateReq{Slug: &slug})
	require.NoError(t, err)
	assert.Equal(t, "ofertas-2", updated.Slug)

	blank := "   "
	updated, err = svc.Update(ctx, "o1", p.ID, dto.PageUpdateReq{Title: &blank})
	require.NoError(t, err)
	assert.Equal(t, "Outra", updated.Title)
}
