package dto

import "time"

// ==================== 请求 DTO ====================

// ProductSaveReq 创建 / 全量更新商品
type ProductSaveReq struct {
	Name        string   `json:"name" binding:"required,max=255"`
	Description string   `json:"description"`
	Price       float64  `json:"price" binding:"gte=0"` // 前端传小数, 后端转分
	Currency    string   `json:"currency"`              // 默认 BRL
	Category    string   `json:"category" binding:"max=100"`
	Tags        []string `json:"tags" binding:"max=20"`
	ImageURL    string   `json:"image_url" binding:"max=512"`
	Featured    bool     `json:"featured"`
	Active      *bool    `json:"active"`
	SortOrder   int      `json:"sort_order"`
}

// ProductListReq 后台商品列表
type ProductListReq struct {
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
	Category string `form:"category"`
	Keyword  string `form:"keyword"`
}

// ==================== 商品网格 ====================

// GridSort 商品网格排序
type GridSort string

const (
	GridSortManual    GridSort = "manual"
	GridSortPriceAsc  GridSort = "price_asc"
	GridSortPriceDesc GridSort = "price_desc"
	GridSortName      GridSort = "name"
	GridSortNewest    GridSort = "newest"
)

// ProductGridSettings product_grid 区块的 settings
type ProductGridSettings struct {
	Category     string   `json:"category"`
	Tag          string   `json:"tag"`
	FeaturedOnly bool     `json:"featured_only"`
	Sort         GridSort `json:"sort"`
	Limit        int      `json:"limit"`
}

// ==================== 响应 DTO ====================

// ProductResp 商品响应
type ProductResp struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	PriceCents  int64     `json:"price_cents"`
	Currency    string    `json:"currency"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	ImageURL    string    `json:"image_url"`
	Featured    bool      `json:"featured"`
	Active      bool      `json:"active"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductCard 店铺页商品卡片
type ProductCard struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	ImageURL string  `json:"image_url"`
	Featured bool    `json:"featured"`
}

// ProductListResp 列表响应
type ProductListResp struct {
	Code     int           `json:"code"`
	Message  string        `json:"message"`
	Data     []ProductResp `json:"data"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}
