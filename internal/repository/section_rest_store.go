package repository

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"storefront_v1_202610/internal/model"
)

// ==================== REST 作用域存储 ====================

// RestStoreConfig PostgREST 风格数据服务配置
type RestStoreConfig struct {
	BaseURL string        // 如 https://xxx.supabase.co/rest/v1
	APIKey  string        // 服务端 key，同时作为 apikey 与 Bearer 头
	Table   string        // 默认 business_info_sections
	Timeout time.Duration // 默认 10s
}

type restSectionStore struct {
	client *resty.Client
	table  string
}

// NewRestSectionStore 通过 HTTP 查询外部数据服务的商家信息
// 只实现只读契约，写入仍由数据服务自身负责
func NewRestSectionStore(cfg RestStoreConfig) ScopeStore {
	table := cfg.Table
	if table == "" {
		table = model.BusinessInfoSection{}.TableName()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("apikey", cfg.APIKey)
		client.SetAuthToken(cfg.APIKey)
	}

	return &restSectionStore{client: client, table: table}
}

// FetchOne 按复合键查询一条记录
// global 使用 scope_id=is.null，不做通配；软删除的记录不参与解析
func (s *restSectionStore) FetchOne(ctx context.Context, key model.SectionKey) (*model.BusinessInfoSection, error) {
	params := map[string]string{
		"select":       "*",
		"owner_id":     "eq." + key.OwnerID,
		"content_type": "eq." + string(key.ContentType),
		"scope":        "eq." + string(key.Scope),
		"deleted_at":   "is.null",
		"order":        "id.asc",
		"limit":        "1",
	}
	if key.Scope == model.ScopeGlobal || key.ScopeID == nil {
		params["scope_id"] = "is.null"
	} else {
		params["scope_id"] = "eq." + *key.ScopeID
	}

	var rows []model.BusinessInfoSection
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&rows).
		Get("/" + s.table)
	if err != nil {
		return nil, fmt.Errorf("请求数据服务失败: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("数据服务返回异常 (Status %d): %s", resp.StatusCode(), resp.String())
	}

	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
