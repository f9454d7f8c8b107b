package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront_v1_202610/internal/model"
)

func TestRestSectionStore_FetchOne(t *testing.T) {
	var gotQuery map[string]string
	var gotAPIKey, gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/business_info_sections", r.URL.Path)
		gotQuery = map[string]string{}
		for k, v := range r.URL.Query() {
			gotQuery[k] = v[0]
		}
		gotAPIKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":7,"owner_id":"o1","content_type":"payment","scope":"category","scope_id":"roupas","title":"Pagamento","items":["Pix"]}]`))
	}))
	defer srv.Close()

	store := NewRestSectionStore(RestStoreConfig{BaseURL: srv.URL + "/", APIKey: "service-key"})
	got, err := store.FetchOne(context.Background(), model.SectionKey{
		OwnerID:     "o1",
		ContentType: model.ContentTypePayment,
		Scope:       model.ScopeCategory,
		ScopeID:     strPtr("roupas"),
	})

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.EqualValues(t, 7, got.ID)
	assert.Equal(t, "Pagamento", *got.Title)
	assert.JSONEq(t, `["Pix"]`, string(got.Items))

	assert.Equal(t, "eq.o1", gotQuery["owner_id"])
	assert.Equal(t, "eq.payment", gotQuery["content_type"])
	assert.Equal(t, "eq.category", gotQuery["scope"])
	assert.Equal(t, "eq.roupas", gotQuery["scope_id"])
	assert.Equal(t, "is.null", gotQuery["deleted_at"])
	assert.Equal(t, "1", gotQuery["limit"])
	assert.Equal(t, "service-key", gotAPIKey)
	assert.Equal(t, "Bearer service-key", gotAuth)
}

func TestRestSectionStore_GlobalUsesIsNull(t *testing.T) {
	var scopeID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scopeID = r.URL.Query().Get("scope_id")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	store := NewRestSectionStore(RestStoreConfig{BaseURL: srv.URL})
	got, err := store.FetchOne(context.Background(), model.SectionKey{
		OwnerID:     "o1",
		ContentType: model.ContentTypePayment,
		Scope:       model.ScopeGlobal,
		ScopeID:     strPtr("should-be-ignored"),
	})

	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, "is.null", scopeID)
}

func TestRestSectionStore_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"JWT expired"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := NewRestSectionStore(RestStoreConfig{BaseURL: srv.URL})
	got, err := store.FetchOne(context.Background(), model.SectionKey{
		OwnerID:     "o1",
		ContentType: model.ContentTypePayment,
		Scope:       model.ScopeGlobal,
	})

	assert.Nil(t, got)
	assert.ErrorContains(t, err, "401")
}

func TestRestSectionStore_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	store := NewRestSectionStore(RestStoreConfig{BaseURL: url})
	_, err := store.FetchOne(context.Background(), model.SectionKey{
		OwnerID:     "o1",
		ContentType: model.ContentTypePayment,
		Scope:       model.ScopeGlobal,
	})
	assert.Error(t, err)
}

func TestRestSectionStore_SkipsSoftDeleted(t *testing.T) {
	// 按收到的过滤条件返回：不带 deleted_at=is.null 时会返回已删除的记录
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("deleted_at") == "is.null" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(`[{"id":1,"owner_id":"o1","content_type":"payment","scope":"global","title":"deleted","deleted_at":"2026-10-01T00:00:00Z"}]`))
	}))
	defer srv.Close()

	store := NewRestSectionStore(RestStoreConfig{BaseURL: srv.URL})
	got, err := store.FetchOne(context.Background(), model.SectionKey{
		OwnerID:     "o1",
		ContentType: model.ContentTypePayment,
		Scope:       model.ScopeGlobal,
	})

	require.NoError(t, err)
	assert.Nil(t, got)
}
