package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/datatypes"

	"storefront_v1_202610/internal/api/dto"
	"storefront_v1_202610/internal/model"
	"storefront_v1_202610/pkg/logger"
)

func newBlockContentService(store *fakeScopeStore) (*BlockContentService, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	mapper := NewContentMapper()
	snaps := NewSnapshotManager(NewContentResolver(store), mapper)
	return NewBlockContentService(snaps, mapper, logger.FromZap(zap.New(core))), logs
}

func TestBlockContent_CustomNeverTouchesStore(t *testing.T) {
	store := &fakeScopeStore{err: errors.New("should not be called")}
	svc, _ := newBlockContentService(store)
	cfg := &model.AutoContentConfig{
		Mode:     model.ContentModeCustom,
		Custom:   json.RawMessage(`{"title":"Do meu jeito","steps":[{"title":"Fale conosco"}]}`),
		Snapshot: &model.ContentSnapshot{Content: json.RawMessage(`{"title":"snap"}`)},
	}

	// owner 为空也不影响 custom
	got := svc.Resolve(context.Background(), "", model.ContentTypeHowToBuy, cfg)

	assert.Equal(t, dto.SourceCustom, got.Source)
	assert.Equal(t, "Do meu jeito", got.Content.(*dto.HowToBuyContent).Title)
	assert.Equal(t, 0, store.callCount())
}

func TestBlockContent_MalformedCustom(t *testing.T) {
	store := &fakeScopeStore{}
	svc, logs := newBlockContentService(store)
	cfg := &model.AutoContentConfig{Mode: model.ContentModeCustom, Custom: json.RawMessage(`[1,2`)}

	got := svc.Resolve(context.Background(), "o1", model.ContentTypePayment, cfg)

	assert.Nil(t, got.Content)
	assert.Equal(t, 0, store.callCount())
	assert.Equal(t, 1, logs.FilterMessage("自定义内容解析失败").Len())
}

func TestBlockContent_MissingOwnerFallsBackToDefault(t *testing.T) {
	store := &fakeScopeStore{}
	svc, logs := newBlockContentService(store)

	got := svc.Resolve(context.Background(), "", model.ContentTypeDelivery, &model.AutoContentConfig{Mode: model.ContentModeAuto})

	assert.Equal(t, dto.SourceDefault, got.Source)
	assert.Equal(t, "Entrega", got.Content.(*dto.DeliveryPickupContent).Title)
	assert.Equal(t, 0, store.callCount())
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestBlockContent_StoreFailureFallsBackToDefault(t *testing.T) {
	store := &fakeScopeStore{err: errors.New("503")}
	svc, logs := newBlockContentService(store)

	got := svc.Resolve(context.Background(), "o1", model.ContentTypeShipping, nil)

	assert.Equal(t, dto.SourceDefault, got.Source)
	require.IsType(t, &dto.ShippingContent{}, got.Content)
	assert.Equal(t, "Frete e envio", got.Content.(*dto.ShippingContent).Title)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestBlockContent_InvalidScopeFallsBackToDefault(t *testing.T) {
	store := &fakeScopeStore{}
	svc, _ := newBlockContentService(store)
	cfg := &model.AutoContentConfig{Auto: &model.ScopeDescriptor{Scope: model.ScopeCategory}}

	got := svc.Resolve(context.Background(), "o1", model.ContentTypePayment, cfg)

	assert.Equal(t, dto.SourceDefault, got.Source)
	assert.Equal(t, 0, store.callCount())
}

func TestBlockContent_NotFoundIsEmpty(t *testing.T) {
	svc, _ := newBlockContentService(&fakeScopeStore{})

	got := svc.Resolve(context.Background(), "o1", model.ContentTypeGuarantee, &model.AutoContentConfig{Mode: model.ContentModeAuto})

	assert.Nil(t, got.Content)
	assert.Equal(t, dto.SourceLive, got.Source)
}

func TestBlockContent_EmptyModeIsAuto(t *testing.T) {
	store := &fakeScopeStore{rows: []model.BusinessInfoSection{{
		OwnerID: "o1", ContentType: model.ContentTypePayment, Scope: model.ScopeGlobal,
		Items: datatypes.JSON(`["pix"]`),
	}}}
	svc, _ := newBlockContentService(store)

	got := svc.Resolve(context.Background(), "o1", model.ContentTypePayment, &model.AutoContentConfig{})

	assert.Equal(t, dto.SourceLive, got.Source)
	assert.Equal(t, []string{"pix"}, got.Content.(*dto.PaymentContent).Methods)
}

func TestBlockContent_SnapshotPreferred(t *testing.T) {
	store := &fakeScopeStore{}
	svc, _ := newBlockContentService(store)
	cfg := &model.AutoContentConfig{
		Mode:     model.ContentModeAuto,
		Snapshot: &model.ContentSnapshot{Content: json.RawMessage(`{"title":"Congelado","body":"x"}`), TakenAt: time.Now()},
	}

	got := svc.Resolve(context.Background(), "o1", model.ContentTypeGuarantee, cfg)

	assert.Equal(t, dto.SourceSnapshot, got.Source)
	assert.Equal(t, "Congelado", got.Content.(*dto.PolicyContent).Title)
	assert.Equal(t, 0, store.callCount())
}
