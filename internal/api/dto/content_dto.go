package dto

import (
	"storefront_v1_202610/internal/model"
)

// ================== 区块内容结构 ==================

// ContentFamily 内容结构族
type ContentFamily string

const (
	FamilyHowToBuy       ContentFamily = "how_to_buy"
	FamilyDeliveryPickup ContentFamily = "delivery_pickup"
	FamilyShipping       ContentFamily = "shipping"
	FamilyPayment        ContentFamily = "payment"
	FamilyPolicy         ContentFamily = "policy"
)

// BlockContent 交给前台渲染的区块内容，nil 表示无内容（渲染空状态）
type BlockContent interface {
	Family() ContentFamily
}

// HowToBuyContent 购买步骤
type HowToBuyContent struct {
	Title string         `json:"title"`
	Steps []HowToBuyStep `json:"steps"`
	Body  string         `json:"body,omitempty"`
}

type HowToBuyStep struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

func (*HowToBuyContent) Family() ContentFamily { return FamilyHowToBuy }

// DeliveryPickupContent 配送 / 自提
type DeliveryPickupContent struct {
	Kind    model.ContentType `json:"kind"` // delivery | pickup
	Title   string            `json:"title"`
	Options []DeliveryOption  `json:"options"`
	Badges  []string          `json:"badges,omitempty"`
	Body    string            `json:"body,omitempty"`
}

type DeliveryOption struct {
	Label    string `json:"label"`
	Fee      string `json:"fee,omitempty"`
	Schedule string `json:"schedule,omitempty"`
	Address  string `json:"address,omitempty"`
}

func (*DeliveryPickupContent) Family() ContentFamily { return FamilyDeliveryPickup }

// ShippingContent 快递发货
type ShippingContent struct {
	Title   string           `json:"title"`
	Options []ShippingOption `json:"options"`
	Badges  []string         `json:"badges,omitempty"`
	Body    string           `json:"body,omitempty"`
}

type ShippingOption struct {
	Name   string `json:"name"`
	Price  string `json:"price,omitempty"`
	Eta    string `json:"eta,omitempty"`
	Region string `json:"region,omitempty"`
}

func (*ShippingContent) Family() ContentFamily { return FamilyShipping }

// PaymentContent 支付方式
type PaymentContent struct {
	Title   string          `json:"title"`
	Methods []string        `json:"methods"`
	Details []PaymentMethod `json:"details,omitempty"`
	Chips   []string        `json:"chips,omitempty"`
	Body    string          `json:"body,omitempty"`
}

type PaymentMethod struct {
	Method      string `json:"method"`
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
}

func (*PaymentContent) Family() ContentFamily { return FamilyPayment }

// PolicyContent 保障/政策文本
type PolicyContent struct {
	Title      string   `json:"title"`
	Highlights []string `json:"highlights,omitempty"`
	Body       string   `json:"body"`
}

func (*PolicyContent) Family() ContentFamily { return FamilyPolicy }

// ================== 解析结果 ==================

// ContentSource 区块内容最终来源
type ContentSource string

const (
	SourceCustom   ContentSource = "custom"
	SourceSnapshot ContentSource = "snapshot"
	SourceLive     ContentSource = "live"
	SourceDefault  ContentSource = "default"
)

// ResolvedContent 编排器输出
type ResolvedContent struct {
	Content BlockContent  `json:"content"`
	Source  ContentSource `json:"source"`
}
