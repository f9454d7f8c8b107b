package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"storefront_v1_202610/internal/api/dto"
	"storefront_v1_202610/internal/model"
)

// defaultTitles 各内容类型的默认标题（前台语言 pt-BR）
var defaultTitles = map[model.ContentType]string{
	model.ContentTypeHowToBuy:  "Como comprar",
	model.ContentTypeDelivery:  "Entrega",
	model.ContentTypePickup:    "Retirada",
	model.ContentTypeShipping:  "Frete e envio",
	model.ContentTypePayment:   "Formas de pagamento",
	model.ContentTypeGuarantee: "Garantia",
}

// DefaultTitle 内容类型的默认标题
func DefaultTitle(ct model.ContentType) string {
	return defaultTitles[ct]
}

// ContentMapper 把松散的存储记录转换为固定的区块内容结构
// 永不返回错误：数据有问题时降级为空结构
type ContentMapper struct {
	md goldmark.Markdown
}

func NewContentMapper() *ContentMapper {
	return &ContentMapper{md: goldmark.New()}
}

// Map 记录为 nil（未找到）时返回 nil，与“有记录但为空”区分
func (m *ContentMapper) Map(ct model.ContentType, section *model.BusinessInfoSection) dto.BlockContent {
	if section == nil {
		return nil
	}

	title := DefaultTitle(ct)
	if section.Title != nil && strings.TrimSpace(*section.Title) != "" {
		title = strings.TrimSpace(*section.Title)
	}
	markdown := ""
	if section.ContentMarkdown != nil {
		markdown = strings.TrimSpace(*section.ContentMarkdown)
	}

	items := decodeItems(ct, section.Items)
	body := markdown
	if items.empty() && markdown != "" {
		// 无结构化条目时尝试从 Markdown 列表中恢复
		if bullets := m.listItems(markdown); len(bullets) > 0 {
			badges := items.badges
			items = itemsFromBullets(ct, bullets)
			// 只有徽标的条目不算结构化内容，但徽标本身保留
			items.badges = append(badges, items.badges...)
			if ct != model.ContentTypeGuarantee {
				body = ""
			}
		}
	}

	switch ct {
	case model.ContentTypeHowToBuy:
		return &dto.HowToBuyContent{Title: title, Steps: items.steps, Body: body}
	case model.ContentTypeDelivery, model.ContentTypePickup:
		return &dto.DeliveryPickupContent{Kind: ct, Title: title, Options: items.delivery, Badges: items.badges, Body: body}
	case model.ContentTypeShipping:
		return &dto.ShippingContent{Title: title, Options: items.shipping, Badges: items.badges, Body: body}
	case model.ContentTypePayment:
		methods := make([]string, 0, len(items.payment))
		for _, p := range items.payment {
			methods = append(methods, p.Method)
		}
		return &dto.PaymentContent{Title: title, Methods: methods, Details: items.payment, Chips: items.badges, Body: body}
	case model.ContentTypeGuarantee:
		return &dto.PolicyContent{Title: title, Highlights: items.notes, Body: markdown}
	}
	return nil
}

// Default 类型默认内容（只有标题），用于无法解析时兜底
func (m *ContentMapper) Default(ct model.ContentType) dto.BlockContent {
	empty := sectionItems{}.normalized()
	title := DefaultTitle(ct)
	switch ct {
	case model.ContentTypeHowToBuy:
		return &dto.HowToBuyContent{Title: title, Steps: empty.steps}
	case model.ContentTypeDelivery, model.ContentTypePickup:
		return &dto.DeliveryPickupContent{Kind: ct, Title: title, Options: empty.delivery}
	case model.ContentTypeShipping:
		return &dto.ShippingContent{Title: title, Options: empty.shipping}
	case model.ContentTypePayment:
		return &dto.PaymentContent{Title: title, Methods: []string{}}
	case model.ContentTypeGuarantee:
		return &dto.PolicyContent{Title: title}
	}
	return nil
}

// Decode 解析已成形的内容（custom 负载 / 快照），原样返回，不补默认值
// raw 为空或 JSON null 时返回 nil
func (m *ContentMapper) Decode(ct model.ContentType, raw json.RawMessage) (dto.BlockContent, error) {
	if len(raw) == 0 || strings.TrimSpace(string(raw)) == "null" {
		return nil, nil
	}

	var target dto.BlockContent
	switch ct {
	case model.ContentTypeHowToBuy:
		target = &dto.HowToBuyContent{}
	case model.ContentTypeDelivery, model.ContentTypePickup:
		target = &dto.DeliveryPickupContent{}
	case model.ContentTypeShipping:
		target = &dto.ShippingContent{}
	case model.ContentTypePayment:
		target = &dto.PaymentContent{}
	case model.ContentTypeGuarantee:
		target = &dto.PolicyContent{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownContentType, ct)
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	if d, ok := target.(*dto.DeliveryPickupContent); ok && d.Kind == "" {
		d.Kind = ct
	}
	return target, nil
}

// ==================== 条目解析 ====================

// sectionItems 按内容类型区分的条目，只有与 kind 对应的字段有值
type sectionItems struct {
	kind     model.ContentType
	steps    []dto.HowToBuyStep
	delivery []dto.DeliveryOption
	shipping []dto.ShippingOption
	payment  []dto.PaymentMethod
	notes    []string
	badges   []string
}

func (s sectionItems) empty() bool {
	return len(s.steps) == 0 && len(s.delivery) == 0 && len(s.shipping) == 0 &&
		len(s.payment) == 0 && len(s.notes) == 0
}

// normalized nil 切片替换为空切片，保证输出为 [] 而不是 null
func (s sectionItems) normalized() sectionItems {
	if s.steps == nil {
		s.steps = []dto.HowToBuyStep{}
	}
	if s.delivery == nil {
		s.delivery = []dto.DeliveryOption{}
	}
	if s.shipping == nil {
		s.shipping = []dto.ShippingOption{}
	}
	if s.payment == nil {
		s.payment = []dto.PaymentMethod{}
	}
	return s
}

// decodeItems 宽松解析 items：元素可以是对象也可以是纯字符串
// 非法 JSON、非数组、无法识别的元素一律跳过
func decodeItems(ct model.ContentType, raw []byte) sectionItems {
	out := sectionItems{kind: ct}
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return out.normalized()
	}
	arr := gjson.ParseBytes(raw)
	if !arr.IsArray() {
		return out.normalized()
	}

	arr.ForEach(func(_, v gjson.Result) bool {
		if v.Type == gjson.String {
			if s := strings.TrimSpace(v.String()); s != "" {
				out = out.withLabel(s)
			}
			return true
		}
		if !v.IsObject() {
			return true
		}

		if badge := firstString(v, "badge", "chip"); badge != "" {
			out.badges = append(out.badges, badge)
		}

		switch ct {
		case model.ContentTypeHowToBuy:
			step := dto.HowToBuyStep{
				Title:       firstString(v, "title", "step", "label"),
				Description: firstString(v, "description", "text", "details"),
				Icon:        firstString(v, "icon"),
			}
			if step.Title != "" || step.Description != "" {
				out.steps = append(out.steps, step)
			}
		case model.ContentTypeDelivery, model.ContentTypePickup:
			opt := dto.DeliveryOption{
				Label:    firstString(v, "label", "area", "name", "title"),
				Fee:      firstString(v, "fee", "price"),
				Schedule: firstString(v, "schedule", "hours", "deadline"),
				Address:  firstString(v, "address", "location"),
			}
			if opt.Label != "" || opt.Address != "" {
				out.delivery = append(out.delivery, opt)
			}
		case model.ContentTypeShipping:
			opt := dto.ShippingOption{
				Name:   firstString(v, "name", "carrier", "label", "title"),
				Price:  firstString(v, "price", "fee"),
				Eta:    firstString(v, "eta", "deadline", "days"),
				Region: firstString(v, "region", "area"),
			}
			if opt.Name != "" {
				out.shipping = append(out.shipping, opt)
			}
		case model.ContentTypePayment:
			pm := dto.PaymentMethod{
				Method:      firstString(v, "method", "name", "label"),
				Label:       firstString(v, "label", "title"),
				Description: firstString(v, "description", "details", "text"),
			}
			if pm.Method != "" {
				out.payment = append(out.payment, pm)
			}
		case model.ContentTypeGuarantee:
			if note := firstString(v, "text", "title", "label"); note != "" {
				out.notes = append(out.notes, note)
			}
		}
		return true
	})
	return out.normalized()
}

// withLabel 纯字符串元素按类型映射到主字段
func (s sectionItems) withLabel(label string) sectionItems {
	switch s.kind {
	case model.ContentTypeHowToBuy:
		s.steps = append(s.steps, dto.HowToBuyStep{Title: label})
	case model.ContentTypeDelivery, model.ContentTypePickup:
		s.delivery = append(s.delivery, dto.DeliveryOption{Label: label})
	case model.ContentTypeShipping:
		s.shipping = append(s.shipping, dto.ShippingOption{Name: label})
	case model.ContentTypePayment:
		s.payment = append(s.payment, dto.PaymentMethod{Method: label})
	case model.ContentTypeGuarantee:
		s.notes = append(s.notes, label)
	}
	return s
}

func itemsFromBullets(ct model.ContentType, bullets []string) sectionItems {
	out := sectionItems{kind: ct}
	for _, b := range bullets {
		out = out.withLabel(b)
	}
	return out.normalized()
}

func firstString(v gjson.Result, keys ...string) string {
	for _, k := range keys {
		f := v.Get(k)
		if !f.Exists() || f.Type == gjson.Null || f.IsObject() || f.IsArray() {
			continue
		}
		if s := strings.TrimSpace(f.String()); s != "" {
			return s
		}
	}
	return ""
}

// ==================== Markdown 兜底 ====================

// listItems 提取 Markdown 中顶层与嵌套列表项的纯文本
func (m *ContentMapper) listItems(markdown string) []string {
	src := []byte(markdown)
	doc := m.md.Parser().Parse(text.NewReader(src))

	var out []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindListItem {
			return ast.WalkContinue, nil
		}
		if s := strings.TrimSpace(plainText(n, src)); s != "" {
			out = append(out, s)
		}
		return ast.WalkContinue, nil
	})
	return out
}

// plainText 收集节点下的文本，不进入嵌套列表
func plainText(n ast.Node, src []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Kind() == ast.KindList {
			continue
		}
		switch t := c.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(t.Value)
		default:
			sb.WriteString(plainText(c, src))
		}
	}
	return sb.String()
}
