package service

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// ==================== 主题变量 ====================

var (
	hexColorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	lengthRe   = regexp.MustCompile(`^\d{1,3}(?:\.\d+)?(?:px|rem|em|%)$`)
)

// themeVar 主题字段 -> CSS 变量
type themeVar struct {
	key      string
	cssVar   string
	fallback string
	valid    func(string) bool
}

var themeVars = []themeVar{
	{"primary_color", "--sf-color-primary", "#1f6feb", isHexColor},
	{"secondary_color", "--sf-color-secondary", "#f0b429", isHexColor},
	{"background_color", "--sf-color-background", "#ffffff", isHexColor},
	{"text_color", "--sf-color-text", "#1b1f24", isHexColor},
	{"font_family", "--sf-font-family", "Inter, system-ui, sans-serif", isSafeFont},
	{"radius", "--sf-radius", "8px", isLength},
}

// ThemeVariables 页面主题 JSON 转为 CSS 自定义属性，非法或缺失的值使用默认
func ThemeVariables(raw []byte) map[string]string {
	var theme gjson.Result
	if len(raw) > 0 && gjson.ValidBytes(raw) {
		theme = gjson.ParseBytes(raw)
	}

	vars := make(map[string]string, len(themeVars))
	for _, v := range themeVars {
		vars[v.cssVar] = v.fallback
		if !theme.IsObject() {
			continue
		}
		field := theme.Get(v.key)
		if !field.Exists() {
			continue
		}
		value := strings.TrimSpace(field.String())
		// radius 允许直接写数字，按 px 处理
		if v.key == "radius" && field.Type == gjson.Number {
			value = strconv.FormatFloat(field.Float(), 'f', -1, 64) + "px"
		}
		if v.valid(value) {
			vars[v.cssVar] = value
		}
	}
	return vars
}

func isHexColor(s string) bool { return hexColorRe.MatchString(s) }
func isLength(s string) bool   { return lengthRe.MatchString(s) }

func isSafeFont(s string) bool {
	if s == "" || len(s) > 120 {
		return false
	}
	return !strings.ContainsAny(s, ";{}<>()\\")
}
