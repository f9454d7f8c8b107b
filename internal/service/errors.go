package service

import "errors"

// ==================== 内容解析 ====================

var (
	// ErrStoreUnavailable 作用域存储查询失败（网络/鉴权/后端故障），区别于未找到
	ErrStoreUnavailable   = errors.New("商家信息存储不可用")
	ErrOwnerRequired      = errors.New("缺少商家身份")
	ErrUnknownContentType = errors.New("未知的内容类型")
	ErrInvalidScope       = errors.New("作用域配置无效")
)

// ==================== 页面 / 区块 ====================

var (
	ErrPageNotFound     = errors.New("页面不存在")
	ErrPageNotPublished = errors.New("页面未发布")
	ErrBlockNotFound    = errors.New("区块不存在")
	ErrInvalidBlockType = errors.New("不支持的区块类型")
	ErrInvalidLayout    = errors.New("不支持的区块宽度")
	ErrNotContentBlock  = errors.New("该区块不支持自动内容")
	ErrInvalidMode      = errors.New("不支持的内容模式")
	ErrInvalidContent   = errors.New("自定义内容格式错误")
	ErrInvalidJSON      = errors.New("JSON 格式错误")
)

// ==================== 其它 ====================

var (
	ErrSectionNotFound = errors.New("商家信息不存在")
	ErrProductNotFound = errors.New("商品不存在")
	ErrUnsupportedFile = errors.New("不支持的文件类型")
	ErrFileTooLarge    = errors.New("文件过大")
	ErrMediaNotFound   = errors.New("图片不存在")
)
