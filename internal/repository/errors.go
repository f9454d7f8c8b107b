package repository

import "errors"

// ErrBlockSetMismatch 排序请求中的区块与页面实际区块不一致
var ErrBlockSetMismatch = errors.New("区块列表不匹配")
