package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront_v1_202610/internal/repository"
	"storefront_v1_202610/internal/service"
)

// ==================== 统一响应 ====================

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    data,
	})
}

func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": "success",
		"data":    data,
	})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"code":    status,
		"message": message,
	})
}

// 业务错误 -> HTTP 状态码
var errorStatus = []struct {
	err    error
	status int
}{
	{service.ErrOwnerRequired, http.StatusUnauthorized},

	{service.ErrPageNotFound, http.StatusNotFound},
	{service.ErrPageNotPublished, http.StatusNotFound},
	{service.ErrBlockNotFound, http.StatusNotFound},
	{service.ErrSectionNotFound, http.StatusNotFound},
	{service.ErrProductNotFound, http.StatusNotFound},
	{service.ErrMediaNotFound, http.StatusNotFound},

	{service.ErrUnknownContentType, http.StatusBadRequest},
	{service.ErrInvalidScope, http.StatusBadRequest},
	{service.ErrInvalidBlockType, http.StatusBadRequest},
	{service.ErrInvalidLayout, http.StatusBadRequest},
	{service.ErrNotContentBlock, http.StatusBadRequest},
	{service.ErrInvalidMode, http.StatusBadRequest},
	{service.ErrInvalidContent, http.StatusBadRequest},
	{service.ErrInvalidJSON, http.StatusBadRequest},
	{service.ErrUnsupportedFile, http.StatusBadRequest},
	{service.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
	{repository.ErrBlockSetMismatch, http.StatusBadRequest},

	{service.ErrStoreUnavailable, http.StatusServiceUnavailable},
}

// handleError 按错误类型返回对应状态码，未识别的错误统一 500
func handleError(c *gin.Context, err error) {
	_ = c.Error(err)
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			// 未发布页面对外按不存在处理
			if e.err == service.ErrPageNotPublished {
				fail(c, e.status, service.ErrPageNotFound.Error())
				return
			}
			fail(c, e.status, err.Error())
			return
		}
	}
	fail(c, http.StatusInternalServerError, "服务器内部错误")
}

// parseID 解析路径参数中的正整数 ID
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		fail(c, http.StatusBadRequest, "无效的 "+name)
		return 0, false
	}
	return id, true
}
