package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront_v1_202610/internal/api/dto"
	"storefront_v1_202610/internal/middleware"
	"storefront_v1_202610/internal/service"
)

// PageController 后台页面管理
type PageController struct {
	pageService *service.PageService
}

func NewPageController(pageService *service.PageService) *PageController {
	return &PageController{pageService: pageService}
}

// List 当前商家的全部页面
// @Summary 当前商家的全部页面
// @Tags Page (店铺页面)
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "data: []model.Page"
// @Failure 401 {object} map[string]interface{} "未登录"
// @Router /api/admin/pages [get]
func (ctrl *PageController) List(c *gin.Context) {
	pages, err := ctrl.pageService.List(c.Request.Context(), middleware.GetOwnerID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, pages)
}

// Create 新建页面
// @Summary 新建页面
// @Tags Page (店铺页面)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.PageCreateReq true "页面参数"
// @Success 201 {object} map[string]interface{} "data: model.Page"
// @Failure 400 {object} map[string]interface{} "参数错误"
// @Router /api/admin/pages [post]
func (ctrl *PageController) Create(c *gin.Context) {
	var req dto.PageCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	page, err := ctrl.pageService.Create(c.Request.Context(), middleware.GetOwnerID(c), req)
	if err != nil {
		handleError(c, err)
		return
	}
	created(c, page)
}

// Get 页面详情（含区块）
// @Summary 页面详情（含区块）
// @Tags Page (店铺页面)
// @Produce json
// @Security BearerAuth
// @Param id path int true "页面ID"
// @Success 200 {object} dto.PageDetailResp
// @Failure 404 {object} map[string]interface{} "不存在"
// @Router /api/admin/pages/{id} [get]
func (ctrl *PageController) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	detail, err := ctrl.pageService.Get(c.Request.Context(), middleware.GetOwnerID(c), id)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, detail)
}

// Update 部分更新
// @Summary 部分更新
// @Tags Page (店铺页面)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "页面ID"
// @Param request body dto.PageUpdateReq true "更新参数"
// @Success 200 {object} map[string]interface{} "data: model.Page"
// @Failure 400 {object} map[string]interface{} "参数错误"
// @Failure 404 {object} map[string]interface{} "不存在"
// @Router /api/admin/pages/{id} [patch]
func (ctrl *PageController) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.PageUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	page, err := ctrl.pageService.Update(c.Request.Context(), middleware.GetOwnerID(c), id, req)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, page)
}

// Delete 删除页面及其区块
// @Summary 删除页面及其区块
// @Tags Page (店铺页面)
// @Produce json
// @Security BearerAuth
// @Param id path int true "页面ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{} "不存在"
// @Router /api/admin/pages/{id} [delete]
func (ctrl *PageController) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.pageService.Delete(c.Request.Context(), middleware.GetOwnerID(c), id); err != nil {
		handleError(c, err)
		return
	}
	success(c, nil)
}

// Publish 发布页面
// @Summary 发布页面
// @Tags Page (店铺页面)
// @Produce json
// @Security BearerAuth
// @Param id path int true "页面ID"
// @Success 200 {object} map[string]interface{} "data: model.Page"
// @Failure 404 {object} map[string]interface{} "不存在"
// @Router /api/admin/pages/{id}/publish [post]
func (ctrl *PageController) Publish(c *gin.Context) {
	ctrl.setPublished(c, true)
}

// Unpublish 取消发布
// @Summary 取消发布
// @Tags Page (店铺页面)
// @Produce json
// @Security BearerAuth
// @Param id path int true "页面ID"
// @Success 200 {object} map[string]interface{} "data: model.Page"
// @Failure 404 {object} map[string]interface{} "不存在"
// @Router /api/admin/pages/{id}/unpublish [post]
func (ctrl *PageController) Unpublish(c *gin.Context) {
	ctrl.setPublished(c, false)
}

func (ctrl *PageController) setPublished(c *gin.Context, published bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	page, err := ctrl.pageService.SetPublished(c.Request.Context(), middleware.GetOwnerID(c), id, published)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, page)
}
