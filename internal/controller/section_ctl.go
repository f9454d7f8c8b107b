package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront_v1_202610/internal/api/dto"
	"storefront_v1_202610/internal/middleware"
	"storefront_v1_202610/internal/model"
	"storefront_v1_202610/internal/service"
)

// SectionController 商家信息分区（支付、配送、购买方式等）
type SectionController struct {
	sectionService *service.SectionService
}

func NewSectionController(sectionService *service.SectionService) *SectionController {
	return &SectionController{sectionService: sectionService}
}

// List 商家信息分区列表
// @Summary 商家信息分区列表
// @Tags Section (商家信息)
// @Produce json
// @Security BearerAuth
// @Param content_type query string false "内容类型" Enums(how_to_buy,delivery,pickup,shipping,payment,guarantee)
// @Success 200 {object} map[string]interface{} "data: []model.BusinessInfoSection"
// @Failure 401 {object} map[string]interface{} "未登录"
// @Router /api/admin/sections [get]
func (ctrl *SectionController) List(c *gin.Context) {
	ct := model.ContentType(c.Query("content_type"))
	list, err := ctrl.sectionService.List(c.Request.Context(), middleware.GetOwnerID(c), ct)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, list)
}

// Upsert 保存分区
// 同一作用域重复提交会覆盖原记录
// @Summary 保存分区
// @Tags Section (商家信息)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SectionUpsertReq true "分区内容"
// @Success 200 {object} map[string]interface{} "data: model.BusinessInfoSection"
// @Failure 400 {object} map[string]interface{} "参数错误"
// @Router /api/admin/sections [put]
func (ctrl *SectionController) Upsert(c *gin.Context) {
	var req dto.SectionUpsertReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	section, err := ctrl.sectionService.Upsert(c.Request.Context(), middleware.GetOwnerID(c), req)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, section)
}

// Delete 删除分区
// @Summary 删除分区
// @Tags Section (商家信息)
// @Produce json
// @Security BearerAuth
// @Param id path int true "分区ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{} "不存在"
// @Router /api/admin/sections/{id} [delete]
func (ctrl *SectionController) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.sectionService.Delete(c.Request.Context(), middleware.GetOwnerID(c), id); err != nil {
		handleError(c, err)
		return
	}
	success(c, nil)
}

// Resolve 试算某个作用域最终命中的内容
// @Summary 试算某个作用域最终命中的内容
// @Tags Section (商家信息)
// @Produce json
// @Security BearerAuth
// @Param content_type query string true "内容类型"
// @Param scope query string false "作用域" Enums(global,product,category,tag)
// @Param scope_id query string false "作用域 ID"
// @Success 200 {object} dto.SectionResolveResp
// @Failure 400 {object} map[string]interface{} "参数错误"
// @Router /api/admin/sections/resolve [get]
func (ctrl *SectionController) Resolve(c *gin.Context) {
	var req dto.SectionResolveReq
	if err := c.ShouldBindQuery(&req); err != nil {
		fail(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	resp, err := ctrl.sectionService.Resolve(c.Request.Context(), middleware.GetOwnerID(c), req)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, resp)
}
