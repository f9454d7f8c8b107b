package controller

import (
	"github.com/gin-gonic/gin"

	"storefront_v1_202610/internal/middleware"
	"storefront_v1_202610/internal/service"
)

// StorefrontController 公开店铺页
type StorefrontController struct {
	storefrontService *service.StorefrontService
}

func NewStorefrontController(storefrontService *service.StorefrontService) *StorefrontController {
	return &StorefrontController{storefrontService: storefrontService}
}

// Render 按 slug 渲染页面
// 携带有效 token 的页面所有者可以预览未发布页面
// @Summary 按 slug 渲染页面
// @Tags Storefront (公开店铺)
// @Produce json
// @Param slug path string true "页面 slug"
// @Success 200 {object} dto.StorefrontResp
// @Failure 404 {object} map[string]interface{} "不存在"
// @Router /api/storefront/{slug} [get]
func (ctrl *StorefrontController) Render(c *gin.Context) {
	resp, err := ctrl.storefrontService.Render(c.Request.Context(), c.Param("slug"), middleware.GetOwnerID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, resp)
}
