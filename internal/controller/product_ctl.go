package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront_v1_202610/internal/api/dto"
	"storefront_v1_202610/internal/middleware"
	"storefront_v1_202610/internal/service"
)

type ProductController struct {
	productService *service.ProductService
}

func NewProductController(productService *service.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

// ==================== 查询接口 ====================

// List 商品列表
// @Summary 商品列表
// @Tags Product
// @Produce json
// @Security BearerAuth
// @Param category query string false "分类"
// @Param keyword query string false "名称搜索"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} dto.ProductListResp
// @Failure 400 {object} map[string]interface{} "参数错误"
// @Router /api/admin/products [get]
func (ctrl *ProductController) List(c *gin.Context) {
	var req dto.ProductListReq
	if err := c.ShouldBindQuery(&req); err != nil {
		fail(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 || req.PageSize > 100 {
		req.PageSize = 20
	}

	products, total, err := ctrl.productService.List(c.Request.Context(), middleware.GetOwnerID(c), req)
	if err != nil {
		handleError(c, err)
		return
	}

	respList := make([]dto.ProductResp, 0, len(products))
	for i := range products {
		respList = append(respList, ctrl.productService.ToProductResp(&products[i]))
	}

	c.JSON(http.StatusOK, dto.ProductListResp{
		Code:     0,
		Message:  "success",
		Data:     respList,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
}

// Get 商品详情
// @Summary 商品详情
// @Tags Product
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Success 200 {object} map[string]interface{} "data: dto.ProductResp"
// @Failure 404 {object} map[string]interface{} "不存在"
// @Router /api/admin/products/{id} [get]
func (ctrl *ProductController) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	product, err := ctrl.productService.Get(c.Request.Context(), middleware.GetOwnerID(c), id)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, ctrl.productService.ToProductResp(product))
}

// ==================== 写接口 ====================

// Create 新建商品
// @Summary 新建商品
// @Tags Product
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ProductSaveReq true "商品参数"
// @Success 201 {object} map[string]interface{} "data: dto.ProductResp"
// @Failure 400 {object} map[string]interface{} "参数错误"
// @Router /api/admin/products [post]
func (ctrl *ProductController) Create(c *gin.Context) {
	var req dto.ProductSaveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	product, err := ctrl.productService.Create(c.Request.Context(), middleware.GetOwnerID(c), req)
	if err != nil {
		handleError(c, err)
		return
	}
	created(c, ctrl.productService.ToProductResp(product))
}

// Update 全量更新
// @Summary 全量更新
// @Tags Product
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Param request body dto.ProductSaveReq true "商品参数"
// @Success 200 {object} map[string]interface{} "data: dto.ProductResp"
// @Failure 400 {object} map[string]interface{} "参数错误"
// @Failure 404 {object} map[string]interface{} "不存在"
// @Router /api/admin/products/{id} [put]
func (ctrl *ProductController) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ProductSaveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	product, err := ctrl.productService.Update(c.Request.Context(), middleware.GetOwnerID(c), id, req)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, ctrl.productService.ToProductResp(product))
}

// Delete 删除商品
// @Summary 删除商品
// @Tags Product
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{} "不存在"
// @Router /api/admin/products/{id} [delete]
func (ctrl *ProductController) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.productService.Delete(c.Request.Context(), middleware.GetOwnerID(c), id); err != nil {
		handleError(c, err)
		return
	}
	success(c, nil)
}
