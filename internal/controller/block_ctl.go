package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront_v1_202610/internal/api/dto"
	"storefront_v1_202610/internal/middleware"
	"storefront_v1_202610/internal/service"
)

// BlockController 页面区块与区块内容配置
type BlockController struct {
	blockService *service.BlockService
}

func NewBlockController(blockService *service.BlockService) *BlockController {
	return &BlockController{blockService: blockService}
}

// ==================== 区块 ====================

// Add 追加区块到页面末尾
// @Summary 追加区块到页面末尾
// @Tags Block (页面区块)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "页面ID"
// @Param request body dto.BlockCreateReq true "区块参数"
// @Success 201 {object} map[string]interface{} "data: model.PageBlock"
// @Failure 400 {object} map[string]interface{} "参数错误"
// @Failure 404 {object} map[string]interface{} "不存在"
// @Router /api/admin/pages/{id}/blocks [post]
func (ctrl *BlockController) Add(c *gin.Context) {
	pageID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.BlockCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	block, err := ctrl.blockService.Add(c.Request.Context(), middleware.GetOwnerID(c), pageID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	created(c, block)
}

// Reorder 按拖拽结果重排
// @Summary 按拖拽结果重排
// @Tags Block (页面区块)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "页面ID"
// @Param request body dto.BlockReorderReq true "新顺序（必须包含页面全部区块）"
// @Success 200 {object} map[string]interface{} "data: []model.PageBlock"
// @Failure 400 {object} map[string]interface{} "参数错误"
// @Failure 404 {object} map[string]interface{} "不存在"
// @Router /api/admin/pages/{id}/blocks/order [put]
func (ctrl *BlockController) Reorder(c *gin.Context) {
	pageID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.BlockReorderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	blocks, err := ctrl.blockService.Reorder(c.Request.Context(), middleware.GetOwnerID(c), pageID, req.BlockIDs)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, blocks)
}

// Update 修改区块类型、布局或设置
// @Summary 修改区块类型、布局或设置
// @Tags Block (页面区块)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "区块ID"
// @Param request body dto.BlockUpdateReq true "更新参数"
// @Success 200 {object} map[string]interface{} "data: model.PageBlock"
// @Failure 400 {object} map[string]interface{} "参数错误"
// @Failure 404 {object} map[string]interface{} "不存在"
// @Router /api/admin/blocks/{id} [patch]
func (ctrl *BlockController) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.BlockUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	block, err := ctrl.blockService.Update(c.Request.Context(), middleware.GetOwnerID(c), id, req)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, block)
}

// Remove 删除区块
// @Summary 删除区块
// @Tags Block (页面区块)
// @Produce json
// @Security BearerAuth
// @Param id path int true "区块ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{} "不存在"
// @Router /api/admin/blocks/{id} [delete]
func (ctrl *BlockController) Remove(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.blockService.Remove(c.Request.Context(), middleware.GetOwnerID(c), id); err != nil {
		handleError(c, err)
		return
	}
	success(c, nil)
}

// ==================== 区块内容 ====================

// UpdateContent 修改内容模式 / 作用域 / 自定义内容
// @Summary 修改内容模式 / 作用域 / 自定义内容
// @Tags BlockContent (区块内容)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "区块ID"
// @Param request body dto.AutoContentReq true "内容配置"
// @Success 200 {object} model.AutoContentConfig
// @Failure 400 {object} map[string]interface{} "参数错误"
// @Failure 404 {object} map[string]interface{} "不存在"
// @Router /api/admin/blocks/{id}/content [put]
func (ctrl *BlockController) UpdateContent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.AutoContentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	cfg, err := ctrl.blockService.UpdateAutoContent(c.Request.Context(), middleware.GetOwnerID(c), id, req)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, cfg)
}

// Preview 编辑器预览当前会渲染的内容
// @Summary 编辑器预览当前会渲染的内容
// @Tags BlockContent (区块内容)
// @Produce json
// @Security BearerAuth
// @Param id path int true "区块ID"
// @Success 200 {object} dto.BlockPreviewResp
// @Failure 404 {object} map[string]interface{} "不存在"
// @Router /api/admin/blocks/{id}/preview [get]
func (ctrl *BlockController) Preview(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	preview, err := ctrl.blockService.Preview(c.Request.Context(), middleware.GetOwnerID(c), id)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, preview)
}

// CaptureSnapshot 冻结当前解析结果
// @Summary 冻结当前解析结果
// @Tags BlockContent (区块内容)
// @Produce json
// @Security BearerAuth
// @Param id path int true "区块ID"
// @Success 200 {object} model.AutoContentConfig
// @Failure 400 {object} map[string]interface{} "参数错误"
// @Failure 404 {object} map[string]interface{} "不存在"
// @Failure 429 {object} map[string]interface{} "冷却中"
// @Router /api/admin/blocks/{id}/snapshot [post]
func (ctrl *BlockController) CaptureSnapshot(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	cfg, err := ctrl.blockService.CaptureSnapshot(c.Request.Context(), middleware.GetOwnerID(c), id)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, cfg)
}

// SetSnapshotSync 切换实时 / 冻结
// @Summary 切换实时 / 冻结
// @Tags BlockContent (区块内容)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "区块ID"
// @Param request body dto.SnapshotSyncReq true "同步开关"
// @Success 200 {object} model.AutoContentConfig
// @Failure 400 {object} map[string]interface{} "参数错误"
// @Failure 404 {object} map[string]interface{} "不存在"
// @Router /api/admin/blocks/{id}/snapshot/sync [put]
func (ctrl *BlockController) SetSnapshotSync(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.SnapshotSyncReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	cfg, err := ctrl.blockService.SetSnapshotSync(c.Request.Context(), middleware.GetOwnerID(c), id, req.Sync)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, cfg)
}

// ClearSnapshot 清除冻结快照
// @Summary 清除冻结快照
// @Tags BlockContent (区块内容)
// @Produce json
// @Security BearerAuth
// @Param id path int true "区块ID"
// @Success 200 {object} model.AutoContentConfig
// @Failure 404 {object} map[string]interface{} "不存在"
// @Router /api/admin/blocks/{id}/snapshot [delete]
func (ctrl *BlockController) ClearSnapshot(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	cfg, err := ctrl.blockService.ClearSnapshot(c.Request.Context(), middleware.GetOwnerID(c), id)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, cfg)
}
