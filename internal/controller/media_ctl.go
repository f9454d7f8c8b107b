package controller

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront_v1_202610/internal/middleware"
	"storefront_v1_202610/internal/service"
)

// MediaController 图片上传（封面、商品主图）
type MediaController struct {
	mediaService *service.MediaService
}

func NewMediaController(mediaService *service.MediaService) *MediaController {
	return &MediaController{mediaService: mediaService}
}

type importImageReq struct {
	URL string `json:"url" binding:"required,url"`
}

// Upload 上传图片
// multipart 字段名 file
// @Summary 上传图片
// @Tags Media (图片)
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "图片（jpeg/png/webp/gif）"
// @Success 201 {object} map[string]interface{} "data: {url}"
// @Failure 400 {object} map[string]interface{} "参数错误"
// @Failure 413 {object} map[string]interface{} "文件过大"
// @Router /api/admin/media [post]
func (ctrl *MediaController) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "缺少上传文件")
		return
	}
	if fileHeader.Size > service.MaxImageSize {
		fail(c, http.StatusRequestEntityTooLarge, "文件过大")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, "读取上传文件失败")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, service.MaxImageSize+1))
	if err != nil {
		fail(c, http.StatusBadRequest, "读取上传文件失败")
		return
	}

	url, err := ctrl.mediaService.UploadImage(c.Request.Context(), middleware.GetOwnerID(c), data)
	if err != nil {
		handleError(c, err)
		return
	}
	created(c, gin.H{"url": url})
}

// Import 从外部 URL 拉取图片并转存
// @Summary 从外部 URL 拉取图片并转存
// @Tags Media (图片)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body importImageReq true "图片地址"
// @Success 201 {object} map[string]interface{} "data: {url}"
// @Failure 400 {object} map[string]interface{} "参数错误"
// @Failure 413 {object} map[string]interface{} "文件过大"
// @Router /api/admin/media/import [post]
func (ctrl *MediaController) Import(c *gin.Context) {
	var req importImageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	url, err := ctrl.mediaService.ImportImage(c.Request.Context(), middleware.GetOwnerID(c), req.URL)
	if err != nil {
		handleError(c, err)
		return
	}
	created(c, gin.H{"url": url})
}

// Delete 删除自己上传的图片
// @Summary 删除自己上传的图片
// @Tags Media (图片)
// @Produce json
// @Security BearerAuth
// @Param url query string true "图片地址"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "参数错误"
// @Failure 404 {object} map[string]interface{} "不存在"
// @Router /api/admin/media [delete]
func (ctrl *MediaController) Delete(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		fail(c, http.StatusBadRequest, "缺少 url")
		return
	}

	if err := ctrl.mediaService.Delete(c.Request.Context(), middleware.GetOwnerID(c), url); err != nil {
		handleError(c, err)
		return
	}
	success(c, nil)
}
