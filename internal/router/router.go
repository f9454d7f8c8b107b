package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"storefront_v1_202610/internal/controller"
	"storefront_v1_202610/internal/middleware"
	"storefront_v1_202610/pkg/logger"
)

// Controllers 路由依赖的控制器集合
type Controllers struct {
	Page       *controller.PageController
	Block      *controller.BlockController
	Section    *controller.SectionController
	Product    *controller.ProductController
	Storefront *controller.StorefrontController
	Media      *controller.MediaController
}

// Options 路由层配置
type Options struct {
	Logger          *logger.Logger
	Limiter         *middleware.CooldownLimiter
	CaptureCooldown time.Duration
	// UploadsDir 本地存储目录，非空时挂载到 /uploads
	UploadsDir string
}

// SetupRouter 注册所有路由
func SetupRouter(ctls *Controllers, opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Limiter == nil {
		opts.Limiter = middleware.NewCooldownLimiter()
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog(opts.Logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 0, "message": "ok"})
	})
	if opts.UploadsDir != "" {
		r.Static("/uploads", opts.UploadsDir)
	}

	api := r.Group("/api")

	// 公开店铺页：可选鉴权，页面所有者可预览未发布页面
	api.GET("/storefront/:slug", middleware.OptionalAuth(), ctls.Storefront.Render)

	// 商家后台
	admin := api.Group("/admin", middleware.JWTAuth(), middleware.AuditContext())
	{
		pages := admin.Group("/pages")
		{
			pages.GET("", ctls.Page.List)
			pages.POST("", ctls.Page.Create)
			pages.GET("/:id", ctls.Page.Get)
			pages.PATCH("/:id", ctls.Page.Update)
			pages.DELETE("/:id", ctls.Page.Delete)
			pages.POST("/:id/publish", ctls.Page.Publish)
			pages.POST("/:id/unpublish", ctls.Page.Unpublish)

			// 页面下的区块
			pages.POST("/:id/blocks", ctls.Block.Add)
			pages.PUT("/:id/blocks/order", ctls.Block.Reorder)
		}

		blocks := admin.Group("/blocks")
		{
			blocks.PATCH("/:id", ctls.Block.Update)
			blocks.DELETE("/:id", ctls.Block.Remove)
			blocks.PUT("/:id/content", ctls.Block.UpdateContent)
			blocks.GET("/:id/preview", ctls.Block.Preview)

			// 快照：冻结有冷却时间
			blocks.POST("/:id/snapshot", middleware.CaptureCooldown(opts.Limiter, opts.CaptureCooldown), ctls.Block.CaptureSnapshot)
			blocks.PUT("/:id/snapshot/sync", ctls.Block.SetSnapshotSync)
			blocks.DELETE("/:id/snapshot", ctls.Block.ClearSnapshot)
		}

		sections := admin.Group("/sections")
		{
			sections.GET("", ctls.Section.List)
			sections.PUT("", ctls.Section.Upsert)
			sections.GET("/resolve", ctls.Section.Resolve)
			sections.DELETE("/:id", ctls.Section.Delete)
		}

		products := admin.Group("/products")
		{
			products.GET("", ctls.Product.List)
			products.POST("", ctls.Product.Create)
			products.GET("/:id", ctls.Product.Get)
			products.PUT("/:id", ctls.Product.Update)
			products.DELETE("/:id", ctls.Product.Delete)
		}

		if ctls.Media != nil {
			media := admin.Group("/media")
			{
				media.POST("", ctls.Media.Upload)
				media.POST("/import", ctls.Media.Import)
				media.DELETE("", ctls.Media.Delete)
			}
		}
	}

	return r
}
