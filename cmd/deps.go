package main

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"storefront_v1_202610/internal/controller"
	"storefront_v1_202610/internal/middleware"
	"storefront_v1_202610/internal/repository"
	"storefront_v1_202610/internal/router"
	"storefront_v1_202610/internal/service"
	"storefront_v1_202610/internal/task"
	"storefront_v1_202610/pkg/config"
	"storefront_v1_202610/pkg/database"
	"storefront_v1_202610/pkg/logger"
)

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB       *gorm.DB
	Repos    *Repositories
	Services *Services
	Router   *gin.Engine
	Tasks    *task.TaskManager
}

// Repositories 仓库集合
type Repositories struct {
	Page    repository.PageRepository
	Block   repository.BlockRepository
	Section repository.SectionRepository
	Product repository.ProductRepository

	// ScopeStore 内容解析使用的只读存储，可切换到 REST 数据服务
	ScopeStore repository.ScopeStore
}

// Services 服务集合
type Services struct {
	Mapper       *service.ContentMapper
	Resolver     *service.ContentResolver
	Snapshots    *service.SnapshotManager
	BlockContent *service.BlockContentService
	Page         *service.PageService
	Block        *service.BlockService
	Section      *service.SectionService
	Product      *service.ProductService
	Storefront   *service.StorefrontService
	Media        *service.MediaService
}

// ==================== 初始化函数 ====================

func openDatabase() (*gorm.DB, error) {
	return database.InitDB(cfg.Database.DSN, database.Options{
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogSQL:          cfg.Database.LogSQL,
	}, log)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB, cfg *config.Config, log *logger.Logger) (*Dependencies, error) {
	// -------- Repo 层 --------
	repos := initRepositories(db, cfg)

	// -------- 内容解析 --------
	mapper := service.NewContentMapper()
	resolver := service.NewContentResolver(repos.ScopeStore)
	snapshots := service.NewSnapshotManager(resolver, mapper)
	blockContent := service.NewBlockContentService(snapshots, mapper, log.With("component", "block_content"))

	// -------- 业务服务 --------
	services := &Services{
		Mapper:       mapper,
		Resolver:     resolver,
		Snapshots:    snapshots,
		BlockContent: blockContent,
	}
	services.Product = service.NewProductService(repos.Product)
	services.Page = service.NewPageService(repos.Page, repos.Block, log)
	services.Block = service.NewBlockService(repos.Page, repos.Block, snapshots, blockContent, mapper, log)
	services.Section = service.NewSectionService(repos.Section, resolver, mapper)
	services.Storefront = service.NewStorefrontService(repos.Page, repos.Block, blockContent, services.Product, log.With("component", "storefront"))

	// -------- 存储 --------
	provider, err := service.NewStorageProvider(service.StorageConfig{
		Provider:  cfg.Storage.Provider,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Endpoint:  cfg.Storage.Endpoint,
		CDNDomain: cfg.Storage.CDNDomain,
		BasePath:  cfg.Storage.BasePath,
	})
	if err != nil {
		// 存储不可用时后台其它功能照常，只是不能上传图片
		log.Warn("存储服务初始化失败", "provider", cfg.Storage.Provider, "error", err)
	} else {
		services.Media = service.NewMediaService(provider)
	}

	// -------- Controller 层 --------
	limiter := middleware.NewCooldownLimiter()
	ctls := initControllers(services)

	opts := router.Options{
		Logger:          log.With("component", "http"),
		Limiter:         limiter,
		CaptureCooldown: cfg.Server.CaptureCooldown,
	}
	if local, ok := provider.(*service.LocalStorage); ok {
		opts.UploadsDir = local.Dir()
	}

	// -------- 定时任务 --------
	taskCfg := task.DefaultConfig()
	taskCfg.SnapshotAuditSpec = cfg.Task.SnapshotAuditCron
	taskCfg.AuditOnStart = cfg.Task.AuditOnStart
	audit := task.NewSnapshotAuditTask(repos.Page, repos.Block, resolver, log.With("component", "snapshot_audit"))

	return &Dependencies{
		DB:       db,
		Repos:    repos,
		Services: services,
		Router:   router.SetupRouter(ctls, opts),
		Tasks:    task.NewTaskManager(audit, limiter, log.With("component", "task"), taskCfg),
	}, nil
}

// initRepositories 初始化所有仓库
func initRepositories(db *gorm.DB, cfg *config.Config) *Repositories {
	repos := &Repositories{
		Page:    repository.NewPageRepository(db),
		Block:   repository.NewBlockRepository(db),
		Section: repository.NewSectionRepository(db),
		Product: repository.NewProductRepository(db),
	}

	repos.ScopeStore = repos.Section
	if cfg.Store.Driver == config.StoreDriverRest {
		repos.ScopeStore = repository.NewRestSectionStore(repository.RestStoreConfig{
			BaseURL: cfg.Store.RestURL,
			APIKey:  cfg.Store.RestKey,
			Timeout: cfg.Store.Timeout,
		})
	}
	return repos
}

// initControllers 初始化所有控制器
func initControllers(svc *Services) *router.Controllers {
	ctls := &router.Controllers{
		Page:       controller.NewPageController(svc.Page),
		Block:      controller.NewBlockController(svc.Block),
		Section:    controller.NewSectionController(svc.Section),
		Product:    controller.NewProductController(svc.Product),
		Storefront: controller.NewStorefrontController(svc.Storefront),
	}
	if svc.Media != nil {
		ctls.Media = controller.NewMediaController(svc.Media)
	}
	return ctls
}
