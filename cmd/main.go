package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"storefront_v1_202610/internal/middleware"
	"storefront_v1_202610/internal/model"
	"storefront_v1_202610/pkg/config"
	"storefront_v1_202610/pkg/database"
	"storefront_v1_202610/pkg/logger"
)

var (
	// 全局参数
	configPath string

	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "店铺页搭建后台",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		log, err = logger.New(cfg.Log.Mode)
		if err != nil {
			return fmt.Errorf("初始化日志失败: %w", err)
		}

		jwtCfg := middleware.DefaultJWTConfig()
		if cfg.JWT.Secret != "" {
			jwtCfg.SecretKey = cfg.JWT.Secret
		} else {
			log.Warn("未配置 JWT_SECRET，使用默认密钥（仅限开发环境）")
		}
		if cfg.JWT.TTL > 0 {
			jwtCfg.AccessTokenTTL = cfg.JWT.TTL
		}
		if cfg.JWT.Issuer != "" {
			jwtCfg.Issuer = cfg.JWT.Issuer
		}
		middleware.SetJWTConfig(jwtCfg)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
	// 默认行为：启动服务
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP 服务与定时任务",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "自动建表",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		if err := database.Migrate(db, model.Models()...); err != nil {
			return err
		}
		log.Info("建表完成", "tables", len(model.Models()))
		return nil
	},
}

var (
	tokenName string
	tokenRole string
)

var tokenCmd = &cobra.Command{
	Use:   "token <owner_id>",
	Short: "签发开发用 access token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := middleware.GenerateAccessToken(args[0], tokenName, tokenRole)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "配置文件路径（默认查找 ./config.yaml）")

	tokenCmd.Flags().StringVar(&tokenName, "name", "", "商家名称")
	tokenCmd.Flags().StringVar(&tokenRole, "role", "owner", "角色")

	rootCmd.AddCommand(serveCmd, migrateCmd, tokenCmd)
}

// @title 店铺页搭建后台 API
// @version 1.0
// @description 页面与区块编辑、商家信息分区、商品与公开店铺页
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "错误:", err)
		os.Exit(1)
	}
}

// ==================== 服务启动 ====================

func runServe(ctx context.Context) error {
	if err := cfg.ValidateServe(); err != nil {
		return err
	}
	gin.SetMode(cfg.Server.Mode)

	db, err := openDatabase()
	if err != nil {
		return err
	}
	if err := database.Migrate(db, model.Models()...); err != nil {
		return err
	}
	if err := middleware.RegisterAuditCallbacks(db); err != nil {
		return fmt.Errorf("注册审计回调失败: %w", err)
	}

	deps, err := initDependencies(db, cfg, log)
	if err != nil {
		return err
	}

	// 定时任务
	if err := deps.Tasks.Start(); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           deps.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 异步启动服务
	errCh := make(chan error, 1)
	go func() {
		log.Info("服务启动", "addr", srv.Addr, "store_driver", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待退出信号
	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("服务启动失败: %w", err)
	}

	log.Info("正在关闭服务...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	deps.Tasks.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("服务强制关闭: %w", err)
	}

	log.Info("服务已退出")
	return nil
}
