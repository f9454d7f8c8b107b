package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"storefront_v1_202610/internal/middleware"
	"storefront_v1_202610/pkg/logger"
)

// ==================== TaskManager 定时任务管理器 ====================

// TaskManager 统一注册与启停后台定时任务
type TaskManager struct {
	cron    *cron.Cron
	audit   auditRunner
	limiter *middleware.CooldownLimiter
	log     *logger.Logger
	cfg     *TaskManagerConfig

	// ctx 随 Stop 取消，所有巡检都从它派生
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type auditRunner interface {
	Run(ctx context.Context) (AuditReport, error)
}

// TaskManagerConfig 任务管理器配置（cron 表达式支持秒级）
type TaskManagerConfig struct {
	SnapshotAuditSpec string
	AuditTimeout      time.Duration
	AuditOnStart      bool

	LimiterSweepSpec string
	LimiterMaxAge    time.Duration
}

// DefaultConfig 默认配置
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		SnapshotAuditSpec: "0 15 3 * * *", // 每天 03:15
		AuditTimeout:      10 * time.Minute,
		AuditOnStart:      false,

		LimiterSweepSpec: "0 */10 * * * *",
		LimiterMaxAge:    time.Hour,
	}
}

// NewTaskManager audit / limiter 为 nil 时跳过对应任务
func NewTaskManager(audit *SnapshotAuditTask, limiter *middleware.CooldownLimiter, log *logger.Logger, cfg *TaskManagerConfig) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = logger.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	tm := &TaskManager{
		cron:    cron.New(cron.WithSeconds()),
		limiter: limiter,
		log:     log,
		cfg:     cfg,
		ctx:     ctx,
		cancel:  cancel,
	}
	if audit != nil {
		tm.audit = audit
	}
	return tm
}

// Start 注册并启动全部任务
func (tm *TaskManager) Start() error {
	if tm.audit != nil && tm.cfg.SnapshotAuditSpec != "" {
		if _, err := tm.cron.AddFunc(tm.cfg.SnapshotAuditSpec, tm.runAudit); err != nil {
			return fmt.Errorf("无法注册快照巡检任务: %w", err)
		}
		if tm.cfg.AuditOnStart {
			tm.wg.Add(1)
			go func() {
				defer tm.wg.Done()
				tm.runAudit()
			}()
		}
	}

	if tm.limiter != nil && tm.cfg.LimiterSweepSpec != "" {
		_, err := tm.cron.AddFunc(tm.cfg.LimiterSweepSpec, func() {
			if n := tm.limiter.Sweep(tm.cfg.LimiterMaxAge); n > 0 {
				tm.log.Debug("清理限流记录", "removed", n)
			}
		})
		if err != nil {
			return fmt.Errorf("无法注册限流清理任务: %w", err)
		}
	}

	tm.cron.Start()
	tm.log.Info("定时任务已启动", "jobs", len(tm.cron.Entries()))
	return nil
}

// Stop 取消正在运行的巡检，停止调度并等待任务退出
func (tm *TaskManager) Stop(ctx context.Context) {
	tm.cancel()
	cronDone := tm.cron.Stop().Done()

	done := make(chan struct{})
	go func() {
		<-cronDone
		tm.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		tm.log.Info("定时任务已停止")
	case <-ctx.Done():
		tm.log.Warn("等待定时任务结束超时")
	}
}

func (tm *TaskManager) runAudit() {
	ctx, cancel := context.WithTimeout(tm.ctx, tm.cfg.AuditTimeout)
	defer cancel()

	if _, err := tm.audit.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) && tm.ctx.Err() != nil {
			tm.log.Info("快照巡检随停止取消")
			return
		}
		tm.log.Error("快照巡检失败", "error", err)
	}
}
