package task

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"storefront_v1_202610/internal/model"
	"storefront_v1_202610/internal/repository"
	"storefront_v1_202610/internal/service"
	"storefront_v1_202610/pkg/logger"
)

// SnapshotAuditTask 巡检冻结的区块快照，来源内容在冻结后被修改的记日志提醒
// 只读，不会自动失效或刷新快照
type SnapshotAuditTask struct {
	pages     repository.PageRepository
	blocks    repository.BlockRepository
	resolver  *service.ContentResolver
	log       *logger.Logger
	batchSize int
}

// AuditReport 单轮巡检结果
type AuditReport struct {
	Scanned int // 带内容配置的区块
	Frozen  int // 持有有效快照的区块
	Stale   int // 来源在快照之后被修改
	Orphan  int // 来源已不存在
	Failed  int // 查询失败
}

func NewSnapshotAuditTask(
	pages repository.PageRepository,
	blocks repository.BlockRepository,
	resolver *service.ContentResolver,
	log *logger.Logger,
) *SnapshotAuditTask {
	if log == nil {
		log = logger.Nop()
	}
	return &SnapshotAuditTask{
		pages:     pages,
		blocks:    blocks,
		resolver:  resolver,
		log:       log,
		batchSize: 200,
	}
}

// Run 执行一轮巡检
func (t *SnapshotAuditTask) Run(ctx context.Context) (AuditReport, error) {
	var report AuditReport
	owners := make(map[int64]string) // page_id -> owner_id

	var afterID int64
	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		batch, err := t.blocks.ListWithAutoContent(ctx, afterID, t.batchSize)
		if err != nil {
			return report, err
		}
		if len(batch) == 0 {
			break
		}

		for i := range batch {
			block := &batch[i]
			afterID = block.ID
			report.Scanned++
			t.auditBlock(ctx, block, owners, &report)
		}

		if len(batch) < t.batchSize {
			break
		}
	}

	t.log.Info("快照巡检完成",
		"scanned", report.Scanned,
		"frozen", report.Frozen,
		"stale", report.Stale,
		"orphan", report.Orphan,
		"failed", report.Failed,
	)
	return report, nil
}

func (t *SnapshotAuditTask) auditBlock(ctx context.Context, block *model.PageBlock, owners map[int64]string, report *AuditReport) {
	ct, ok := block.Type.ContentType()
	if !ok {
		return
	}
	cfg, err := block.GetAutoContent()
	if err != nil || cfg == nil || cfg.IsCustom() {
		return
	}
	snap := cfg.Snapshot
	if snap == nil || snap.Sync || !snap.HasContent() {
		return
	}
	report.Frozen++

	ownerID, ok := owners[block.PageID]
	if !ok {
		page, err := t.pages.GetByID(ctx, block.PageID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			owners[block.PageID] = ""
			return
		}
		if err != nil {
			report.Failed++
			t.log.Warn("快照巡检：查询页面失败", "page_id", block.PageID, "error", err)
			return
		}
		ownerID = page.OwnerID
		owners[block.PageID] = ownerID
	}
	if ownerID == "" {
		return
	}

	section, err := t.resolver.Resolve(ctx, ownerID, ct, cfg.Descriptor())
	if err != nil {
		report.Failed++
		t.log.Warn("快照巡检：解析来源失败", "block_id", block.ID, "error", err)
		return
	}
	if section == nil {
		report.Orphan++
		t.log.Info("快照来源已不存在", "block_id", block.ID, "page_id", block.PageID, "content_type", ct)
		return
	}
	if section.UpdatedAt.After(snap.TakenAt) {
		report.Stale++
		t.log.Warn("快照已过期",
			"block_id", block.ID,
			"page_id", block.PageID,
			"content_type", ct,
			"section_id", section.ID,
			"taken_at", snap.TakenAt.Format(time.RFC3339),
			"section_updated_at", section.UpdatedAt.Format(time.RFC3339),
		)
	}
}
