package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== 冷却中间件 ====================

// DefaultCaptureInterval 同一区块两次冻结快照的最小间隔
const DefaultCaptureInterval = 5 * time.Second

// CaptureCooldown 按 商家 + 区块 维度限制快照冻结频率
//
//	blocks.POST("/:id/snapshot", middleware.CaptureCooldown(limiter, 0), ctl.CaptureSnapshot)
func CaptureCooldown(limiter *CooldownLimiter, interval time.Duration) gin.HandlerFunc {
	if interval == 0 {
		interval = DefaultCaptureInterval
	}

	return func(c *gin.Context) {
		blockID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的区块 ID",
			})
			c.Abort()
			return
		}

		key := BlockCaptureKey(GetOwnerID(c), blockID)
		result := limiter.Check(key, interval)
		if !result.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())+1))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    429,
				"message": formatRetryMessage(result.RetryAfter),
				"data": gin.H{
					"retry_after": result.RetryAfter.Seconds(),
				},
			})
			c.Abort()
			return
		}

		c.Next()

		// 冻结失败不占用冷却时间
		if status := c.Writer.Status(); status < 200 || status >= 300 {
			limiter.Reset(key)
		}
	}
}

// formatRetryMessage 格式化重试提示信息
func formatRetryMessage(d time.Duration) string {
	seconds := int(d.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	if seconds < 60 {
		return fmt.Sprintf("操作过于频繁，请 %d 秒后重试", seconds)
	}

	minutes := seconds / 60
	remainingSeconds := seconds % 60
	if remainingSeconds == 0 {
		return fmt.Sprintf("操作过于频繁，请 %d 分钟后重试", minutes)
	}
	return fmt.Sprintf("操作过于频繁，请 %d 分 %d 秒后重试", minutes, remainingSeconds)
}
