package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shubh389/College-ti/config"
	"github.com/shubh389/College-ti/internal/api/handler"
	"github.com/shubh389/College-ti/internal/api/middleware"
	"github.com/shubh389/College-ti/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时导入接口不限流
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	var limiter middleware.RateLimiter
	if rdb != nil {
		limiter = rdb
	}

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		v1.GET("/status", h.Report.Status)

		// 部门层级
		departments := v1.Group("/departments")
		{
			departments.GET("", h.Department.ListDepartments)
			departments.GET("/:id", h.Department.GetDepartment)
		}

		// 打卡明细
		v1.GET("/people/punches", h.Punch.PersonPunches)
		punches := v1.Group("/punches")
		{
			punches.GET("", h.Punch.ListPunches)
			punches.GET("/departments", h.Punch.PunchDepartments)
		}

		// 统计报表
		reports := v1.Group("/reports")
		{
			reports.GET("/cumulative", h.Report.Cumulative)
			reports.GET("/duration", h.Report.Duration)
			reports.GET("/department-people", h.Report.DepartmentPeople)
		}

		// 导出模块
		export := v1.Group("/export")
		{
			export.GET("/punches", h.Export.ExportPunches)
			export.GET("/cumulative", h.Export.ExportCumulative)
			export.GET("/duration", h.Export.ExportDuration)
			export.GET("/department-people", h.Export.ExportDepartmentPeople)
		}

		// 数据导入（限流）
		imports := v1.Group("/import")
		imports.Use(middleware.RateLimit(limiter, cfg.Server.RateLimit.Requests, cfg.Server.RateLimit.Window))
		{
			imports.POST("/roster", h.Import.ImportRoster)
			imports.POST("/summary", h.Import.ImportSummary)
			imports.POST("/workbook", h.Import.ImportWorkbook)
			imports.POST("/sync", h.Import.Sync)
		}
	}

	return r
}
