package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pwbryant/ranch-tools-application/config"
	"github.com/pwbryant/ranch-tools-application/internal/api/handler"
	"github.com/pwbryant/ranch-tools-application/internal/api/middleware"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.MaxUploadMB << 20))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 牛只模块
		cows := v1.Group("/cows")
		{
			cows.GET("", h.Cow.Search)
			cows.GET("/exists", h.Cow.Exists)
			cows.POST("", h.Cow.Create)
			cows.GET("/:id", h.Cow.Get)
			cows.PATCH("/:id", h.Cow.Update)
		}

		// 孕检模块
		pregchecks := v1.Group("/pregchecks")
		{
			pregchecks.GET("", h.PregCheck.Search)
			pregchecks.POST("", h.PregCheck.Record)
			pregchecks.GET("/recent", h.PregCheck.Recent)
			pregchecks.GET("/breeding-season", h.PregCheck.GetBreedingSeason)
			pregchecks.PUT("/breeding-season", h.PregCheck.UpdateBreedingSeason)
			pregchecks.GET("/:id", h.PregCheck.Get)
			pregchecks.PATCH("/:id", h.PregCheck.Edit)
		}

		// 报表模块
		reports := v1.Group("/reports")
		{
			reports.GET("/summary", h.Report.Summary)
			reports.GET("/birth-year", h.Report.BirthYearBreakdown)
			reports.GET("/rolling-average", h.Report.RollingAverage)
		}

		// 牛群数据批量进出
		herd := v1.Group("/herd")
		{
			herd.POST("/import", h.Import.Import)
			herd.GET("/export", h.Export.Export)
		}
	}

	return r
}
