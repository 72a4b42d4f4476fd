package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/shubh389/College-ti/config"
	"github.com/shubh389/College-ti/internal/api/handler"
	"github.com/shubh389/College-ti/internal/api/router"
	"github.com/shubh389/College-ti/internal/seed"
	"github.com/shubh389/College-ti/internal/service"
	"github.com/shubh389/College-ti/internal/source"
	applogger "github.com/shubh389/College-ti/pkg/logger"
	"github.com/shubh389/College-ti/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("timezone", cfg.Attendance.Location().String()),
	)

	// 3. 连接 Redis（可选：未配置或连接失败时不缓存、不限流）
	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，打卡表缓存与导入限流将不可用", zap.Error(err))
			rdb = nil
		}
	}

	// 避免 nil *redis.Client 装入非 nil 接口
	var cache source.Cache
	if rdb != nil {
		cache = rdb
	}

	// 4. 依赖注入: Source → Service → Handler
	sourceLog := applogger.Component(logger, "source")
	fetcher := source.NewFetcher(source.FetcherConfig{
		Timeout:  cfg.Ingest.FetchTimeout,
		MaxBytes: cfg.Ingest.MaxBytes,
		CacheTTL: cfg.Redis.CacheTTL,
	}, cache, sourceLog)
	svc := service.NewService(cfg, fetcher, source.DefaultChain(sourceLog), seed.Roster,
		applogger.Component(logger, "attendance"))

	if cfg.Ingest.SyncOnStart {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Ingest.FetchTimeout+10*time.Second)
		resp, err := svc.Attendance.Sync(ctx)
		cancel()
		if err != nil {
			logger.Warn("启动同步失败，等待手动导入", zap.Error(err))
		} else {
			logger.Info("启动同步完成",
				zap.Int("departments", resp.Departments),
				zap.Int("faculties", resp.Faculties),
				zap.Int("punch_rows", resp.Report.PunchRows),
			)
		}
	}

	h := handler.NewHandler(svc)

	// 5. 初始化路由
	engine := router.Setup(cfg, h, rdb, logger)

	// 6. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 7. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
