package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gateway/api"
	"gateway/internal/config"
	"gateway/internal/infra"
	"gateway/internal/logger"
	"gateway/internal/mermaidflow"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// shutdownTimeout 优雅关闭等待时间
const shutdownTimeout = 10 * time.Second

func main() {
	// 0. 加载 .env
	loadEnvFile()

	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("APP_CONFIG_FILE"))
	if err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	if err := logger.Init(logger.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		OutputPath: cfg.Log.OutputPath,
		CustomerID: cfg.Customer.ID,
	}); err != nil {
		fmt.Printf("初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.String("customer", cfg.Customer.ID),
		zap.String("env", cfg.Server.Env),
		zap.String("mode", cfg.Server.Mode),
	)

	ctx := context.Background()
	deps := api.Dependencies{Config: cfg}

	// 3. 数据库与缓存连接失败不阻断启动，由 /ready 暴露状态
	db, err := infra.OpenDatabase(&cfg.Database)
	if err != nil {
		logger.Error("初始化数据库失败", zap.Error(err))
	} else {
		db.TestConnection(ctx)
		deps.Database = db
		defer db.Close()
	}

	cache, err := infra.NewCache(&cfg.Redis)
	if err != nil {
		logger.Error("初始化 Redis 失败", zap.Error(err))
	} else {
		if cache.Connect(ctx) {
			cache.Set(ctx, "gateway:"+cfg.Customer.ID+":started_at", time.Now().UTC().Format(time.RFC3339), 0)
		}
		deps.Cache = cache
		defer cache.Close()
	}

	// 4. 远端工具服务适配器
	deps.Tools = mermaidflow.NewClient(cfg.MermaidFlow.BaseURL,
		mermaidflow.WithTimeout(time.Duration(cfg.MermaidFlow.TimeoutSeconds)*time.Second),
	)
	logger.Info("MermaidFlow 适配器已创建",
		zap.String("base_url", cfg.MermaidFlow.BaseURL),
		zap.Int("timeout_seconds", cfg.MermaidFlow.TimeoutSeconds),
	)

	// 5. 设置 Gin 模式并创建路由
	gin.SetMode(cfg.Server.Mode)
	router := api.SetupRouter(deps)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器启动", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器启动失败", zap.Error(err))
		}
	}()

	// 6. 优雅关闭
	gracefulShutdown(server)
}

// gracefulShutdown 等待退出信号并在超时内关闭服务器
func gracefulShutdown(server *http.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("正在关闭服务器...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("服务器强制关闭", zap.Error(err))
		return
	}
	logger.Info("服务器已关闭")
}

// loadEnvFile 依次尝试加载当前目录及上级目录的 .env 文件
func loadEnvFile() {
	path := resolveEnvPath()
	if path == "" {
		fmt.Println("未找到 .env 文件，仅使用系统环境变量")
		return
	}
	if err := godotenv.Load(path); err != nil {
		fmt.Printf("加载环境变量文件 %s 失败: %v\n", path, err)
		return
	}
	fmt.Printf("已加载环境变量文件: %s\n", path)
}

// resolveEnvPath 从工作目录和可执行文件目录向上查找 .env
func resolveEnvPath() string {
	for _, path := range envCandidates() {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func envCandidates() []string {
	seen := make(map[string]struct{})
	var candidates []string

	traverse := func(start string) {
		dir := filepath.Clean(start)
		for i := 0; i < 8 && dir != "." && dir != string(filepath.Separator); i++ {
			path := filepath.Join(dir, ".env")
			if _, ok := seen[path]; !ok {
				seen[path] = struct{}{}
				candidates = append(candidates, path)
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	if wd, err := os.Getwd(); err == nil {
		traverse(wd)
	}
	if exe, err := os.Executable(); err == nil {
		traverse(filepath.Dir(exe))
	}
	return candidates
}
