// Package cli 命令行入口：serve、seed、ingest
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ashwinyue/shop-assistant/internal/config"
	"github.com/ashwinyue/shop-assistant/internal/database"
	"github.com/ashwinyue/shop-assistant/internal/logger"
	"github.com/ashwinyue/shop-assistant/internal/repository"
	"github.com/ashwinyue/shop-assistant/internal/service"
	"github.com/ashwinyue/shop-assistant/internal/service/callback"
)

var configPath string

// RootCmd 顶层命令
var RootCmd = &cobra.Command{
	Use:           "shop-assistant",
	Short:         "Conversational shopping assistant for an Indian e-commerce store",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $CONFIG_PATH or ./configs/config.yaml)")
}

// Execute 运行命令行
func Execute() error {
	return RootCmd.Execute()
}

func getConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return "./configs/config.yaml"
}

// app 命令共用的依赖
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	db    *database.DB
	redis *redis.Client
	svc   *service.Services
}

// bootstrap 加载配置并初始化数据库、Redis 和全部服务
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return nil, err
	}

	log := logger.Setup(cfg.Log.Level, cfg.Log.Format)
	callback.SetupGlobalCallbacks(log.Named("eino"), cfg.App.Debug)

	db, err := database.New(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	rdb := newRedis(ctx, cfg, log)

	svc, err := service.NewServices(ctx, cfg, repository.NewRepositories(db.DB), rdb, log)
	if err != nil {
		_ = db.Close()
		if rdb != nil {
			_ = rdb.Close()
		}
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	return &app{cfg: cfg, log: log, db: db, redis: rdb, svc: svc}, nil
}

// newRedis Redis 可选，连接失败时会话只保存在内存
func newRedis(ctx context.Context, cfg *config.Config, log *zap.Logger) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unavailable, sessions are kept in memory only", zap.String("addr", cfg.Redis.GetAddr()), zap.Error(err))
		_ = rdb.Close()
		return nil
	}
	log.Info("redis connected", zap.String("addr", cfg.Redis.GetAddr()))
	return rdb
}

func (a *app) Close() {
	a.svc.Close()
	if a.redis != nil {
		_ = a.redis.Close()
	}
	_ = a.db.Close()
	_ = a.log.Sync()
}
