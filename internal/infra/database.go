package infra

import (
	"context"
	"fmt"
	"time"

	"gateway/internal/config"
	"gateway/internal/logger"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Database 数据库句柄包装
type Database struct {
	db *gorm.DB
}

// OpenDatabase 按 DATABASE_URL 打开 PostgreSQL 连接池
// 连接是惰性的，连通性由 TestConnection 单独验证
func OpenDatabase(cfg *config.DatabaseConfig) (*Database, error) {
	return openDatabase(postgres.Open(cfg.URL), cfg)
}

func openDatabase(dialector gorm.Dialector, cfg *config.DatabaseConfig) (*Database, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewGormZapLogger(logger.Get(), gormLogger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, fmt.Errorf("打开数据库连接失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取 SQL DB 失败: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	return &Database{db: db}, nil
}

// Ping 数据库健康检查，经由 GORM 执行 SELECT 1，语句日志走 zap
func (d *Database) Ping(ctx context.Context) error {
	return d.db.WithContext(ctx).Exec("SELECT 1").Error
}

// TestConnection 测试数据库连接，失败只记录日志
func (d *Database) TestConnection(ctx context.Context) bool {
	if err := d.Ping(ctx); err != nil {
		logger.Error("数据库连接失败", zap.Error(err))
		return false
	}
	logger.Info("数据库连接成功")
	return true
}

// Close 关闭数据库连接
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
